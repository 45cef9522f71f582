package compiler

import (
	"fmt"

	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/parser"
)

// loopScope is one entry of the builder's lexical loop stack
type loopScope struct {
	label string
	id    NodeID
}

type builder struct {
	g        *Graph
	protocol string
	loops    []loopScope
}

// BuildUnit translates a parsed unit into a control-flow graph. All
// protocols share one arena so that call nodes can be linked to callee
// roots in a second phase, after every root exists.
//
// Statements are folded right to left: each statement is built with the
// continuation accumulated so far as its Next, so an explicit `end`
// simply drops the continuation and everything after it becomes an
// orphan chain with no predecessor.
func BuildUnit(unit *parser.Node) *Graph {
	g := NewGraph()
	b := &builder{g: g}
	for _, proto := range unit.Protocols() {
		if _, dup := g.RootOf(proto.Name); dup {
			g.AddUnitDiagnostic(domain.DiagStructuralError, domain.SeverityError,
				fmt.Sprintf("protocol %q declared more than once", proto.Name), proto.Location)
			continue
		}
		b.protocol = proto.Name
		root := b.buildChain(proto.Body, NoNode)
		g.roots = append(g.roots, ProtocolRoot{Name: proto.Name, Root: root, Span: proto.Location})
	}
	b.linkCalls()
	return g
}

// buildChain builds a statement list into a linked chain ending at cont
// and returns its head
func (b *builder) buildChain(stmts []*parser.Node, cont NodeID) NodeID {
	next := cont
	for i := len(stmts) - 1; i >= 0; i-- {
		next = b.buildStmt(stmts[i], next)
	}
	return next
}

func (b *builder) buildStmt(s *parser.Node, next NodeID) NodeID {
	switch s.Type {
	case parser.NodeSend:
		return b.alloc(CfgNode{Kind: KindSend, Type: s.Name, Next: next, Span: s.Location})
	case parser.NodeRecv:
		return b.alloc(CfgNode{Kind: KindRecv, Type: s.Name, Next: next, Span: s.Location})
	case parser.NodeEmbed:
		return b.alloc(CfgNode{Kind: KindEmbed, Type: s.Name, Next: next, Span: s.Location})
	case parser.NodeEnd:
		// end discards the continuation built so far; the dropped chain
		// keeps no predecessor and surfaces as one unreachable region
		return NoNode
	case parser.NodeCall:
		return b.alloc(CfgNode{Kind: KindCall, Callee: s.Name, Body: NoNode, Next: next, Span: s.Location})
	case parser.NodeBreak:
		return b.buildJump(s, KindBreak, next)
	case parser.NodeContinue:
		return b.buildJump(s, KindContinue, next)
	case parser.NodeLoop:
		return b.buildLoop(s, next)
	case parser.NodeChoose:
		return b.buildBranching(s, KindChoose, next)
	case parser.NodeOffer:
		return b.buildBranching(s, KindOffer, next)
	case parser.NodeSplit:
		return b.buildSplit(s, next)
	default:
		id := b.alloc(CfgNode{Kind: KindError, Next: next, Span: s.Location})
		b.g.AddDiagnostic(id, domain.DiagMalformedConstruct, domain.SeverityError,
			fmt.Sprintf("unexpected %s statement", s.Type))
		return id
	}
}

// buildJump resolves a break/continue label against the lexical loop
// stack. Next stays linked to whatever followed the jump in source order,
// but control never flows along it.
func (b *builder) buildJump(s *parser.Node, kind Kind, next NodeID) NodeID {
	target, ok := b.resolveLoop(s.Name)
	if !ok {
		id := b.alloc(CfgNode{Kind: KindError, Next: next, Span: s.Location})
		msg := fmt.Sprintf("%s outside of any loop", kind)
		if s.Name != "" {
			msg = fmt.Sprintf("%s targets unknown loop label %q", kind, s.Name)
		}
		b.g.AddDiagnostic(id, domain.DiagStructuralError, domain.SeverityError, msg)
		return id
	}
	return b.alloc(CfgNode{Kind: kind, Target: target, Next: next, Span: s.Location})
}

func (b *builder) resolveLoop(label string) (NodeID, bool) {
	if label == "" {
		if len(b.loops) == 0 {
			return NoNode, false
		}
		return b.loops[len(b.loops)-1].id, true
	}
	for i := len(b.loops) - 1; i >= 0; i-- {
		if b.loops[i].label == label {
			return b.loops[i].id, true
		}
	}
	return NoNode, false
}

// buildLoop allocates the loop node before its body so break/continue
// inside the body can reference it. The body's trailing continuation is
// left absent; scope resolution synthesizes the implicit back edge.
func (b *builder) buildLoop(s *parser.Node, next NodeID) NodeID {
	id := b.alloc(CfgNode{Kind: KindLoop, Body: NoNode, Next: next, Span: s.Location})
	b.loops = append(b.loops, loopScope{label: s.Name, id: id})
	// building the body grows the arena, so the node is fetched afterward
	body := b.buildChain(s.Body, NoNode)
	b.g.Node(id).Body = body
	b.loops = b.loops[:len(b.loops)-1]
	return id
}

// buildBranching builds choose/offer with branches detached from the
// successor. The node keeps next; scope resolution splices it into every
// branch tail that falls through.
func (b *builder) buildBranching(s *parser.Node, kind Kind, next NodeID) NodeID {
	branches := make([]NodeID, 0, len(s.Branches))
	for _, br := range s.Branches {
		branches = append(branches, b.buildChain(br.Body, NoNode))
	}
	return b.alloc(CfgNode{Kind: kind, Branches: branches, Next: next, Span: s.Location})
}

func (b *builder) buildSplit(s *parser.Node, next NodeID) NodeID {
	tx, rx := NoNode, NoNode
	if s.Tx != nil {
		tx = b.buildChain(s.Tx.Body, NoNode)
	}
	if s.Rx != nil {
		rx = b.buildChain(s.Rx.Body, NoNode)
	}
	return b.alloc(CfgNode{Kind: KindSplit, Tx: tx, Rx: rx, Next: next, Span: s.Location})
}

func (b *builder) alloc(n CfgNode) NodeID {
	n.Protocol = b.protocol
	return b.g.Alloc(n)
}

// linkCalls resolves every call node's callee to its protocol root. An
// undefined callee degrades the node to an error anchor so the rest of
// the protocol still compiles.
func (b *builder) linkCalls() {
	for id := 0; id < b.g.Len(); id++ {
		n := b.g.Node(NodeID(id))
		if n.Kind != KindCall {
			continue
		}
		root, ok := b.g.RootOf(n.Callee)
		if !ok {
			n.Kind = KindError
			b.g.AddDiagnostic(NodeID(id), domain.DiagStructuralError, domain.SeverityError,
				fmt.Sprintf("call references undefined protocol %q", n.Callee))
			continue
		}
		n.Body = root
	}
}
