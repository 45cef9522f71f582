package compiler

import (
	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/parser"
)

// NodeID is a stable index into a Graph's node arena. IDs are copyable
// handles; the Graph owns every node and liveness is "reachable from a
// protocol root", never reference counting.
type NodeID int

// NoNode marks an absent reference. In continuation position it means
// "done": nothing runs afterward.
const NoNode NodeID = -1

// Kind discriminates the control-flow IR variants
type Kind uint8

const (
	KindSend Kind = iota
	KindRecv
	KindEmbed
	KindCall
	KindChoose
	KindOffer
	KindSplit
	KindLoop
	KindBreak
	KindContinue

	// KindError anchors diagnostics when no sound node could be built
	KindError
)

var kindNames = map[Kind]string{
	KindSend:     "send",
	KindRecv:     "recv",
	KindEmbed:    "embed",
	KindCall:     "call",
	KindChoose:   "choose",
	KindOffer:    "offer",
	KindSplit:    "split",
	KindLoop:     "loop",
	KindBreak:    "break",
	KindContinue: "continue",
	KindError:    "error",
}

func (k Kind) String() string {
	return kindNames[k]
}

// CfgNode is one control-flow construct instance.
//
// Next is the node to execute afterward; NoNode means done. For Break and
// Continue nodes Next is kept as a syntactic link to whatever followed the
// jump in source order; control never flows along it, which is how code
// after a jump becomes unreachable.
type CfgNode struct {
	Kind Kind
	Next NodeID

	// Type is the value-type descriptor of send/recv/embed nodes
	Type string

	// Callee is the target protocol name of call nodes; Body is the
	// callee's root once linked (NoNode when the callee is undefined)
	Callee string
	Body   NodeID

	// Tx and Rx are the halves of split nodes
	Tx NodeID
	Rx NodeID

	// Branches are the ordered alternatives of choose/offer nodes; a
	// NoNode entry is an empty branch (fallthrough before scope
	// resolution, done afterward when there is nothing to fall into)
	Branches []NodeID

	// Target is the loop node a break/continue transfers to. Loop nodes
	// reuse Body for their loop body.
	Target NodeID

	// Provenance
	Span     parser.Location
	Protocol string

	// AllowUnreachable suppresses unreachable-code reporting on synthetic
	// nodes inserted by scope resolution
	AllowUnreachable bool

	diags []nodeDiag
}

type nodeDiag struct {
	code     domain.DiagnosticCode
	severity domain.Severity
	message  string
}

// Graph is the arena of CFG nodes for one compilation unit, shared by
// every protocol declared in it so call sites can reference callee roots
// directly.
type Graph struct {
	nodes []CfgNode
	roots []ProtocolRoot

	// unit-level diagnostics not attached to any node
	unitDiags []domain.Diagnostic
}

// ProtocolRoot names one protocol declaration and its entry node
type ProtocolRoot struct {
	Name string
	Root NodeID
	Span parser.Location
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{}
}

// Alloc adds a node to the arena and returns its index. Growing the
// arena can move it, invalidating every pointer previously obtained
// from Node; callers that allocate mid-mutation must fetch the node
// again before writing through it.
func (g *Graph) Alloc(n CfgNode) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Node returns a mutable reference to the node at id
func (g *Graph) Node(id NodeID) *CfgNode {
	return &g.nodes[id]
}

// Len returns the number of allocated nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Roots returns the protocol roots in declaration order
func (g *Graph) Roots() []ProtocolRoot {
	return g.roots
}

// RootOf returns the entry node of the named protocol
func (g *Graph) RootOf(name string) (NodeID, bool) {
	for _, r := range g.roots {
		if r.Name == name {
			return r.Root, true
		}
	}
	return NoNode, false
}

// AddDiagnostic attaches a diagnostic to a node. Attachment deduplicates
// by code and message, so repeated traversals never duplicate a finding.
func (g *Graph) AddDiagnostic(id NodeID, code domain.DiagnosticCode, severity domain.Severity, message string) {
	n := g.Node(id)
	for _, d := range n.diags {
		if d.code == code && d.message == message {
			return
		}
	}
	n.diags = append(n.diags, nodeDiag{code: code, severity: severity, message: message})
}

// AddUnitDiagnostic attaches a diagnostic to the unit as a whole
func (g *Graph) AddUnitDiagnostic(code domain.DiagnosticCode, severity domain.Severity, message string, span parser.Location) {
	for _, d := range g.unitDiags {
		if d.Code == code && d.Message == message {
			return
		}
	}
	g.unitDiags = append(g.unitDiags, domain.Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  message,
		File:     span.File,
		Span:     spanOf(span),
	})
}

// HasFatal reports whether the node carries an error-severity diagnostic
func (g *Graph) HasFatal(id NodeID) bool {
	for _, d := range g.Node(id).diags {
		if d.severity == domain.SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics flattens every attached diagnostic into a deterministic,
// location-ordered list
func (g *Graph) Diagnostics() []domain.Diagnostic {
	var out []domain.Diagnostic
	out = append(out, g.unitDiags...)
	for i := range g.nodes {
		n := &g.nodes[i]
		for _, d := range n.diags {
			out = append(out, domain.Diagnostic{
				Code:     d.code,
				Severity: d.severity,
				Message:  d.message,
				Protocol: n.Protocol,
				File:     n.Span.File,
				Span:     spanOf(n.Span),
			})
		}
	}
	domain.SortDiagnostics(out)
	return out
}

func spanOf(loc parser.Location) domain.Span {
	return domain.Span{
		StartLine: loc.StartLine,
		StartCol:  loc.StartCol,
		EndLine:   loc.EndLine,
		EndCol:    loc.EndCol,
	}
}
