package compiler

import "github.com/sessionkit/sessc/domain"

// LowerProtocol converts one protocol's graph into the tree-shaped
// target form. Call nodes keep their callee by name rather than inlining
// it, so mutually recursive protocols lower to finite trees. Loop
// references become indices counting enclosing loops from the innermost
// outward.
//
// Subtrees carrying a fatal diagnostic lower to an error placeholder so
// sibling subtrees still surface their own findings; ok reports whether
// the whole tree is clean enough to emit.
func LowerProtocol(g *Graph, facts *FlowFacts, root NodeID) (tree *domain.Target, ok bool) {
	l := &lowerer{g: g, facts: facts}
	t := l.lower(root)
	return t, !l.fatal
}

type lowerer struct {
	g     *Graph
	facts *FlowFacts
	loops []NodeID
	fatal bool
}

func (l *lowerer) lower(id NodeID) *domain.Target {
	if id == NoNode {
		return &domain.Target{Kind: domain.TargetDone}
	}
	n := l.g.Node(id)
	if l.g.HasFatal(id) {
		l.fatal = true
		return &domain.Target{Kind: domain.TargetError}
	}
	switch n.Kind {
	case KindSend:
		return &domain.Target{Kind: domain.TargetSend, Type: n.Type, Then: l.lower(n.Next)}
	case KindRecv:
		return &domain.Target{Kind: domain.TargetRecv, Type: n.Type, Then: l.lower(n.Next)}
	case KindEmbed:
		return &domain.Target{Kind: domain.TargetEmbed, Type: n.Type, Then: l.lower(n.Next)}
	case KindCall:
		return &domain.Target{Kind: domain.TargetCall, Callee: n.Callee, Then: l.lower(n.Next)}
	case KindChoose:
		return &domain.Target{Kind: domain.TargetChoose, Branches: l.lowerBranches(n.Branches)}
	case KindOffer:
		return &domain.Target{Kind: domain.TargetOffer, Branches: l.lowerBranches(n.Branches)}
	case KindSplit:
		return &domain.Target{
			Kind: domain.TargetSplit,
			Tx:   l.lower(n.Tx),
			Rx:   l.lower(n.Rx),
			Then: l.lower(n.Next),
		}
	case KindLoop:
		return l.lowerLoop(id, n)
	case KindBreak:
		return l.lowerJump(id, n, domain.TargetBreak)
	case KindContinue:
		return l.lowerJump(id, n, domain.TargetContinue)
	default:
		l.fatal = true
		return &domain.Target{Kind: domain.TargetError}
	}
}

func (l *lowerer) lowerBranches(branches []NodeID) []*domain.Target {
	out := make([]*domain.Target, 0, len(branches))
	for _, br := range branches {
		out = append(out, l.lower(br))
	}
	return out
}

// lowerLoop rejects loops no reachable break can exit before descending.
// A break to an enclosing loop counts: leaving an outer loop leaves this
// one too.
func (l *lowerer) lowerLoop(id NodeID, n *CfgNode) *domain.Target {
	targets := make(map[NodeID]bool)
	collectBreakTargets(l.g, l.facts, n.Body, targets, make(map[NodeID]bool))
	productive := targets[id]
	for _, enclosing := range l.loops {
		if targets[enclosing] {
			productive = true
		}
	}
	if !productive {
		l.g.AddDiagnostic(id, domain.DiagUnproductiveLoop, domain.SeverityError,
			"loop can never be exited by a reachable break")
		l.fatal = true
		return &domain.Target{Kind: domain.TargetError}
	}
	l.loops = append(l.loops, id)
	body := l.lower(n.Body)
	l.loops = l.loops[:len(l.loops)-1]
	return &domain.Target{Kind: domain.TargetLoop, Body: body, Then: l.lower(n.Next)}
}

func (l *lowerer) lowerJump(id NodeID, n *CfgNode, kind domain.TargetKind) *domain.Target {
	for i := len(l.loops) - 1; i >= 0; i-- {
		if l.loops[i] == n.Target {
			return &domain.Target{Kind: kind, Index: len(l.loops) - 1 - i}
		}
	}
	l.g.AddDiagnostic(id, domain.DiagMalformedConstruct, domain.SeverityError,
		"jump target is not an enclosing loop")
	l.fatal = true
	return &domain.Target{Kind: domain.TargetError}
}

// collectBreakTargets gathers the loops exitable from the chain at id,
// following only edges control can actually take
func collectBreakTargets(g *Graph, facts *FlowFacts, id NodeID, out, seen map[NodeID]bool) {
	if id == NoNode || seen[id] {
		return
	}
	seen[id] = true
	n := g.Node(id)
	switch n.Kind {
	case KindBreak:
		out[n.Target] = true
	case KindContinue:
	case KindChoose, KindOffer:
		for _, br := range n.Branches {
			collectBreakTargets(g, facts, br, out, seen)
		}
	case KindLoop:
		// breaks inside a nested body can still target outer loops
		collectBreakTargets(g, facts, n.Body, out, seen)
		if facts.Passable(id) {
			collectBreakTargets(g, facts, n.Next, out, seen)
		}
	case KindCall, KindSplit:
		// breaks never escape a callee or a split half
		if facts.Passable(id) {
			collectBreakTargets(g, facts, n.Next, out, seen)
		}
	default:
		if facts.Passable(id) {
			collectBreakTargets(g, facts, n.Next, out, seen)
		}
	}
}
