package compiler

import "github.com/sessionkit/sessc/domain"

// ReportUnreachable walks the graph from every protocol root, following
// Next edges only through nodes proven passable, and attaches one
// diagnostic per maximal unreachable region. The diagnostic severity is
// configurable so unreachable code can be promoted to a build failure.
//
// A region is reported at its head: an unreachable node with no
// unreachable predecessor. Regions that are pure cycles have no such
// head and are reported at their lowest-numbered node instead.
func ReportUnreachable(g *Graph, facts *FlowFacts, severity domain.Severity) {
	reach := make([]bool, g.Len())
	for _, root := range g.Roots() {
		markReachable(g, facts, root.Root, reach)
	}

	hasDeadPred := make([]bool, g.Len())
	forEachEdge(g, func(from, to NodeID) {
		if !reach[from] {
			hasDeadPred[to] = true
		}
	})

	covered := make([]bool, g.Len())
	report := func(id NodeID) {
		floodDead(g, id, reach, covered)
		if !g.Node(id).AllowUnreachable {
			g.AddDiagnostic(id, domain.DiagUnreachableCode, severity, "unreachable code")
		}
	}
	for id := 0; id < g.Len(); id++ {
		if !reach[id] && !covered[id] && !hasDeadPred[id] {
			report(NodeID(id))
		}
	}
	// leftover regions are cycles with no head
	for id := 0; id < g.Len(); id++ {
		if !reach[id] && !covered[id] {
			report(NodeID(id))
		}
	}
}

// markReachable follows the edges control can actually take: Next only
// past passable nodes, never past break/continue, and into every body
// and branch control can enter.
func markReachable(g *Graph, facts *FlowFacts, id NodeID, reach []bool) {
	if id == NoNode || reach[id] {
		return
	}
	reach[id] = true
	n := g.Node(id)
	switch n.Kind {
	case KindBreak, KindContinue:
		// control transfers away; the syntactic Next stays dark
	case KindChoose, KindOffer:
		for _, br := range n.Branches {
			markReachable(g, facts, br, reach)
		}
	case KindLoop:
		markReachable(g, facts, n.Body, reach)
		if facts.Passable(id) {
			markReachable(g, facts, n.Next, reach)
		}
	case KindSplit:
		markReachable(g, facts, n.Tx, reach)
		markReachable(g, facts, n.Rx, reach)
		if facts.Passable(id) {
			markReachable(g, facts, n.Next, reach)
		}
	case KindCall:
		// the callee root is reachable as its own protocol; what gates
		// the successor is whether the call can return
		if facts.Passable(id) {
			markReachable(g, facts, n.Next, reach)
		}
	default:
		if facts.Passable(id) {
			markReachable(g, facts, n.Next, reach)
		}
	}
}

// forEachEdge enumerates every structural edge except break/continue
// targets, which point at the loop a jump leaves rather than a node the
// jump flows into
func forEachEdge(g *Graph, fn func(from, to NodeID)) {
	emit := func(from, to NodeID) {
		if to != NoNode {
			fn(from, to)
		}
	}
	for i := 0; i < g.Len(); i++ {
		id := NodeID(i)
		n := g.Node(id)
		emit(id, n.Next)
		if n.Kind == KindLoop {
			emit(id, n.Body)
		}
		if n.Kind == KindSplit {
			emit(id, n.Tx)
			emit(id, n.Rx)
		}
		for _, br := range n.Branches {
			emit(id, br)
		}
	}
}

// floodDead covers the unreachable region connected to id so only its
// head gets a diagnostic
func floodDead(g *Graph, id NodeID, reach, covered []bool) {
	if id == NoNode || int(id) >= len(reach) || reach[id] || covered[id] {
		return
	}
	covered[id] = true
	n := g.Node(id)
	floodDead(g, n.Next, reach, covered)
	if n.Kind == KindLoop {
		floodDead(g, n.Body, reach, covered)
	}
	if n.Kind == KindSplit {
		floodDead(g, n.Tx, reach, covered)
		floodDead(g, n.Rx, reach, covered)
	}
	for _, br := range n.Branches {
		floodDead(g, br, reach, covered)
	}
}
