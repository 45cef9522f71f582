package compiler

// The flow analysis proves three fact families over the resolved graph:
//
//	passable(n)        control entering n can eventually leave past it
//	haltable(n)        control entering n can eventually finish the protocol
//	breakable(n, l)    control entering n can reach a break targeting loop l
//
// Facts are derived through implications whose preconditions are
// disjunctions of conjunctions, evaluated to a least fixed point by a
// worklist. Anything not proven when the worklist stops making progress
// is false; cyclic derivations (a loop whose only exit is through
// itself) therefore resolve to false without special casing.

type factKind uint8

const (
	factPassable factKind = iota
	factHaltable
	factBreakable
)

type fact struct {
	kind factKind
	node NodeID
	loop NodeID // targeted loop for factBreakable, NoNode otherwise
}

type conjunction []fact

type implication struct {
	consequent fact
	clauses    []conjunction
}

// FlowFacts is the proven fixed point, queried by later stages
type FlowFacts struct {
	proven map[fact]bool
}

// Passable reports whether control entering id can leave past it
func (f *FlowFacts) Passable(id NodeID) bool {
	return f.proven[fact{kind: factPassable, node: id, loop: NoNode}]
}

// Haltable reports whether control entering id can run the rest of the
// protocol to completion. An absent continuation is trivially haltable.
func (f *FlowFacts) Haltable(id NodeID) bool {
	if id == NoNode {
		return true
	}
	return f.proven[fact{kind: factHaltable, node: id, loop: NoNode}]
}

// BreakableTo reports whether control entering id can reach a break
// targeting the given loop
func (f *FlowFacts) BreakableTo(id, loop NodeID) bool {
	if id == NoNode {
		return false
	}
	return f.proven[fact{kind: factBreakable, node: id, loop: loop}]
}

// SolveFlow computes the flow fixed point for every node in the graph
func SolveFlow(g *Graph) *FlowFacts {
	s := &solver{
		g:      g,
		proven: make(map[fact]bool),
		seen:   make(map[fact]bool),
	}
	for id := 0; id < g.Len(); id++ {
		s.want(fact{kind: factPassable, node: NodeID(id), loop: NoNode})
		s.want(fact{kind: factHaltable, node: NodeID(id), loop: NoNode})
	}
	s.run()
	return &FlowFacts{proven: s.proven}
}

type solver struct {
	g      *Graph
	proven map[fact]bool
	seen   map[fact]bool
	queue  []implication
}

// want registers interest in a fact, enqueueing its derivation rule the
// first time. Facts with no rule stay unproven, which is their value.
func (s *solver) want(f fact) {
	if s.seen[f] {
		return
	}
	s.seen[f] = true
	if imp, ok := s.implicationFor(f); ok {
		s.queue = append(s.queue, imp)
	}
}

func (s *solver) run() {
	for {
		progress := false
		pending := s.queue
		s.queue = nil
		var unresolved []implication
		for _, imp := range pending {
			if s.proven[imp.consequent] {
				continue
			}
			if s.entailed(imp.clauses) {
				s.proven[imp.consequent] = true
				progress = true
				continue
			}
			for _, c := range imp.clauses {
				for _, f := range c {
					s.want(f)
				}
			}
			unresolved = append(unresolved, imp)
		}
		discovered := len(s.queue) > 0
		s.queue = append(s.queue, unresolved...)
		if len(s.queue) == 0 {
			return
		}
		if !progress && !discovered {
			// fixed point: nothing left can ever fire
			return
		}
	}
}

// entailed evaluates a DNF precondition against the proven set. An empty
// clause is an axiom.
func (s *solver) entailed(clauses []conjunction) bool {
	for _, c := range clauses {
		ok := true
		for _, f := range c {
			if !s.proven[f] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (s *solver) implicationFor(f fact) (implication, bool) {
	n := s.g.Node(f.node)
	switch f.kind {
	case factPassable:
		return s.passableRule(f, n)
	case factHaltable:
		return s.haltableRule(f, n)
	case factBreakable:
		return s.breakableRule(f, n)
	}
	return implication{}, false
}

func passable(id NodeID) fact { return fact{kind: factPassable, node: id, loop: NoNode} }
func haltable(id NodeID) fact { return fact{kind: factHaltable, node: id, loop: NoNode} }

func breakable(id, loop NodeID) fact {
	return fact{kind: factBreakable, node: id, loop: loop}
}

func (s *solver) passableRule(f fact, n *CfgNode) (implication, bool) {
	switch n.Kind {
	case KindSend, KindRecv, KindEmbed, KindError:
		// error anchors pass so one structural fault does not cascade
		// into spurious unreachable reports downstream
		return implication{consequent: f, clauses: []conjunction{{}}}, true
	case KindCall:
		var c conjunction
		if n.Body != NoNode {
			c = append(c, haltable(n.Body))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindSplit:
		var c conjunction
		if n.Tx != NoNode {
			c = append(c, haltable(n.Tx))
		}
		if n.Rx != NoNode {
			c = append(c, haltable(n.Rx))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindLoop:
		if n.Body == NoNode {
			return implication{}, false
		}
		return implication{consequent: f, clauses: []conjunction{{breakable(n.Body, f.node)}}}, true
	default:
		// break, continue, choose, offer: passability is never consulted
		// and never provable
		return implication{}, false
	}
}

func (s *solver) haltableRule(f fact, n *CfgNode) (implication, bool) {
	// a NoNode continuation is trivially haltable, so it contributes no
	// conjunct at all
	switch n.Kind {
	case KindSend, KindRecv, KindEmbed, KindError:
		var c conjunction
		if n.Next != NoNode {
			c = append(c, haltable(n.Next))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindCall:
		var c conjunction
		if n.Body != NoNode {
			c = append(c, haltable(n.Body))
		}
		if n.Next != NoNode {
			c = append(c, haltable(n.Next))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindSplit:
		var c conjunction
		if n.Tx != NoNode {
			c = append(c, haltable(n.Tx))
		}
		if n.Rx != NoNode {
			c = append(c, haltable(n.Rx))
		}
		if n.Next != NoNode {
			c = append(c, haltable(n.Next))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindChoose, KindOffer:
		clauses := make([]conjunction, 0, len(n.Branches))
		for _, br := range n.Branches {
			if br == NoNode {
				clauses = append(clauses, conjunction{})
			} else {
				clauses = append(clauses, conjunction{haltable(br)})
			}
		}
		if len(clauses) == 0 {
			return implication{}, false
		}
		return implication{consequent: f, clauses: clauses}, true
	case KindLoop:
		if n.Body == NoNode {
			return implication{}, false
		}
		c := conjunction{breakable(n.Body, f.node)}
		if n.Next != NoNode {
			c = append(c, haltable(n.Next))
		}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	default:
		// break and continue abandon the current continuation
		return implication{}, false
	}
}

func (s *solver) breakableRule(f fact, n *CfgNode) (implication, bool) {
	switch n.Kind {
	case KindBreak:
		if n.Target == f.loop {
			return implication{consequent: f, clauses: []conjunction{{}}}, true
		}
		return implication{}, false
	case KindContinue:
		return implication{}, false
	case KindSend, KindRecv, KindEmbed, KindError:
		if n.Next == NoNode {
			return implication{}, false
		}
		return implication{consequent: f, clauses: []conjunction{{breakable(n.Next, f.loop)}}}, true
	case KindCall, KindSplit:
		// the break can only be past the node, so the node must be
		// passable first
		if n.Next == NoNode {
			return implication{}, false
		}
		c := conjunction{passable(f.node), breakable(n.Next, f.loop)}
		return implication{consequent: f, clauses: []conjunction{c}}, true
	case KindLoop:
		var clauses []conjunction
		if n.Body != NoNode {
			// a break to an enclosing loop can sit inside the body
			clauses = append(clauses, conjunction{breakable(n.Body, f.loop)})
		}
		if n.Next != NoNode {
			clauses = append(clauses, conjunction{passable(f.node), breakable(n.Next, f.loop)})
		}
		if len(clauses) == 0 {
			return implication{}, false
		}
		return implication{consequent: f, clauses: clauses}, true
	case KindChoose, KindOffer:
		var clauses []conjunction
		for _, br := range n.Branches {
			if br != NoNode {
				clauses = append(clauses, conjunction{breakable(br, f.loop)})
			}
		}
		if len(clauses) == 0 {
			return implication{}, false
		}
		return implication{consequent: f, clauses: clauses}, true
	}
	return implication{}, false
}
