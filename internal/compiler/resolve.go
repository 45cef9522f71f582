package compiler

// Resolve rewrites the graph into its canonical pre-analysis form:
//
//   - choose/offer successors are spliced into every branch tail that
//     falls through, after which the node's own Next is cleared;
//   - every loop body ending in fallthrough gets a synthesized continue
//     back to its loop, shared across all fallthrough tails of that body.
//
// Running Resolve on an already resolved graph changes nothing.
func Resolve(g *Graph) {
	r := &resolver{g: g, visited: make([]bool, g.Len())}
	for _, root := range g.Roots() {
		r.resolve(root.Root)
	}
}

type resolver struct {
	g       *Graph
	visited []bool
}

func (r *resolver) resolve(id NodeID) {
	for id != NoNode {
		if int(id) < len(r.visited) {
			if r.visited[id] {
				return
			}
			r.visited[id] = true
		} else {
			// synthesized after Resolve started; already canonical
			return
		}
		n := r.g.Node(id)
		switch n.Kind {
		case KindChoose, KindOffer:
			if n.Next != NoNode {
				cont := n.Next
				n.Next = NoNode
				for i, br := range n.Branches {
					if br == NoNode {
						n.Branches[i] = cont
					} else {
						r.spliceTail(br, func() NodeID { return cont })
					}
				}
			}
			for _, br := range r.g.Node(id).Branches {
				r.resolve(br)
			}
			return
		case KindLoop:
			r.closeLoopBody(id)
			r.resolve(r.g.Node(id).Body)
			id = r.g.Node(id).Next
		case KindSplit:
			r.resolve(n.Tx)
			r.resolve(n.Rx)
			id = n.Next
		default:
			// call bodies are protocol roots resolved in their own right
			id = n.Next
		}
	}
}

// closeLoopBody gives every fallthrough tail of the loop body an explicit
// continue back to the loop. The continue node is created lazily and
// shared, and is marked so reachability reporting never flags it: a body
// that always exits through break leaves it dead by construction.
func (r *resolver) closeLoopBody(loop NodeID) {
	if r.g.Node(loop).Body == NoNode {
		// Alloc may move the arena, so fetch the node again afterward.
		body := r.newLoopContinue(loop)
		r.g.Node(loop).Body = body
		return
	}
	cont := NoNode
	r.spliceTail(r.g.Node(loop).Body, func() NodeID {
		if cont == NoNode {
			cont = r.newLoopContinue(loop)
		}
		return cont
	})
}

func (r *resolver) newLoopContinue(loop NodeID) NodeID {
	span := r.g.Node(loop).Span
	proto := r.g.Node(loop).Protocol
	return r.g.Alloc(CfgNode{
		Kind:             KindContinue,
		Target:           loop,
		Next:             NoNode,
		Span:             span,
		Protocol:         proto,
		AllowUnreachable: true,
	})
}

// spliceTail walks the Next chain from id and plants mk() at every
// fallthrough tail. Break and continue tails already terminate; nested
// choose/offer tails distribute the splice into their branches.
func (r *resolver) spliceTail(id NodeID, mk func() NodeID) {
	seen := make(map[NodeID]bool)
	r.splice(id, mk, seen)
}

func (r *resolver) splice(id NodeID, mk func() NodeID, seen map[NodeID]bool) {
	for id != NoNode && !seen[id] {
		seen[id] = true
		switch r.g.Node(id).Kind {
		case KindBreak, KindContinue:
			return
		case KindChoose, KindOffer:
			if next := r.g.Node(id).Next; next != NoNode {
				id = next
				continue
			}
			for i := range r.g.Node(id).Branches {
				if br := r.g.Node(id).Branches[i]; br == NoNode {
					// mk may allocate and move the arena; re-fetch before writing
					filled := mk()
					r.g.Node(id).Branches[i] = filled
				} else {
					r.splice(br, mk, seen)
				}
			}
			return
		default:
			if next := r.g.Node(id).Next; next != NoNode {
				id = next
				continue
			}
			tail := mk()
			r.g.Node(id).Next = tail
			return
		}
	}
}
