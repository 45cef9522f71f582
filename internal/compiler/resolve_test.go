package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sessionkit/sessc/internal/parser"
)

func buildResolved(t *testing.T, src string) *Graph {
	t.Helper()
	unit, err := parser.Parse("test.ssn", []byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	g := BuildUnit(unit)
	Resolve(g)
	return g
}

// dumpGraph renders every node's edges so structural changes show up in
// a plain string comparison
func dumpGraph(g *Graph) string {
	var b strings.Builder
	for i := 0; i < g.Len(); i++ {
		n := g.Node(NodeID(i))
		fmt.Fprintf(&b, "%d: %s next=%d", i, n.Kind, n.Next)
		switch n.Kind {
		case KindLoop:
			fmt.Fprintf(&b, " body=%d", n.Body)
		case KindCall:
			fmt.Fprintf(&b, " body=%d callee=%s", n.Body, n.Callee)
		case KindSplit:
			fmt.Fprintf(&b, " tx=%d rx=%d", n.Tx, n.Rx)
		case KindChoose, KindOffer:
			fmt.Fprintf(&b, " branches=%v", n.Branches)
		case KindBreak, KindContinue:
			fmt.Fprintf(&b, " target=%d", n.Target)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestResolveIdempotent(t *testing.T) {
	srcs := []string{
		`protocol P { send A; recv B; }`,
		`protocol P { loop { send A; } }`,
		`protocol P { loop { choose { { send A; } { break; } } } recv B; }`,
		`protocol P { choose { { send A; } { } } recv B; }`,
		`protocol P { loop a { loop { break a; } } send Z; }`,
		`protocol P { split { tx { send A; } rx { recv B; } } send C; }`,
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			g := buildResolved(t, src)
			before := dumpGraph(g)
			Resolve(g)
			after := dumpGraph(g)
			if before != after {
				t.Errorf("second resolution changed the graph:\nbefore:\n%s\nafter:\n%s", before, after)
			}
		})
	}
}

func TestResolveClearsBranchingNext(t *testing.T) {
	g := buildResolved(t, `protocol P { choose { { send A; } { send B; } } recv C; }`)
	for i := 0; i < g.Len(); i++ {
		n := g.Node(NodeID(i))
		if (n.Kind == KindChoose || n.Kind == KindOffer) && n.Next != NoNode {
			t.Errorf("node %d: %s kept next=%d after resolution", i, n.Kind, n.Next)
		}
		if n.Kind == KindChoose || n.Kind == KindOffer {
			for j, br := range n.Branches {
				if br == NoNode {
					t.Errorf("node %d: branch %d left unfilled", i, j)
				}
			}
		}
	}
}

func TestResolveEmptyBranchTakesSuccessor(t *testing.T) {
	g := buildResolved(t, `protocol P { offer { { send A; } { } } recv C; }`)
	var offer *CfgNode
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).Kind == KindOffer {
			offer = g.Node(NodeID(i))
		}
	}
	if offer == nil {
		t.Fatal("no offer node built")
	}
	empty := offer.Branches[1]
	if empty == NoNode || g.Node(empty).Kind != KindRecv {
		t.Errorf("empty branch should point at the successor recv, got %v", empty)
	}
}

func TestResolveSynthesizesLoopContinue(t *testing.T) {
	g := buildResolved(t, `protocol P { loop { send A; } }`)
	var loop NodeID = NoNode
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).Kind == KindLoop {
			loop = NodeID(i)
		}
	}
	if loop == NoNode {
		t.Fatal("no loop node built")
	}
	body := g.Node(loop).Body
	tail := g.Node(body).Next
	if tail == NoNode {
		t.Fatal("loop body tail left open")
	}
	tn := g.Node(tail)
	if tn.Kind != KindContinue || tn.Target != loop {
		t.Errorf("body tail = %s target=%d, want continue back to %d", tn.Kind, tn.Target, loop)
	}
	if !tn.AllowUnreachable {
		t.Error("synthesized continue must be exempt from unreachable reporting")
	}
}

// Synthesizing the continue grows the arena while the loop node is being
// rewritten, so the body edge must be written through a fresh reference.
func TestResolveEmptyLoopBody(t *testing.T) {
	g := buildResolved(t, `protocol P { send A; loop { } }`)
	var loop NodeID = NoNode
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).Kind == KindLoop {
			loop = NodeID(i)
		}
	}
	if loop == NoNode {
		t.Fatal("no loop node built")
	}
	body := g.Node(loop).Body
	if body == NoNode {
		t.Fatal("empty loop body left unset after resolution")
	}
	bn := g.Node(body)
	if bn.Kind != KindContinue || bn.Target != loop {
		t.Errorf("body = %s target=%d, want continue back to %d", bn.Kind, bn.Target, loop)
	}
	before := dumpGraph(g)
	Resolve(g)
	if after := dumpGraph(g); before != after {
		t.Errorf("second resolution changed the graph:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestResolveSharesSyntheticContinue(t *testing.T) {
	g := buildResolved(t, `protocol P { loop { choose { { send A; } { send B; } { break; } } } }`)
	count := 0
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).AllowUnreachable {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d synthesized continues, want one shared node", count)
	}
}
