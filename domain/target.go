package domain

import (
	"fmt"
	"strings"
)

// TargetKind discriminates the variants of a lowered protocol tree
type TargetKind string

const (
	TargetDone     TargetKind = "done"
	TargetSend     TargetKind = "send"
	TargetRecv     TargetKind = "recv"
	TargetEmbed    TargetKind = "embed"
	TargetCall     TargetKind = "call"
	TargetChoose   TargetKind = "choose"
	TargetOffer    TargetKind = "offer"
	TargetSplit    TargetKind = "split"
	TargetLoop     TargetKind = "loop"
	TargetBreak    TargetKind = "break"
	TargetContinue TargetKind = "continue"

	// TargetError is a placeholder emitted in place of a subtree that
	// carried a fatal diagnostic, so sibling subtrees still lower.
	TargetError TargetKind = "error"
)

// Target is one node of the lowered, tree-shaped protocol representation.
//
// The tree is closed: every control transfer has a concrete destination.
// Break and Continue carry an index counting enclosing Loop scopes
// (0 = innermost) instead of a label. Call nodes reference the callee by
// name and are not inlined, so recursive protocols stay finite.
type Target struct {
	Kind TargetKind `json:"kind" yaml:"kind"`

	// Type is the value-type descriptor for send/recv/embed nodes
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Callee is the protocol name for call nodes
	Callee string `json:"callee,omitempty" yaml:"callee,omitempty"`

	// Index is the enclosing-loop index for break/continue nodes
	Index int `json:"index" yaml:"index"`

	// Body is the loop body for loop nodes
	Body *Target `json:"body,omitempty" yaml:"body,omitempty"`

	// Then is the sequential continuation for send/recv/embed/call/split/loop
	Then *Target `json:"then,omitempty" yaml:"then,omitempty"`

	// Branches are the ordered alternatives of choose/offer nodes
	Branches []*Target `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Tx and Rx are the send-only and receive-only halves of split nodes
	Tx *Target `json:"tx,omitempty" yaml:"tx,omitempty"`
	Rx *Target `json:"rx,omitempty" yaml:"rx,omitempty"`
}

// Equal reports whether two lowered trees are structurally identical
func (t *Target) Equal(o *Target) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Type != o.Type || t.Callee != o.Callee || t.Index != o.Index {
		return false
	}
	if !t.Body.Equal(o.Body) || !t.Then.Equal(o.Then) || !t.Tx.Equal(o.Tx) || !t.Rx.Equal(o.Rx) {
		return false
	}
	if len(t.Branches) != len(o.Branches) {
		return false
	}
	for i := range t.Branches {
		if !t.Branches[i].Equal(o.Branches[i]) {
			return false
		}
	}
	return true
}

// NodeCount returns the number of nodes in the tree
func (t *Target) NodeCount() int {
	if t == nil {
		return 0
	}
	n := 1 + t.Body.NodeCount() + t.Then.NodeCount() + t.Tx.NodeCount() + t.Rx.NodeCount()
	for _, b := range t.Branches {
		n += b.NodeCount()
	}
	return n
}

// Surface renders the lowered tree back into surface syntax as a protocol
// declaration. Loop labels are canonical (l0, l1, ... by nesting depth), so
// re-parsing and re-lowering the output reproduces the same tree.
func (t *Target) Surface(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "protocol %s {\n", name)
	t.writeSurface(&b, 1, 0)
	b.WriteString("}\n")
	return b.String()
}

func (t *Target) writeSurface(b *strings.Builder, indent, depth int) {
	ind := strings.Repeat("    ", indent)
	if t == nil {
		b.WriteString(ind + "end;\n")
		return
	}
	switch t.Kind {
	case TargetDone, TargetError:
		b.WriteString(ind + "end;\n")
	case TargetSend:
		fmt.Fprintf(b, "%ssend %s;\n", ind, t.Type)
		t.Then.writeSurface(b, indent, depth)
	case TargetRecv:
		fmt.Fprintf(b, "%srecv %s;\n", ind, t.Type)
		t.Then.writeSurface(b, indent, depth)
	case TargetEmbed:
		fmt.Fprintf(b, "%sembed %s;\n", ind, t.Type)
		t.Then.writeSurface(b, indent, depth)
	case TargetCall:
		fmt.Fprintf(b, "%scall %s;\n", ind, t.Callee)
		t.Then.writeSurface(b, indent, depth)
	case TargetChoose, TargetOffer:
		kw := "choose"
		if t.Kind == TargetOffer {
			kw = "offer"
		}
		fmt.Fprintf(b, "%s%s {\n", ind, kw)
		for _, br := range t.Branches {
			b.WriteString(ind + "    {\n")
			br.writeSurface(b, indent+2, depth)
			b.WriteString(ind + "    }\n")
		}
		b.WriteString(ind + "}\n")
	case TargetSplit:
		fmt.Fprintf(b, "%ssplit {\n", ind)
		b.WriteString(ind + "    tx {\n")
		t.Tx.writeSurface(b, indent+2, depth)
		b.WriteString(ind + "    }\n")
		b.WriteString(ind + "    rx {\n")
		t.Rx.writeSurface(b, indent+2, depth)
		b.WriteString(ind + "    }\n")
		b.WriteString(ind + "}\n")
		t.Then.writeSurface(b, indent, depth)
	case TargetLoop:
		fmt.Fprintf(b, "%sloop l%d {\n", ind, depth)
		t.Body.writeSurface(b, indent+1, depth+1)
		b.WriteString(ind + "}\n")
		t.Then.writeSurface(b, indent, depth)
	case TargetBreak:
		fmt.Fprintf(b, "%sbreak l%d;\n", ind, depth-1-t.Index)
	case TargetContinue:
		fmt.Fprintf(b, "%scontinue l%d;\n", ind, depth-1-t.Index)
	}
}
