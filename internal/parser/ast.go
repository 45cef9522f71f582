package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Protocol surface-syntax node types
const (
	// NodeUnit is the root of one parsed protocol file
	NodeUnit NodeType = "Unit"

	// NodeProtocol is a single named protocol declaration
	NodeProtocol NodeType = "Protocol"

	// Leaf actions
	NodeSend  NodeType = "Send"
	NodeRecv  NodeType = "Recv"
	NodeEmbed NodeType = "Embed"
	NodeEnd   NodeType = "End"

	// Subroutine invocation
	NodeCall NodeType = "Call"

	// Branching
	NodeChoose NodeType = "Choose"
	NodeOffer  NodeType = "Offer"
	NodeBranch NodeType = "Branch"

	// Concurrent halves
	NodeSplit NodeType = "Split"

	// Loops and control transfer
	NodeLoop     NodeType = "Loop"
	NodeBreak    NodeType = "Break"
	NodeContinue NodeType = "Continue"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents a surface-syntax AST node
type Node struct {
	Type     NodeType
	Location Location

	// Name holds the protocol name (Protocol), the callee (Call), the
	// value-type descriptor (Send/Recv/Embed), or the loop label
	// (Loop/Break/Continue; empty means the innermost loop)
	Name string

	// Body is the statement sequence of Unit/Protocol/Loop/Branch nodes
	Body []*Node

	// Branches are the ordered alternatives of Choose/Offer nodes
	Branches []*Node

	// Tx and Rx are the halves of a Split node (either may be nil)
	Tx *Node
	Rx *Node
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{Type: nodeType}
}

// Walk traverses the AST depth-first and calls the visitor for each node.
// If the visitor returns false, traversal of that branch is stopped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, stmt := range n.Body {
		stmt.Walk(visitor)
	}
	for _, br := range n.Branches {
		br.Walk(visitor)
	}
	if n.Tx != nil {
		n.Tx.Walk(visitor)
	}
	if n.Rx != nil {
		n.Rx.Walk(visitor)
	}
}

// Protocols returns the protocol declarations of a unit in source order
func (n *Node) Protocols() []*Node {
	if n == nil || n.Type != NodeUnit {
		return nil
	}
	return n.Body
}
