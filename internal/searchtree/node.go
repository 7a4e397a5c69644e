// Package searchtree parses the search-tree snapshots written by the packing
// simulation's MCTS into flat node records.
//
// A snapshot line holds one node literal:
//
//	volume=<num>,rotation=(<num>,<num>,<num>),depth=<num>,visits=<num>,eval=<num>,
//	bestRolloutDepth=<num>,bestRolloutExtractedPercentage=<num>,children=[<literal>,<literal>,]
//
// where each child is itself a node literal followed by a comma. See ParseLine.
package searchtree

import "fmt"

// NoParent is the ParentID of the root node of a parsed line.
// Ids issued by IDCounter start at 1, so it never collides with a real node.
const NoParent = 0

// Fields are the scalar values of one node literal, without its children.
type Fields struct {
	Volume   float64
	Rotation [3]float64
	Depth    int
	Visits   int
	Eval     float64

	// BestRolloutDepth is the deepest rollout achieved under this node.
	BestRolloutDepth int

	// BestRolloutExtractedPercentage is the fraction of volume extracted in the best rollout.
	BestRolloutExtractedPercentage float64
}

// Node is one snapshot of a search-tree node, as parsed from a line.
// Nodes are read-only once the parse returns.
type Node struct {
	ID       int
	ParentID int
	Fields

	// ChildIDs lists the ids of the children, in the order they appear in the literal.
	ChildIDs []int
}

// IsRoot returns whether the node is the root of its parsed line.
func (n *Node) IsRoot() bool {
	return n.ParentID == NoParent
}

func (n *Node) String() string {
	return fmt.Sprintf("node #%d (parent=%d, depth=%d, visits=%d, volume=%g, eval=%g)",
		n.ID, n.ParentID, n.Depth, n.Visits, n.Volume, n.Eval)
}

// IDCounter issues node ids for one parse. It is shared by all the recursive calls
// of that parse, and never reused across lines.
type IDCounter struct {
	last int
}

// Next returns the next id: 1 for the first call.
func (c *IDCounter) Next() int {
	c.last++
	return c.last
}

// Issued returns how many ids were issued so far.
func (c *IDCounter) Issued() int {
	return c.last
}
