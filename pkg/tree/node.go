package tree

import "slices"

// RootID is the identifier of the synthetic root node. It never names a real
// package and the root is never placed in the registry.
const RootID = "-- ROOT --"

// nodeKey is the identity of a node inside its parent's children set.
type nodeKey struct {
	id    string
	depth int
}

// Node is one occurrence of a package identifier at one position in the tree.
//
// Depth is the number of edges from the synthetic root, so every non-root node
// has Depth == Parent.Depth+1. Parent is a non-owning back reference used for
// ancestor walks only; ownership flows strictly from parent to children.
type Node struct {
	ID     string
	Depth  int
	Parent *Node

	children map[nodeKey]*Node
	order    []*Node
}

// newRoot creates the synthetic root at depth 0.
func newRoot() *Node {
	return &Node{ID: RootID}
}

// newChild creates a node for id one level below n and links it into n's
// children set. The node is returned even when an equal sibling already
// exists; such a duplicate keeps its Parent link but is not added to the set.
func (n *Node) newChild(id string) *Node {
	c := &Node{ID: id, Depth: n.Depth + 1, Parent: n}
	n.addChild(c)
	return c
}

// addChild inserts c into the children set and reports whether it was added.
// Membership uses [Node.Equal], so a second child with the same identifier at
// the same depth is rejected.
func (n *Node) addChild(c *Node) bool {
	k := nodeKey{c.ID, c.Depth}
	if n.children == nil {
		n.children = make(map[nodeKey]*Node)
	}
	if _, ok := n.children[k]; ok {
		return false
	}
	n.children[k] = c
	n.order = append(n.order, c)
	return true
}

// Equal reports whether n and o have the same identifier and depth.
// This is the children-set equality only; cycle detection compares
// identifiers alone via [Node.HasAncestor].
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.ID == o.ID && n.Depth == o.Depth
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// Children returns the members of n's children set in insertion order.
// Sibling order carries no meaning; the order is stable only for output.
func (n *Node) Children() []*Node { return slices.Clone(n.order) }

// ChildCount returns the size of n's children set.
func (n *Node) ChildCount() int { return len(n.order) }

// HasAncestor reports whether id equals n's identifier or the identifier of
// any node above n. The synthetic root never matches. The walk stops at the
// first match and costs O(depth).
func (n *Node) HasAncestor(id string) bool {
	for p := n; p != nil && !p.IsRoot(); p = p.Parent {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Ancestors returns the identifiers above n, nearest first, stopping before
// the synthetic root. The node's own identifier is not included.
//
// For root → X → Y → Z, Ancestors of Z is ["Y", "X"].
func (n *Node) Ancestors() []string {
	var chain []string
	for p := n.Parent; p != nil && !p.IsRoot(); p = p.Parent {
		chain = append(chain, p.ID)
	}
	return chain
}

// Path returns the identifiers from the first level below the root down to n.
func (n *Node) Path() []string {
	if n.IsRoot() {
		return nil
	}
	path := append([]string{n.ID}, n.Ancestors()...)
	slices.Reverse(path)
	return path
}

// String returns the node's identifier.
func (n *Node) String() string { return n.ID }
