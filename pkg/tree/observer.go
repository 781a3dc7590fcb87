package tree

// Observer receives the advisory diagnostic stream produced while building.
// Implementations must not retain the nodes beyond the lifetime of the tree.
type Observer interface {
	// Dive is called for every node created, before it is expanded.
	Dive(n *Node)
	// Missing is called when id, declared by from, is not in the index.
	// No node is created for id.
	Missing(from *Node, id string)
	// Cycle is called when id, declared by from, is already on the path
	// between the root and from. No node is created for id.
	Cycle(from *Node, id string)
}

// NopObserver discards all diagnostics.
type NopObserver struct{}

func (NopObserver) Dive(*Node)            {}
func (NopObserver) Missing(*Node, string) {}
func (NopObserver) Cycle(*Node, string)   {}

var _ Observer = NopObserver{}
