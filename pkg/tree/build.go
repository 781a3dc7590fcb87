package tree

// Index is the read-only dependency lookup the builder consumes.
// Dependencies returns the declared direct dependencies of id and whether id
// is known at all. A known package may have an empty list.
type Index interface {
	Dependencies(id string) ([]string, bool)
}

// MapIndex is an [Index] backed by a plain map.
type MapIndex map[string][]string

// Dependencies implements [Index].
func (m MapIndex) Dependencies(id string) ([]string, bool) {
	deps, ok := m[id]
	return deps, ok
}

// TopLevel returns the identifiers whose dependency list is non-empty, in the
// order given by ids. It is the initial expansion frontier for [Build].
func TopLevel(idx Index, ids []string) []string {
	var top []string
	for _, id := range ids {
		if deps, ok := idx.Dependencies(id); ok && len(deps) > 0 {
			top = append(top, id)
		}
	}
	return top
}

// Tree is a fully built dependency tree together with the flat registry of
// every node created while building it.
type Tree struct {
	Root *Node

	registry []*Node
	missing  []Ref
	cycles   []Ref
}

// Ref is a dependency edge that was dropped during the build, either because
// ID is not in the index or because ID is already on the path from the root
// to From.
type Ref struct {
	From *Node
	ID   string
}

// Stats summarizes a build.
type Stats struct {
	Nodes    int // nodes in the registry (root excluded)
	MaxDepth int // 0 for an empty tree
	Missing  int // dependency edges dropped as unresolved
	Cycles   int // dependency edges dropped by cycle detection
	TopLevel int // children of the root
}

// builder carries the state threaded through the recursive expansion.
type builder struct {
	idx  Index
	obs  Observer
	tree *Tree
}

// Build expands top under a fresh synthetic root and returns the resulting
// tree. For each identifier, in input order:
//
//   - an identifier absent from the index is reported to obs as missing and
//     the edge is dropped
//   - an identifier already present on the path from the root to the parent
//     is reported to obs as a cycle and the edge is dropped
//   - otherwise a node is created one level below the parent and registered;
//     it is a leaf when the package declares no dependencies and is expanded
//     recursively when it does
//
// If obs is nil, diagnostics are discarded.
func Build(idx Index, top []string, obs Observer) *Tree {
	if obs == nil {
		obs = NopObserver{}
	}
	b := &builder{idx: idx, obs: obs, tree: &Tree{Root: newRoot()}}
	b.expand(b.tree.Root, top)
	return b.tree
}

func (b *builder) expand(parent *Node, ids []string) {
	for _, id := range ids {
		deps, ok := b.idx.Dependencies(id)
		if !ok {
			b.tree.missing = append(b.tree.missing, Ref{From: parent, ID: id})
			b.obs.Missing(parent, id)
			continue
		}
		if len(deps) > 0 && parent.HasAncestor(id) {
			b.tree.cycles = append(b.tree.cycles, Ref{From: parent, ID: id})
			b.obs.Cycle(parent, id)
			continue
		}

		n := parent.newChild(id)
		b.tree.registry = append(b.tree.registry, n)
		b.obs.Dive(n)

		if len(deps) > 0 {
			b.expand(n, deps)
		}
	}
}

// Nodes returns the registry in discovery order. The root is never included.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.registry))
	copy(out, t.registry)
	return out
}

// Len returns the number of registered nodes.
func (t *Tree) Len() int { return len(t.registry) }

// Missing returns the dependency edges dropped because the target is unknown.
func (t *Tree) Missing() []Ref { return append([]Ref(nil), t.missing...) }

// Cycles returns the dependency edges dropped by cycle detection.
func (t *Tree) Cycles() []Ref { return append([]Ref(nil), t.cycles...) }

// MaxDepth returns the greatest depth in the registry, or 0 when it is empty.
func (t *Tree) MaxDepth() int {
	deepest := 0
	for _, n := range t.registry {
		if n.Depth > deepest {
			deepest = n.Depth
		}
	}
	return deepest
}

// Stats returns summary counts for the build.
func (t *Tree) Stats() Stats {
	return Stats{
		Nodes:    len(t.registry),
		MaxDepth: t.MaxDepth(),
		Missing:  len(t.missing),
		Cycles:   len(t.cycles),
		TopLevel: t.Root.ChildCount(),
	}
}

// Walk visits every node below the root in depth-first pre-order, following
// children-set membership. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(n *Node)
	visit = func(n *Node) {
		for _, c := range n.order {
			if fn(c) {
				visit(c)
			}
		}
	}
	visit(t.Root)
}
