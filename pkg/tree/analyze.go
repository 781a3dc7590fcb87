package tree

import pkgerrors "github.com/matzehuels/treedepth/pkg/errors"

// ErrNoData is returned by [Tree.Analyze] when the registry is empty, which
// happens when no package declares any dependency. It carries
// [pkgerrors.ErrCodeNoData].
var ErrNoData = pkgerrors.New(pkgerrors.ErrCodeNoData, "the tree has no nodes")

// Deepest is one identifier found at the maximum depth.
type Deepest struct {
	ID string
	// Node is the first registry entry with this identifier at the maximum depth.
	Node *Node
	// Chain holds the identifiers above Node, nearest first, root excluded.
	Chain []string
}

// Analysis is the result of depth analysis over a built tree.
type Analysis struct {
	MaxDepth int
	// Deepest lists distinct identifiers at MaxDepth in discovery order.
	Deepest []Deepest
}

// IDs returns the deepest identifiers in discovery order.
func (a *Analysis) IDs() []string {
	ids := make([]string, len(a.Deepest))
	for i, d := range a.Deepest {
		ids[i] = d.ID
	}
	return ids
}

// Analyze computes the maximum depth over the registry and selects every
// distinct identifier registered at that depth. When several nodes share an
// identifier at the maximum depth, the first one discovered represents it.
func (t *Tree) Analyze() (*Analysis, error) {
	if len(t.registry) == 0 {
		return nil, ErrNoData
	}

	a := &Analysis{MaxDepth: t.MaxDepth()}
	seen := make(map[string]bool)
	for _, n := range t.registry {
		if n.Depth != a.MaxDepth || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		a.Deepest = append(a.Deepest, Deepest{ID: n.ID, Node: n, Chain: n.Ancestors()})
	}
	return a, nil
}
