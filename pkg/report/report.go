// Package report turns a depth analysis into output: the plain console
// layout, JSON for tooling, and Graphviz DOT or SVG for the deepest chains.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/treedepth/pkg/tree"
)

// Chain is one deepest package with its ancestors, nearest first.
type Chain struct {
	ID        string   `json:"id"`
	Hierarchy []string `json:"hierarchy"`
}

// Edge is a dependency reference dropped during the build.
type Edge struct {
	From      string `json:"from"`
	FromDepth int    `json:"from_depth"`
	To        string `json:"to"`
}

// Report is everything a run prints.
type Report struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source,omitempty"`
	Generated time.Time `json:"generated"`

	Archives int      `json:"archives,omitempty"`
	Broken   []string `json:"broken,omitempty"`

	Packages int `json:"packages"`
	// Leaves counts packages that declare no dependencies. They sit at depth
	// 1 by definition and are never expanded.
	Leaves   int `json:"leaves"`
	TopLevel int `json:"top_level"`
	Nodes    int `json:"nodes"`

	// NoData is set when the tree is empty; MaxDepth and Deepest are then zero.
	NoData   bool    `json:"no_data,omitempty"`
	MaxDepth int     `json:"max_depth"`
	Deepest  []Chain `json:"deepest"`

	Missing []Edge `json:"missing,omitempty"`
	Cycles  []Edge `json:"cycles,omitempty"`

	tree     *tree.Tree
	analysis *tree.Analysis
}

// Options carries the run facts that are not part of the tree.
type Options struct {
	Source   string
	Packages int
	Leaves   int
	Archives int
	Broken   []string
}

// New assembles a report. a is nil when analysis returned [tree.ErrNoData].
func New(t *tree.Tree, a *tree.Analysis, opts Options) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		Source:    opts.Source,
		Generated: time.Now().UTC(),
		Archives:  opts.Archives,
		Broken:    opts.Broken,
		Packages:  opts.Packages,
		Leaves:    opts.Leaves,
		Deepest:   []Chain{},
		tree:      t,
		analysis:  a,
	}

	if t != nil {
		st := t.Stats()
		r.Nodes = st.Nodes
		r.TopLevel = st.TopLevel
		r.Missing = edges(t.Missing())
		r.Cycles = edges(t.Cycles())
	}

	if a == nil {
		r.NoData = true
		return r
	}
	r.MaxDepth = a.MaxDepth
	for _, d := range a.Deepest {
		r.Deepest = append(r.Deepest, Chain{ID: d.ID, Hierarchy: d.Chain})
	}
	return r
}

// DeepestIDs returns the identifiers at the maximum depth.
func (r *Report) DeepestIDs() []string {
	ids := make([]string, len(r.Deepest))
	for i, c := range r.Deepest {
		ids[i] = c.ID
	}
	return ids
}

func edges(refs []tree.Ref) []Edge {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Edge, len(refs))
	for i, ref := range refs {
		out[i] = Edge{From: ref.From.ID, FromDepth: ref.From.Depth, To: ref.ID}
	}
	return out
}
