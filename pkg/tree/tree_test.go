package tree

import (
	"errors"
	"slices"
	"testing"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

type recorder struct {
	dives   []string
	missing []string
	cycles  [][2]string
}

func (r *recorder) Dive(n *Node) { r.dives = append(r.dives, n.ID) }
func (r *recorder) Missing(from *Node, id string) {
	r.missing = append(r.missing, id)
}
func (r *recorder) Cycle(from *Node, id string) {
	r.cycles = append(r.cycles, [2]string{from.ID, id})
}

func buildAll(idx MapIndex) *Tree {
	return Build(idx, TopLevel(idx, sortedKeys(idx)), nil)
}

func sortedKeys(idx MapIndex) []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestBuild_LinearChain(t *testing.T) {
	idx := MapIndex{"X": {"Y"}, "Y": {"Z"}, "Z": {}}
	tr := Build(idx, []string{"X"}, nil)

	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}
	a, err := tr.Analyze()
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if a.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", a.MaxDepth)
	}
	if got := a.IDs(); !slices.Equal(got, []string{"Z"}) {
		t.Errorf("IDs() = %v, want [Z]", got)
	}
	if got := a.Deepest[0].Chain; !slices.Equal(got, []string{"Y", "X"}) {
		t.Errorf("Chain = %v, want [Y X]", got)
	}
	if got := a.Deepest[0].Node.Path(); !slices.Equal(got, []string{"X", "Y", "Z"}) {
		t.Errorf("Path() = %v, want [X Y Z]", got)
	}
}

func TestBuild_CyclicPair(t *testing.T) {
	idx := MapIndex{"A": {"B"}, "B": {"A"}}
	rec := &recorder{}
	tr := Build(idx, []string{"A"}, rec)

	a, err := tr.Analyze()
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if a.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", a.MaxDepth)
	}
	if got := a.IDs(); !slices.Equal(got, []string{"B"}) {
		t.Errorf("IDs() = %v, want [B]", got)
	}
	if len(rec.cycles) != 1 || rec.cycles[0] != [2]string{"B", "A"} {
		t.Errorf("cycles = %v, want [[B A]]", rec.cycles)
	}
	if n := len(tr.Cycles()); n != 1 {
		t.Errorf("Cycles() len = %d, want 1", n)
	}
	b := tr.Nodes()[1]
	if b.ID != "B" || b.ChildCount() != 0 {
		t.Errorf("B should be a leaf, got %s with %d children", b.ID, b.ChildCount())
	}
}

func TestBuild_SelfReference(t *testing.T) {
	idx := MapIndex{"A": {"A"}}
	tr := Build(idx, []string{"A"}, nil)

	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
	if tr.Stats().Cycles != 1 {
		t.Errorf("Stats().Cycles = %d, want 1", tr.Stats().Cycles)
	}
}

func TestBuild_MissingReference(t *testing.T) {
	idx := MapIndex{"P": {"Q"}, "Q": {"MISSING"}}
	rec := &recorder{}
	tr := Build(idx, []string{"P"}, rec)

	if !slices.Equal(rec.missing, []string{"MISSING"}) {
		t.Errorf("missing = %v, want [MISSING]", rec.missing)
	}
	if !slices.Equal(rec.dives, []string{"P", "Q"}) {
		t.Errorf("dives = %v, want [P Q]", rec.dives)
	}
	m := tr.Missing()
	if len(m) != 1 || m[0].From.ID != "Q" || m[0].From.Depth != 2 {
		t.Fatalf("Missing() = %v, want one edge from Q@2", m)
	}

	a, err := tr.Analyze()
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if a.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", a.MaxDepth)
	}
	if got := a.IDs(); !slices.Equal(got, []string{"Q"}) {
		t.Errorf("IDs() = %v, want [Q]", got)
	}
}

func TestBuild_SharedDependency(t *testing.T) {
	idx := MapIndex{"A": {"C"}, "B": {"C"}, "C": {}}
	tr := buildAll(idx)

	var cs []*Node
	for _, n := range tr.Nodes() {
		if n.ID == "C" {
			cs = append(cs, n)
		}
	}
	if len(cs) != 2 {
		t.Fatalf("found %d nodes for C, want 2", len(cs))
	}
	if cs[0] == cs[1] || cs[0].Parent.ID == cs[1].Parent.ID {
		t.Error("C should appear under two distinct parents")
	}

	a, err := tr.Analyze()
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if a.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", a.MaxDepth)
	}
	if got := a.IDs(); !slices.Equal(got, []string{"C"}) {
		t.Errorf("IDs() = %v, want [C]", got)
	}
	if got := a.Deepest[0].Chain; !slices.Equal(got, []string{"A"}) {
		t.Errorf("representative chain = %v, want first discovered [A]", got)
	}
}

func TestBuild_DiamondIsNotACycle(t *testing.T) {
	// A reaches D through both B and C; neither path repeats an identifier.
	idx := MapIndex{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": {"E"}, "E": {}}
	tr := Build(idx, []string{"A"}, nil)

	if tr.Stats().Cycles != 0 {
		t.Errorf("Cycles = %d, want 0", tr.Stats().Cycles)
	}
	a, _ := tr.Analyze()
	if a.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", a.MaxDepth)
	}
	if len(a.Deepest) != 1 || a.Deepest[0].ID != "E" {
		t.Errorf("Deepest = %v, want [E]", a.IDs())
	}
}

func TestBuild_EmptyIndex(t *testing.T) {
	tests := []struct {
		name string
		idx  MapIndex
	}{
		{"nil", nil},
		{"only leaves", MapIndex{"A": {}, "B": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := buildAll(tt.idx)
			if tr.Len() != 0 {
				t.Errorf("Len() = %d, want 0", tr.Len())
			}
			_, err := tr.Analyze()
			if !errors.Is(err, ErrNoData) {
				t.Errorf("Analyze() error = %v, want ErrNoData", err)
			}
			if !pkgerrors.Is(err, pkgerrors.ErrCodeNoData) {
				t.Errorf("Analyze() error code = %s, want NO_DATA", pkgerrors.GetCode(err))
			}
		})
	}
}

func TestBuild_DuplicateDependencies(t *testing.T) {
	idx := MapIndex{"A": {"B", "B"}, "B": {}}
	tr := Build(idx, []string{"A"}, nil)

	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (both occurrences registered)", tr.Len())
	}
	a := tr.Root.Children()[0]
	if a.ChildCount() != 1 {
		t.Errorf("A.ChildCount() = %d, want 1 (children set keyed by id and depth)", a.ChildCount())
	}
}

func TestBuild_Invariants(t *testing.T) {
	idx := MapIndex{
		"app":   {"web", "log"},
		"web":   {"http", "log"},
		"http":  {"net", "app"},
		"net":   {"log"},
		"log":   {"fmt"},
		"fmt":   {},
		"cli":   {"app", "ghost"},
		"loop1": {"loop2"},
		"loop2": {"loop3"},
		"loop3": {"loop1"},
	}
	tr := buildAll(idx)

	for _, n := range tr.Nodes() {
		if n.IsRoot() {
			t.Fatal("root registered")
		}
		if n.Depth != n.Parent.Depth+1 {
			t.Errorf("%s: depth %d, parent depth %d", n.ID, n.Depth, n.Parent.Depth)
		}
		seen := map[string]bool{}
		for p := n; !p.IsRoot(); p = p.Parent {
			if seen[p.ID] {
				t.Errorf("%v: identifier %s repeated on path", n.Path(), p.ID)
			}
			seen[p.ID] = true
		}
	}

	walked := 0
	tr.Walk(func(n *Node) bool {
		walked++
		return true
	})
	if walked != tr.Len() {
		t.Errorf("Walk visited %d nodes, registry has %d", walked, tr.Len())
	}
}

func TestBuild_Idempotent(t *testing.T) {
	idx := MapIndex{"A": {"B", "C"}, "B": {"C", "D"}, "C": {"D"}, "D": {"A"}}
	first, err := buildAll(idx).Analyze()
	if err != nil {
		t.Fatal(err)
	}
	second, err := buildAll(idx).Analyze()
	if err != nil {
		t.Fatal(err)
	}
	if first.MaxDepth != second.MaxDepth {
		t.Errorf("MaxDepth differs: %d vs %d", first.MaxDepth, second.MaxDepth)
	}
	if !slices.Equal(first.IDs(), second.IDs()) {
		t.Errorf("IDs differ: %v vs %v", first.IDs(), second.IDs())
	}
}

func TestTopLevel(t *testing.T) {
	idx := MapIndex{"a": {"b"}, "b": {}, "c": {"a"}}
	got := TopLevel(idx, []string{"a", "b", "c", "unknown"})
	if !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("TopLevel() = %v, want [a c]", got)
	}
}

func TestNode_Equal(t *testing.T) {
	root := newRoot()
	a := root.newChild("a")
	b := a.newChild("b")
	other := &Node{ID: "a", Depth: 1}

	if !a.Equal(other) {
		t.Error("nodes with same id and depth should be equal")
	}
	if a.Equal(b) {
		t.Error("nodes with different ids should not be equal")
	}
	if a.Equal(&Node{ID: "a", Depth: 2}) {
		t.Error("nodes with different depths should not be equal")
	}
	if a.Equal(nil) {
		t.Error("node should not equal nil")
	}
}

func TestNode_HasAncestor(t *testing.T) {
	root := newRoot()
	x := root.newChild("x")
	y := x.newChild("y")

	tests := []struct {
		id   string
		want bool
	}{
		{"y", true},
		{"x", true},
		{"z", false},
		{RootID, false},
	}
	for _, tt := range tests {
		if got := y.HasAncestor(tt.id); got != tt.want {
			t.Errorf("HasAncestor(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
