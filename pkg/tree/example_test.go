package tree_test

import (
	"fmt"

	"github.com/matzehuels/treedepth/pkg/tree"
)

func ExampleBuild() {
	// app → web → http → net, with a cycle back from http to app
	idx := tree.MapIndex{
		"app":  {"web"},
		"web":  {"http"},
		"http": {"net", "app"},
		"net":  {},
	}
	t := tree.Build(idx, []string{"app"}, nil)

	a, err := t.Analyze()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Deepest level:", a.MaxDepth)
	for _, d := range a.Deepest {
		fmt.Println("Deepest node:", d.ID)
		fmt.Println("Hierarchy:", d.Chain)
	}
	fmt.Println("Cycles:", t.Stats().Cycles)
	// Output:
	// Deepest level: 4
	// Deepest node: net
	// Hierarchy: [http web app]
	// Cycles: 1
}

func ExampleTree_Analyze_noData() {
	idx := tree.MapIndex{"leaf": {}}
	t := tree.Build(idx, tree.TopLevel(idx, []string{"leaf"}), nil)

	_, err := t.Analyze()
	fmt.Println(err)
	// Output:
	// NO_DATA: the tree has no nodes
}

func ExampleNode_HasAncestor() {
	idx := tree.MapIndex{"a": {"b"}, "b": {"c"}, "c": {}}
	t := tree.Build(idx, []string{"a"}, nil)

	c := t.Nodes()[2]
	fmt.Println(c.Path())
	fmt.Println(c.HasAncestor("a"), c.HasAncestor("z"))
	// Output:
	// [a b c]
	// true false
}
