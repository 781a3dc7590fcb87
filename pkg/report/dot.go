package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treedepth/pkg/tree"
)

// DOTOptions configures [Report.DOT].
type DOTOptions struct {
	// Full draws every node of the unrolled tree instead of only the paths
	// leading to the deepest nodes. The output can be very large.
	Full bool
}

// DOT converts the report to Graphviz DOT. By default only the root-to-leaf
// paths of the deepest representatives are drawn, merged by identifier; with
// Full, each tree node is drawn separately.
func (r *Report) DOT(opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.Full && r.tree != nil {
		writeFullTree(&buf, r.tree, r.MaxDepth)
	} else {
		r.writeDeepestPaths(&buf)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (r *Report) writeDeepestPaths(buf *bytes.Buffer) {
	deepest := make(map[string]bool, len(r.Deepest))
	for _, c := range r.Deepest {
		deepest[c.ID] = true
	}

	declared := make(map[string]bool)
	linked := make(map[[2]string]bool)
	node := func(id string) {
		if declared[id] {
			return
		}
		declared[id] = true
		fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(id, deepest[id]), ", "))
	}

	var edges []string
	for _, c := range r.Deepest {
		path := append([]string{c.ID}, c.Hierarchy...)
		for i := len(path) - 1; i >= 0; i-- {
			node(path[i])
			if i == 0 {
				continue
			}
			e := [2]string{path[i], path[i-1]}
			if !linked[e] {
				linked[e] = true
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", e[0], e[1]))
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
}

func writeFullTree(buf *bytes.Buffer, t *tree.Tree, maxDepth int) {
	names := make(map[*tree.Node]string)
	var edges []string
	t.Walk(func(n *tree.Node) bool {
		name := fmt.Sprintf("n%d", len(names))
		names[n] = name
		attrs := nodeAttrs(n.ID, n.Depth == maxDepth)
		fmt.Fprintf(buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
		if parent, ok := names[n.Parent]; ok {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", parent, name))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
}

func nodeAttrs(label string, deepest bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if deepest {
		attrs = append(attrs, "fillcolor=\"#fde68a\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
