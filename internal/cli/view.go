package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mindweave/mindweave/pkg/concept"
)

// renderTree draws a graph as an indented tree. Sanitized maps have at
// most one parent per node, so a simple walk covers every node; any
// node left unvisited (cycles from hand-edited data) is appended as an
// extra root.
func renderTree(g concept.Graph) string {
	children := make(map[string][]concept.Edge)
	hasParent := make(map[string]bool)
	for _, e := range g.Edges {
		children[e.Source] = append(children[e.Source], e)
		hasParent[e.Target] = true
	}
	byID := make(map[string]concept.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	var b strings.Builder
	visited := make(map[string]bool)

	var walk func(id string, prefix string, last bool, edgeLabel string)
	walk = func(id string, prefix string, last bool, edgeLabel string) {
		node, ok := byID[id]
		if !ok || visited[id] {
			return
		}
		visited[id] = true

		connector := ""
		childPrefix := prefix
		if prefix != "" || edgeLabel != "" {
			if last {
				connector = prefix + "└─ "
				childPrefix = prefix + "   "
			} else {
				connector = prefix + "├─ "
				childPrefix = prefix + "│  "
			}
		}

		line := connector
		if edgeLabel != "" {
			line += styleEdgeLabel.Render(edgeLabel) + " "
		}
		line += StyleValue.Render(node.Label)
		b.WriteString(line + "\n")

		edges := children[id]
		for i, e := range edges {
			walk(e.Target, childPrefix, i == len(edges)-1, e.Label)
		}
	}

	for _, n := range g.Nodes {
		if !hasParent[n.ID] {
			walk(n.ID, "", true, "")
		}
	}
	// Anything unreached keeps the output complete.
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			walk(n.ID, "", true, "")
		}
	}
	return b.String()
}

// printRecord shows one map: title, tree, and a stats line.
func printRecord(rec concept.MapRecord) {
	fmt.Println(StyleTitle.Render(rec.Prompt))
	printNewline()
	fmt.Print(renderTree(rec.Graph))
	printNewline()
	printStats(len(rec.Graph.Nodes), len(rec.Graph.Edges), len(rec.SubMaps))
	if len(rec.Explanations) > 0 {
		labels := make([]string, 0, len(rec.Explanations))
		for label := range rec.Explanations {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		printDetail("explained: %s", strings.Join(labels, ", "))
	}
}
