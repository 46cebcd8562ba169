package layout

import "github.com/mindweave/mindweave/pkg/concept"

// adjacency is the index-based edge structure shared by ranking and
// ordering. Node order follows g.Nodes, which is what makes every stage
// deterministic for a fixed input.
type adjacency struct {
	index    map[string]int
	children [][]int
	parents  [][]int
}

func buildAdjacency(g concept.Graph) adjacency {
	adj := adjacency{
		index:    make(map[string]int, len(g.Nodes)),
		children: make([][]int, len(g.Nodes)),
		parents:  make([][]int, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		adj.index[n.ID] = i
	}
	for _, e := range g.Edges {
		s, okS := adj.index[e.Source]
		t, okT := adj.index[e.Target]
		if !okS || !okT {
			continue
		}
		adj.children[s] = append(adj.children[s], t)
		adj.parents[t] = append(adj.parents[t], s)
	}
	return adj
}

// assignRanks computes the rank (layer) of every node as its longest path
// from a root, using a topological traversal. Each node lands at one plus
// the maximum rank of its parents, so parents are always strictly above
// their children.
//
// Sanitized graphs are trees and cannot contain cycles through the root,
// but a detached ring of nodes would never reach zero in-degree; such
// nodes keep their default rank 0, which is a harmless degenerate layout
// rather than an error.
func assignRanks(adj adjacency) []int {
	n := len(adj.children)
	ranks := make([]int, n)
	inDegree := make([]int, n)
	queue := make([]int, 0, n)

	for i := 0; i < n; i++ {
		inDegree[i] = len(adj.parents[i])
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range adj.children[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}
