package layout

import (
	"slices"
	"sort"
)

// maxSweeps bounds the median-ordering refinement. Concept maps top out
// around 25 nodes, so a handful of down/up passes converges.
const maxSweeps = 4

// orderRanks produces, for each rank, the left-to-right node order that
// the coordinate stage will use. It starts from the input node order and
// runs alternating downward/upward median sweeps, keeping the ordering
// with the fewest total crossings seen so far.
func orderRanks(adj adjacency, ranks []int) [][]int {
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	orders := make([][]int, maxRank+1)
	for i, r := range ranks {
		orders[r] = append(orders[r], i)
	}

	best := cloneOrders(orders)
	bestCrossings := totalCrossings(adj, best)

	for sweep := 0; sweep < maxSweeps && bestCrossings > 0; sweep++ {
		if sweep%2 == 0 {
			for r := 1; r <= maxRank; r++ {
				medianSort(orders[r], orders[r-1], adj.parents)
			}
		} else {
			for r := maxRank - 1; r >= 0; r-- {
				medianSort(orders[r], orders[r+1], adj.children)
			}
		}
		if c := totalCrossings(adj, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

// medianSort reorders row in place by the median position of each node's
// neighbors in the adjacent (already ordered) row. Nodes without
// neighbors keep their relative position via the stable sort, and ties
// break on the previous in-row position, so the result is deterministic.
func medianSort(row, adjacent []int, neighbors [][]int) {
	pos := make(map[int]int, len(adjacent))
	for p, idx := range adjacent {
		pos[idx] = p
	}
	prev := make(map[int]int, len(row))
	for p, idx := range row {
		prev[idx] = p
	}

	median := func(idx int) int {
		ps := make([]int, 0, len(neighbors[idx]))
		for _, nb := range neighbors[idx] {
			if p, ok := pos[nb]; ok {
				ps = append(ps, p)
			}
		}
		if len(ps) == 0 {
			return prev[idx]
		}
		slices.Sort(ps)
		return ps[len(ps)/2]
	}

	sort.SliceStable(row, func(a, b int) bool {
		ma, mb := median(row[a]), median(row[b])
		if ma != mb {
			return ma < mb
		}
		return prev[row[a]] < prev[row[b]]
	})
}

func cloneOrders(orders [][]int) [][]int {
	out := make([][]int, len(orders))
	for i, row := range orders {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// totalCrossings sums edge crossings between each pair of adjacent ranks.
func totalCrossings(adj adjacency, orders [][]int) int {
	total := 0
	for r := 0; r+1 < len(orders); r++ {
		total += layerCrossings(adj, orders[r], orders[r+1])
	}
	return total
}

// layerCrossings counts crossings between two adjacent ranks with a
// Fenwick tree. Two edges (u1,v1) and (u2,v2) cross iff pos(u1) < pos(u2)
// and pos(v1) > pos(v2), so the count equals the number of inversions in
// the target positions when edges are walked in source order.
func layerCrossings(adj adjacency, upper, lower []int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := make(map[int]int, len(lower))
	for p, idx := range lower {
		lowerPos[idx] = p
	}

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for p, idx := range upper {
		for _, child := range adj.children[idx] {
			if cp, ok := lowerPos[child]; ok {
				edges = append(edges, edge{p, cp})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual
		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
