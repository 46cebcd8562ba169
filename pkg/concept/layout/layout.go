package layout

import "github.com/mindweave/mindweave/pkg/concept"

// Mode selects a spacing preset.
type Mode string

const (
	// ModeCompact is the default layout applied to every new generation.
	ModeCompact Mode = "compact"
	// ModeSpread is the wider layout used by the explicit organize
	// action. It also switches edges to straight-line rendering.
	ModeSpread Mode = "spread"
)

// Fixed render footprint applied to every node regardless of label
// length. Known simplification: long labels overflow rather than grow
// the box.
const (
	NodeWidth  = 240.0
	NodeHeight = 120.0
)

// topMargin offsets the first rank from the canvas origin.
const topMargin = 150.0

type preset struct {
	rankSep  float64 // vertical gap between ranks
	nodeSep  float64 // horizontal gap between nodes in a rank
	straight bool
}

var presets = map[Mode]preset{
	ModeCompact: {rankSep: 200, nodeSep: 150},
	ModeSpread:  {rankSep: 300, nodeSep: 200, straight: true},
}

// Apply returns a copy of g with every node positioned by the rank-based
// algorithm and edge rendering set per the mode. Unknown modes fall back
// to compact. The input graph is not modified.
//
// Apply is deterministic for a fixed input, but note that re-running it
// is not an undo: the pre-layout positions may have been hand-adjusted,
// so reversing a spread re-layout goes through [Format]'s snapshot
// instead.
func Apply(g concept.Graph, mode Mode) concept.Graph {
	p, ok := presets[mode]
	if !ok {
		p = presets[ModeCompact]
	}

	out := g.Clone()
	if len(out.Nodes) > 0 {
		adj := buildAdjacency(out)
		ranks := assignRanks(adj)
		orders := orderRanks(adj, ranks)

		for r, row := range orders {
			rowWidth := float64(len(row))*NodeWidth + float64(len(row)-1)*p.nodeSep
			x := -rowWidth / 2
			y := topMargin + float64(r)*(NodeHeight+p.rankSep)
			for _, idx := range row {
				out.Nodes[idx].X = x
				out.Nodes[idx].Y = y
				x += NodeWidth + p.nodeSep
			}
		}
	}

	for i := range out.Edges {
		out.Edges[i].Straight = p.straight
	}
	return out
}
