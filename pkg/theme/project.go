package theme

import "github.com/mindweave/mindweave/pkg/concept"

// Project returns a copy of g painted with the given palette. It is
// idempotent, Project(Project(g, p), p) == Project(g, p), and changes
// nothing besides style attributes. Invoked on graph creation, on every
// theme toggle, and whenever a stored graph is loaded.
func Project(g concept.Graph, p Palette) concept.Graph {
	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Style = concept.NodeStyle{
			Background: p.Bg,
			Color:      p.Color,
			Border:     p.Border,
		}
	}
	for i := range out.Edges {
		out.Edges[i].Style = concept.EdgeStyle{
			Stroke:  p.Edge,
			Label:   p.EdgeLabel,
			LabelBg: p.Bg,
		}
	}
	return out
}

// ProjectRecord paints a record's main graph and every cached sub-map.
func ProjectRecord(rec concept.MapRecord, p Palette) concept.MapRecord {
	rec.Graph = Project(rec.Graph, p)
	if len(rec.SubMaps) > 0 {
		painted := make(map[string]concept.Graph, len(rec.SubMaps))
		for label, sub := range rec.SubMaps {
			painted[label] = Project(sub, p)
		}
		rec.SubMaps = painted
	}
	return rec
}
