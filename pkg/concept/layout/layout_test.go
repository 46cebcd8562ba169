package layout

import (
	"reflect"
	"testing"

	"github.com/mindweave/mindweave/pkg/concept"
)

// tree builds the graph used by most layout tests:
//
//	root → a, b; a → c, d
func tree() concept.Graph {
	return concept.Graph{
		Nodes: []concept.Node{
			{ID: "root"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
		},
		Edges: []concept.Edge{
			{ID: "e1", Source: "root", Target: "a"},
			{ID: "e2", Source: "root", Target: "b"},
			{ID: "e3", Source: "a", Target: "c"},
			{ID: "e4", Source: "a", Target: "d"},
		},
	}
}

func TestApplyRanks(t *testing.T) {
	g := Apply(tree(), ModeCompact)

	wantY := map[string]float64{
		"root": topMargin,
		"a":    topMargin + NodeHeight + 200,
		"b":    topMargin + NodeHeight + 200,
		"c":    topMargin + 2*(NodeHeight+200),
		"d":    topMargin + 2*(NodeHeight+200),
	}
	for id, y := range wantY {
		if got := g.Node(id).Y; got != y {
			t.Errorf("node %s: y = %v, want %v", id, got, y)
		}
	}
}

func TestApplySpacingPresets(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		rankSep  float64
		nodeSep  float64
		straight bool
	}{
		{"Compact", ModeCompact, 200, 150, false},
		{"Spread", ModeSpread, 300, 200, true},
		{"UnknownFallsBackToCompact", Mode("bogus"), 200, 150, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Apply(tree(), tt.mode)

			a, b := g.Node("a"), g.Node("b")
			if gap := b.X - a.X - NodeWidth; gap != tt.nodeSep {
				t.Errorf("horizontal gap = %v, want %v", gap, tt.nodeSep)
			}
			if gap := a.Y - g.Node("root").Y - NodeHeight; gap != tt.rankSep {
				t.Errorf("vertical gap = %v, want %v", gap, tt.rankSep)
			}
			for _, e := range g.Edges {
				if e.Straight != tt.straight {
					t.Errorf("edge %s straight = %v, want %v", e.ID, e.Straight, tt.straight)
				}
			}
		})
	}
}

func TestApplyDeterministic(t *testing.T) {
	first := Apply(tree(), ModeCompact)
	second := Apply(tree(), ModeCompact)
	if !reflect.DeepEqual(first, second) {
		t.Error("same input produced different layouts")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	g := tree()
	Apply(g, ModeSpread)
	for _, n := range g.Nodes {
		if n.X != 0 || n.Y != 0 {
			t.Fatalf("input node %s moved to (%v,%v)", n.ID, n.X, n.Y)
		}
	}
	for _, e := range g.Edges {
		if e.Straight {
			t.Fatalf("input edge %s switched to straight", e.ID)
		}
	}
}

func TestApplyEmptyGraph(t *testing.T) {
	g := Apply(concept.Graph{}, ModeCompact)
	if !g.IsEmpty() {
		t.Error("empty input should stay empty")
	}
}

func TestApplyRowCentered(t *testing.T) {
	g := Apply(tree(), ModeCompact)
	// Single-node row sits centered on the origin.
	if root := g.Node("root"); root.X != -NodeWidth/2 {
		t.Errorf("root x = %v, want %v", root.X, -NodeWidth/2)
	}
}

func TestOrderingReducesCrossings(t *testing.T) {
	// Two parents whose children are listed in inverted order; the median
	// sweep must untangle them to zero crossings.
	g := concept.Graph{
		Nodes: []concept.Node{
			{ID: "p1"}, {ID: "p2"}, {ID: "c2"}, {ID: "c1"},
		},
		Edges: []concept.Edge{
			{ID: "e1", Source: "p1", Target: "c1"},
			{ID: "e2", Source: "p2", Target: "c2"},
		},
	}
	out := Apply(g, ModeCompact)
	c1, c2 := out.Node("c1"), out.Node("c2")
	p1, p2 := out.Node("p1"), out.Node("p2")
	if (p1.X < p2.X) != (c1.X < c2.X) {
		t.Errorf("children not aligned under parents: p1=%v p2=%v c1=%v c2=%v", p1.X, p2.X, c1.X, c2.X)
	}
}

func TestFormatToggleRoundTrip(t *testing.T) {
	g := Apply(tree(), ModeCompact)
	// Simulate a hand-adjusted node; recomputing compact would lose this.
	g.Nodes[2].X = 1234.5

	var f Format
	spread := f.Toggle(g)
	if !f.Pending() {
		t.Fatal("format should be pending after first toggle")
	}
	if reflect.DeepEqual(spread, g) {
		t.Fatal("spread layout should differ from compact")
	}
	for _, e := range spread.Edges {
		if !e.Straight {
			t.Error("spread edges should render straight")
		}
	}

	restored := f.Toggle(spread)
	if f.Pending() {
		t.Fatal("format should not be pending after undo")
	}
	if !reflect.DeepEqual(restored, g) {
		t.Error("undo did not restore the exact pre-format state")
	}
}

func TestFormatReset(t *testing.T) {
	var f Format
	f.Toggle(tree())
	f.Reset()
	if f.Pending() {
		t.Error("reset should clear the snapshot")
	}
}
