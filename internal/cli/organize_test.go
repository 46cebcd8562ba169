package cli

import (
	"io"
	"testing"

	"github.com/mindweave/mindweave/pkg/concept"
)

func seedTwoMaps(t *testing.T, c *CLI) {
	t.Helper()
	hist, err := c.openHistory()
	if err != nil {
		t.Fatalf("openHistory: %v", err)
	}
	hist.Add(concept.MapRecord{
		ID:     "a",
		Prompt: "ocean currents",
		Graph: concept.Graph{
			Nodes: []concept.Node{{ID: "a1", Label: "Gulf Stream", X: 11, Y: 22}},
		},
		Explanations: map[string]string{},
		SubMaps:      map[string]concept.Graph{},
	})
	hist.Add(concept.MapRecord{
		ID:     "b",
		Prompt: "plate tectonics",
		Graph: concept.Graph{
			Nodes: []concept.Node{{ID: "b1", Label: "Subduction", X: 33, Y: 44}},
		},
		Explanations: map[string]string{},
		SubMaps:      map[string]concept.Graph{},
	})
}

func runOrganize(t *testing.T, c *CLI, mapID string) {
	t.Helper()
	cmd := c.organizeCommand()
	if mapID != "" {
		if err := cmd.Flags().Set("map", mapID); err != nil {
			t.Fatalf("set flag: %v", err)
		}
	}
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("organize: %v", err)
	}
}

// Organizing one map while another map's spread snapshot is pending
// must not write the pending snapshot into the second map's record.
func TestOrganizeSnapshotStaysWithItsMap(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	c := New(io.Discard, LogInfo)
	seedTwoMaps(t, c)
	if err := setCurrentMap("a"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}

	// Spread the current map, leaving its snapshot pending.
	runOrganize(t, c, "")
	st := loadState()
	if !st.Format.Pending() || st.FormatID != "a" {
		t.Fatalf("snapshot should be pending for a, got pending=%v id=%q", st.Format.Pending(), st.FormatID)
	}

	// Organizing the other map starts a fresh toggle on its own graph.
	runOrganize(t, c, "b")

	hist, err := c.openHistory()
	if err != nil {
		t.Fatalf("openHistory: %v", err)
	}
	recB, ok := hist.Get("b")
	if !ok {
		t.Fatal("map b missing")
	}
	if recB.Graph.Node("b1") == nil {
		t.Error("map b lost its own nodes")
	}
	if recB.Graph.Node("a1") != nil {
		t.Error("map a's snapshot leaked into map b")
	}

	st = loadState()
	if st.FormatID != "b" {
		t.Errorf("pending snapshot should now belong to b, got %q", st.FormatID)
	}

	// Toggling b again restores b's exact pre-spread coordinates.
	runOrganize(t, c, "b")
	recB, _ = hist.Get("b")
	node := recB.Graph.Node("b1")
	if node == nil || node.X != 33 || node.Y != 44 {
		t.Errorf("restore should bring back b's original layout, got %+v", node)
	}
	if st := loadState(); st.Format.Pending() || st.FormatID != "" {
		t.Errorf("no snapshot should remain, got pending=%v id=%q", st.Format.Pending(), st.FormatID)
	}
}

func TestClearCurrentIfDropsForeignSnapshot(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	c := New(io.Discard, LogInfo)
	seedTwoMaps(t, c)
	if err := setCurrentMap("a"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}

	// Pending snapshot for b while a stays current.
	runOrganize(t, c, "b")

	// Deleting b clears its snapshot but leaves the current map alone.
	if err := clearCurrentIf("b"); err != nil {
		t.Fatalf("clearCurrentIf: %v", err)
	}
	st := loadState()
	if st.Format.Pending() || st.FormatID != "" {
		t.Error("deleted map's snapshot should be dropped")
	}
	if st.CurrentID != "a" {
		t.Errorf("current map should survive, got %q", st.CurrentID)
	}
}
