package cli

import (
	"testing"

	"github.com/mindweave/mindweave/pkg/concept"
)

func TestStateRoundTrip(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())

	// Fresh state when nothing was saved.
	st := loadState()
	if st.CurrentID != "" || st.Format.Pending() {
		t.Fatalf("fresh state should be zero, got %+v", st)
	}

	if err := setCurrentMap("1700000000000"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}
	st = loadState()
	if st.CurrentID != "1700000000000" {
		t.Errorf("CurrentID = %q, want 1700000000000", st.CurrentID)
	}

	// A pending layout snapshot survives the round trip.
	g := concept.Graph{Nodes: []concept.Node{{ID: "a", Label: "A"}}}
	st.Format.Toggle(g)
	if err := saveState(st); err != nil {
		t.Fatalf("saveState: %v", err)
	}
	st = loadState()
	if !st.Format.Pending() {
		t.Error("pending snapshot lost across save/load")
	}

	// Switching maps drops the snapshot.
	if err := setCurrentMap("1700000000001"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}
	st = loadState()
	if st.Format.Pending() {
		t.Error("snapshot should be dropped when the current map changes")
	}
}

func TestClearCurrentIf(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())

	if err := setCurrentMap("abc"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}

	// Deleting a different map leaves the state alone.
	if err := clearCurrentIf("other"); err != nil {
		t.Fatalf("clearCurrentIf: %v", err)
	}
	if st := loadState(); st.CurrentID != "abc" {
		t.Errorf("CurrentID = %q, want abc", st.CurrentID)
	}

	if err := clearCurrentIf("abc"); err != nil {
		t.Fatalf("clearCurrentIf: %v", err)
	}
	if st := loadState(); st.CurrentID != "" {
		t.Errorf("CurrentID = %q, want empty", st.CurrentID)
	}
}

func TestCurrentMapID(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())

	if _, ok := currentMapID(""); ok {
		t.Error("no state and no flag should resolve to nothing")
	}
	if id, ok := currentMapID("flag-id"); !ok || id != "flag-id" {
		t.Errorf("flag should win, got %q ok=%v", id, ok)
	}

	if err := setCurrentMap("saved-id"); err != nil {
		t.Fatalf("setCurrentMap: %v", err)
	}
	if id, ok := currentMapID(""); !ok || id != "saved-id" {
		t.Errorf("saved id should resolve, got %q ok=%v", id, ok)
	}
	if id, _ := currentMapID("flag-id"); id != "flag-id" {
		t.Errorf("flag should override saved id, got %q", id)
	}
}
