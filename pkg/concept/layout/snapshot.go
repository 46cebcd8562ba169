package layout

import "github.com/mindweave/mindweave/pkg/concept"

// Format tracks the reversible organize (spread re-layout) state for the
// currently displayed graph. It is a tagged two-state value: either no
// format is pending, or one is pending and the exact pre-format graph is
// held as a snapshot.
//
// Undo restores the snapshot rather than recomputing a compact layout:
// the algorithm is only deterministic for a fixed input, and the layout
// the user had before may have been hand-adjusted, so recomputation is
// not guaranteed to reproduce it.
//
// The struct serializes to JSON so CLI invocations can carry the pending
// state between runs.
type Format struct {
	Snapshot *concept.Graph `json:"snapshot,omitempty"`
}

// Pending reports whether a spread format is active.
func (f *Format) Pending() bool { return f.Snapshot != nil }

// Toggle flips the format state. With no format pending it snapshots g
// and returns the spread re-layout; with one pending it discards the
// spread state and returns the exact saved snapshot.
func (f *Format) Toggle(g concept.Graph) concept.Graph {
	if f.Snapshot != nil {
		restored := *f.Snapshot
		f.Snapshot = nil
		return restored
	}
	saved := g.Clone()
	f.Snapshot = &saved
	return Apply(g, ModeSpread)
}

// Reset drops any pending snapshot. Called when a new map is generated,
// loaded from history, or the displayed map is deleted.
func (f *Format) Reset() { f.Snapshot = nil }
