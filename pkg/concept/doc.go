// Package concept defines the core data model for LLM-generated concept
// maps: nodes, edges, graphs, and the MapRecord history entry, plus the
// sanitization boundary that turns untrusted generation output into a
// strictly tree-shaped graph.
//
// # Data Model
//
// A [Graph] is a node/edge pair representing one concept map or sub-map.
// The structural invariant maintained by [Sanitize] is:
//
//   - every node except the root has exactly one incoming edge
//   - no self-loops
//   - no edges referencing nodes outside the graph
//
// A [MapRecord] is one persisted generation result: the graph itself plus
// per-node explanations and nested sub-maps keyed by node label. Records
// are owned by the history store and mirrored to the cloud store keyed by
// their prompt text.
//
// # Sanitization
//
// Generation responses arrive as untrusted JSON. [RawGraph] accepts both
// string and numeric identifiers and arbitrary extra fields; [Sanitize] is
// the single point where that shape is constrained before it crosses into
// the layout, theme, or history layers.
package concept
