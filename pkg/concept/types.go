package concept

import (
	"strconv"
	"time"
)

// NodeStyle holds the visual attributes of a node that theme projection
// rewrites. Layout and topology fields never live here.
type NodeStyle struct {
	Background string `json:"background" bson:"background"`
	Color      string `json:"color" bson:"color"`
	Border     string `json:"border" bson:"border"`
}

// EdgeStyle holds the visual attributes of an edge and its label.
type EdgeStyle struct {
	Stroke  string `json:"stroke" bson:"stroke"`
	Label   string `json:"label" bson:"label"`
	LabelBg string `json:"label_bg" bson:"label_bg"`
}

// Node is a single concept in a map. ID is unique within its graph and
// stable for the graph's lifetime. X/Y are logical layout coordinates
// (top-left corner of the node's fixed render footprint).
type Node struct {
	ID      string    `json:"id" bson:"id"`
	Label   string    `json:"label" bson:"label"`
	Summary string    `json:"summary,omitempty" bson:"summary,omitempty"`
	X       float64   `json:"x" bson:"x"`
	Y       float64   `json:"y" bson:"y"`
	Style   NodeStyle `json:"style" bson:"style"`
}

// Edge is a directed relationship between two nodes of the same graph.
// Straight selects straight-line rendering, used only by the spread layout.
type Edge struct {
	ID       string    `json:"id" bson:"id"`
	Source   string    `json:"source" bson:"source"`
	Target   string    `json:"target" bson:"target"`
	Label    string    `json:"label,omitempty" bson:"label,omitempty"`
	Straight bool      `json:"straight,omitempty" bson:"straight,omitempty"`
	Style    EdgeStyle `json:"style" bson:"style"`
}

// Graph is the canonical node/edge pair for one concept map or sub-map.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// IsEmpty reports whether the graph has no nodes. Callers treat an empty
// graph as "no content to display" rather than an error.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Clone returns a deep copy of the graph. Used to snapshot layout state
// before a reversible transform.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// Node returns the node with the given ID, or nil if absent.
func (g Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeByLabel returns the first node with the given label, or nil.
// Explanations and sub-maps are keyed by label, not ID.
func (g Graph) NodeByLabel(label string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Label == label {
			return &g.Nodes[i]
		}
	}
	return nil
}

// MapRecord is one history entry: a generated concept map plus the
// explanations and sub-maps accumulated while exploring it. Explanations
// and SubMaps are keyed by node label and upserted key-by-key, never
// replaced wholesale.
type MapRecord struct {
	ID           string            `json:"id" bson:"id"`
	Prompt       string            `json:"prompt" bson:"prompt"`
	Graph        Graph             `json:"graph" bson:"graph"`
	Explanations map[string]string `json:"explanations" bson:"explanations"`
	SubMaps      map[string]Graph  `json:"subMaps" bson:"submaps"`
}

// NewMapRecord creates a record with a time-derived surrogate ID.
// The ID is replaced by a server-assigned one after the record is pushed
// to the cloud and re-fetched during reconciliation.
func NewMapRecord(prompt string, g Graph) MapRecord {
	return MapRecord{
		ID:           strconv.FormatInt(time.Now().UnixMilli(), 10),
		Prompt:       prompt,
		Graph:        g,
		Explanations: map[string]string{},
		SubMaps:      map[string]Graph{},
	}
}
