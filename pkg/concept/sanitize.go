package concept

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RawID is a node identifier as emitted by the generation collaborator.
// LLM output is inconsistent about types, so it unmarshals from either a
// JSON string or a JSON number. Numbers are rendered without a decimal
// point when integral, matching the string form the model uses elsewhere.
type RawID string

// UnmarshalJSON accepts "1", 1, and 1.0 interchangeably.
func (id *RawID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RawID(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number: %s", data)
	}
	if n == float64(int64(n)) {
		*id = RawID(strconv.FormatInt(int64(n), 10))
	} else {
		*id = RawID(strconv.FormatFloat(n, 'g', -1, 64))
	}
	return nil
}

// RawNode is an unvalidated node record from the generation response.
type RawNode struct {
	ID      RawID  `json:"id"`
	Label   string `json:"label"`
	Summary string `json:"summary"`
}

// RawEdge is an unvalidated edge record from the generation response.
// Edge IDs supplied by the model are ignored; sanitization regenerates
// them deterministically.
type RawEdge struct {
	Source RawID  `json:"source"`
	Target RawID  `json:"target"`
	Label  string `json:"label"`
}

// RawGraph is the untrusted payload shape returned by the generation
// collaborator.
type RawGraph struct {
	Nodes []RawNode `json:"nodes"`
	Edges []RawEdge `json:"edges"`
}

// Sanitize converts an untrusted raw graph into a validated, strictly
// tree-shaped Graph. It is a pure function: the input is never mutated
// and the same input always produces the same output.
//
// Node handling: identifiers are coerced to strings; nodes with an empty
// or duplicate ID are dropped (first occurrence wins).
//
// An edge is dropped when any of the following hold:
//   - source or target is empty
//   - source equals target (self-loop)
//   - either endpoint is not in the accepted node set
//   - the target already received an edge earlier in iteration order
//
// The last rule enforces the one-parent invariant: the first edge
// pointing at a target wins and later ones are silently discarded. This
// is a policy choice, not a repair: a dropped edge is never reassigned
// to another parent. Surviving edges get deterministic IDs derived from
// (source, target, ordinal), so output IDs are unique even when the model
// supplied colliding ones.
//
// When idPrefix is non-empty every node ID and edge endpoint is prefixed
// before validation runs. Sub-map exploration uses this to guarantee that
// nested graph IDs never collide with the parent graph's.
//
// Malformed input that yields zero valid nodes produces an empty Graph,
// never an error.
func Sanitize(raw RawGraph, idPrefix string) Graph {
	nodes := make([]Node, 0, len(raw.Nodes))
	accepted := make(map[string]bool, len(raw.Nodes))
	for _, rn := range raw.Nodes {
		id := idPrefix + string(rn.ID)
		if id == idPrefix || accepted[id] {
			continue
		}
		accepted[id] = true
		nodes = append(nodes, Node{ID: id, Label: rn.Label, Summary: rn.Summary})
	}
	if len(nodes) == 0 {
		return Graph{}
	}

	edges := make([]Edge, 0, len(raw.Edges))
	seenTargets := make(map[string]bool, len(raw.Edges))
	for _, re := range raw.Edges {
		src, dst := string(re.Source), string(re.Target)
		if src == "" || dst == "" {
			continue
		}
		src, dst = idPrefix+src, idPrefix+dst
		if src == dst || !accepted[src] || !accepted[dst] || seenTargets[dst] {
			continue
		}
		seenTargets[dst] = true
		edges = append(edges, Edge{
			ID:     fmt.Sprintf("e-%s-%s-%d", src, dst, len(edges)),
			Source: src,
			Target: dst,
			Label:  re.Label,
		})
	}

	return Graph{Nodes: nodes, Edges: edges}
}
