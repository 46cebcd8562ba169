// Package pipeline orchestrates the generate → sanitize → layout →
// theme stages that turn a topic prompt into a stored concept map.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/concept/layout"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/history"
	"github.com/mindweave/mindweave/pkg/llm"
	"github.com/mindweave/mindweave/pkg/observability"
	"github.com/mindweave/mindweave/pkg/theme"
)

// subMapPrefix namespaces sub-map node ids so they can never collide
// with ids in the parent graph.
const subMapPrefix = "sub-"

// Uploader queues records for background upload. A nil Uploader
// disables pushing (logged-out operation).
type Uploader interface {
	Enqueue(rec concept.MapRecord) bool
}

// Stats captures per-stage timing for one run.
type Stats struct {
	GenerateTime time.Duration
	NodeCount    int
	EdgeCount    int
	Dropped      int // raw edges discarded by sanitization
}

// Result is the outcome of a Generate run.
type Result struct {
	Record concept.MapRecord
	Stats  Stats
}

// Runner executes the pipeline stages against a model, the local
// history and an optional background uploader.
//
// The Runner is stateless between runs. Multiple goroutines can share
// one Runner.
type Runner struct {
	LLM     llm.Generator
	History *history.Store
	Pusher  Uploader
	Theme   theme.Mode
	Logger  *log.Logger
}

// NewRunner wires a runner. pusher may be nil. A nil logger falls back
// to the package default.
func NewRunner(gen llm.Generator, hist *history.Store, pusher Uploader, mode theme.Mode, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		LLM:     gen,
		History: hist,
		Pusher:  pusher,
		Theme:   mode,
		Logger:  logger,
	}
}

// Generate runs the full pipeline for prompt: model call, sanitization,
// compact layout, theme projection. The record is added to history and
// queued for upload before returning.
func (r *Runner) Generate(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "prompt is empty")
	}

	start := time.Now()
	observability.Map().OnGenerateStart(ctx, prompt)
	raw, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		observability.Map().OnGenerateComplete(ctx, prompt, 0, time.Since(start), err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	g := concept.Sanitize(raw, "")
	if g.IsEmpty() {
		err := errors.New(errors.ErrCodeInternal, "model returned no usable nodes")
		observability.Map().OnGenerateComplete(ctx, prompt, 0, time.Since(start), err)
		return nil, err
	}

	g = layout.Apply(g, layout.ModeCompact)
	g = theme.Project(g, theme.Get(r.Theme))

	rec := concept.NewMapRecord(prompt, g)
	r.History.Add(rec)

	result := &Result{
		Record: rec,
		Stats: Stats{
			GenerateTime: time.Since(start),
			NodeCount:    len(g.Nodes),
			EdgeCount:    len(g.Edges),
			Dropped:      len(raw.Edges) - len(g.Edges),
		},
	}
	observability.Map().OnGenerateComplete(ctx, prompt, result.Stats.NodeCount, result.Stats.GenerateTime, nil)
	r.Logger.Info("generated concept map",
		"prompt", prompt,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.GenerateTime)

	if r.Pusher != nil {
		r.Pusher.Enqueue(rec)
	}
	return result, nil
}

// Explore generates a sub-map drilling into one node of an existing
// map. The sub-map is stored on the record keyed by the node label.
func (r *Runner) Explore(ctx context.Context, recordID, nodeLabel string) (concept.Graph, error) {
	rec, ok := r.History.Get(recordID)
	if !ok {
		return concept.Graph{}, errors.New(errors.ErrCodeNotFound, "no map with id %s", recordID)
	}
	if cached, ok := rec.SubMaps[nodeLabel]; ok {
		return cached, nil
	}

	start := time.Now()
	observability.Map().OnExploreStart(ctx, rec.Prompt, nodeLabel)
	prompt := fmt.Sprintf("Break down %s in the context of %s", nodeLabel, rec.Prompt)
	raw, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		observability.Map().OnExploreComplete(ctx, rec.Prompt, nodeLabel, time.Since(start), err)
		return concept.Graph{}, fmt.Errorf("explore: %w", err)
	}

	g := concept.Sanitize(raw, subMapPrefix)
	if g.IsEmpty() {
		err := errors.New(errors.ErrCodeInternal, "model returned no usable nodes")
		observability.Map().OnExploreComplete(ctx, rec.Prompt, nodeLabel, time.Since(start), err)
		return concept.Graph{}, err
	}
	g = layout.Apply(g, layout.ModeCompact)
	g = theme.Project(g, theme.Get(r.Theme))

	r.History.Update(recordID, history.Patch{
		SubMaps: map[string]concept.Graph{nodeLabel: g},
	})
	observability.Map().OnExploreComplete(ctx, rec.Prompt, nodeLabel, time.Since(start), nil)
	r.Logger.Info("generated sub-map", "map", recordID, "node", nodeLabel, "nodes", len(g.Nodes))
	return g, nil
}

// Explain fetches a deep-dive for one node and stores it on the record
// keyed by the node label.
func (r *Runner) Explain(ctx context.Context, recordID, nodeLabel string) (string, error) {
	rec, ok := r.History.Get(recordID)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no map with id %s", recordID)
	}
	if cached, ok := rec.Explanations[nodeLabel]; ok {
		return cached, nil
	}

	start := time.Now()
	observability.Map().OnExplainStart(ctx, rec.Prompt, nodeLabel)
	text, err := r.LLM.Explain(ctx, rec.Prompt, nodeLabel)
	observability.Map().OnExplainComplete(ctx, rec.Prompt, nodeLabel, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}

	r.History.Update(recordID, history.Patch{
		Explanations: map[string]string{nodeLabel: text},
	})
	return text, nil
}
