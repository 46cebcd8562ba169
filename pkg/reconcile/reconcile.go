// Package reconcile merges the local map history with the cloud store.
//
// The cloud copy is authoritative: after a successful sync the local
// history is replaced wholesale with the remote collection. Maps that
// exist only locally are pushed first so they survive the replacement.
// Records are matched by prompt; when several records share a prompt
// the first match wins.
package reconcile

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/cloud"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/history"
)

// User-facing sync messages. The wording is stable so scripts and tests
// can match on it.
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgConnectFailed  = "Failed to connect to the cloud."
	MsgSyncFailed     = "Failed to sync maps with the cloud."
)

// Status classifies the result of a sync pass.
type Status int

const (
	// StatusSynced means local history now mirrors the cloud store.
	StatusSynced Status = iota
	// StatusSessionExpired means the token was rejected. The caller
	// must clear the stored session. Local history is untouched.
	StatusSessionExpired
	// StatusFailed covers every other failure. Local history is
	// untouched.
	StatusFailed
)

// Outcome reports what a sync pass did.
type Outcome struct {
	Status  Status
	Pushed  int    // local-only maps uploaded before the merge
	Message string // user-facing text, empty on success
}

// Reconciler runs the sync algorithm against a cloud store and the
// local history.
type Reconciler struct {
	cloud   cloud.Store
	history *history.Store
	logger  *log.Logger
}

// New creates a Reconciler.
func New(store cloud.Store, hist *history.Store, logger *log.Logger) *Reconciler {
	return &Reconciler{cloud: store, history: hist, logger: logger}
}

// Sync fetches the remote collection, uploads local-only maps, then
// replaces local history with the merged remote state. On any failure
// the local history is left exactly as it was.
func (r *Reconciler) Sync(ctx context.Context) Outcome {
	remote, err := r.cloud.ListMaps(ctx)
	if err != nil {
		r.logger.Warn("cloud fetch failed", "error", err)
		return failure(err)
	}

	remotePrompts := make(map[string]struct{}, len(remote))
	for _, rec := range remote {
		remotePrompts[rec.Prompt] = struct{}{}
	}

	var pending []int
	local := r.history.Records()
	for i, rec := range local {
		if _, ok := remotePrompts[rec.Prompt]; !ok {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		r.history.Replace(remote)
		r.logger.Debug("history replaced with cloud copy", "maps", len(remote))
		return Outcome{Status: StatusSynced}
	}

	// Push newest first so a partial failure keeps the most recent work.
	for _, i := range pending {
		if err := r.cloud.InsertMap(ctx, local[i]); err != nil {
			r.logger.Warn("cloud push failed", "prompt", local[i].Prompt, "error", err)
			return failure(err)
		}
	}

	merged, err := r.cloud.ListMaps(ctx)
	if err != nil {
		r.logger.Warn("cloud refetch failed", "error", err)
		return failure(err)
	}
	r.history.Replace(merged)
	r.logger.Debug("history merged with cloud copy", "maps", len(merged), "pushed", len(pending))
	return Outcome{Status: StatusSynced, Pushed: len(pending)}
}

// failure maps an error onto the outcome the UI shows.
func failure(err error) Outcome {
	switch errors.GetCode(err) {
	case errors.ErrCodeSessionExpired:
		return Outcome{Status: StatusSessionExpired, Message: MsgSessionExpired}
	case errors.ErrCodeNetwork:
		var e *errors.Error
		if stderrors.As(err, &e) && e.Cause != nil {
			// A wrapped cause means the transport itself failed.
			return Outcome{Status: StatusFailed, Message: MsgConnectFailed}
		}
		return Outcome{Status: StatusFailed, Message: MsgSyncFailed}
	default:
		return Outcome{Status: StatusFailed, Message: MsgSyncFailed}
	}
}
