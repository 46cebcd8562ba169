// Package cloud implements the HTTP client for the per-user remote map
// store and its auth endpoints.
//
// The client speaks to the mindweave server (internal/server) but the
// wire shape mirrors the hosted original: a map row is an opaque
// server-assigned id, a title (the prompt, doubling as the
// reconciliation key), and a content blob holding the graph,
// explanations, and sub-maps.
//
// Authorization-class failures are mapped to
// errors.ErrCodeSessionExpired so callers can distinguish "credential
// invalid or expired" from transient network failure; see
// [MatchAuthError] for the recognized markers.
package cloud

import (
	"context"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/session"
)

// Store is the remote map store collaborator consumed by the
// reconciler. Implementations must return session-expired coded errors
// for authorization failures so the caller can trigger forced logout.
type Store interface {
	// ListMaps fetches the full remote collection, most recent first.
	ListMaps(ctx context.Context) ([]concept.MapRecord, error)
	// InsertMap pushes one record. The remote row gets a
	// server-assigned id; the record's local surrogate id is not sent.
	InsertMap(ctx context.Context, rec concept.MapRecord) error
	// DeleteMap removes the first remote row matching the prompt.
	DeleteMap(ctx context.Context, prompt string) error
	// DeleteAllMaps wipes the user's remote collection.
	DeleteAllMaps(ctx context.Context) error
}

// AuthResult is the outcome of a login or signup call. HasSession is
// false when signup succeeded but the account still needs email
// confirmation before a token is issued.
type AuthResult struct {
	User        session.User `json:"user"`
	AccessToken string       `json:"access_token"`
	HasSession  bool         `json:"has_session"`
}

// mapContent is the serialized blob stored per remote row.
type mapContent struct {
	Graph        concept.Graph            `json:"graph"`
	Explanations map[string]string        `json:"explanations"`
	SubMaps      map[string]concept.Graph `json:"subMaps"`
}

// mapRow is the wire form of one remote map record.
type mapRow struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   mapContent `json:"content"`
	CreatedAt string     `json:"created_at,omitempty"`
}

func (r mapRow) toRecord() concept.MapRecord {
	rec := concept.MapRecord{
		ID:           r.ID,
		Prompt:       r.Title,
		Graph:        r.Content.Graph,
		Explanations: r.Content.Explanations,
		SubMaps:      r.Content.SubMaps,
	}
	if rec.Explanations == nil {
		rec.Explanations = map[string]string{}
	}
	if rec.SubMaps == nil {
		rec.SubMaps = map[string]concept.Graph{}
	}
	return rec
}

func rowFromRecord(rec concept.MapRecord) mapRow {
	title := rec.Prompt
	if title == "" {
		title = "Untitled Map"
	}
	return mapRow{
		Title: title,
		Content: mapContent{
			Graph:        rec.Graph,
			Explanations: rec.Explanations,
			SubMaps:      rec.SubMaps,
		},
	}
}
