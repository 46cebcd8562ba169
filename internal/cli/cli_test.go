package cli

import (
	"context"
	"io"
	"testing"

	"github.com/mindweave/mindweave/pkg/cloud"
	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/reconcile"
	"github.com/mindweave/mindweave/pkg/session"
)

// rejectingCloud fails every call the way the server rejects a stale
// token.
type rejectingCloud struct{}

func (rejectingCloud) ListMaps(context.Context) ([]concept.MapRecord, error) {
	return nil, errors.New(errors.ErrCodeSessionExpired, "JWT expired")
}

func (rejectingCloud) InsertMap(context.Context, concept.MapRecord) error {
	return errors.New(errors.ErrCodeSessionExpired, "JWT expired")
}

func (rejectingCloud) DeleteMap(context.Context, string) error {
	return errors.New(errors.ErrCodeSessionExpired, "JWT expired")
}

func (rejectingCloud) DeleteAllMaps(context.Context) error {
	return errors.New(errors.ErrCodeSessionExpired, "JWT expired")
}

var _ cloud.Store = rejectingCloud{}

func storeStaleSession(t *testing.T) *session.FileStore {
	t.Helper()
	store, err := openSessions()
	if err != nil {
		t.Fatalf("openSessions: %v", err)
	}
	if err := store.Set(session.New("stale-token", session.User{ID: "u1", Email: "u@example.com"})); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return store
}

func TestExpireSessionDeletesStoredLogin(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	store := storeStaleSession(t)

	c := New(io.Discard, LogInfo)
	c.expireSession()

	sess, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Error("stored session should be gone after expiry")
	}
}

// A rejected background push must force a logout, not just print a
// warning, so the next command starts logged out instead of re-failing
// with the same stale token.
func TestBackgroundPushExpiryForcesLogout(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	store := storeStaleSession(t)

	c := New(io.Discard, LogInfo)
	p := reconcile.NewPusher(rejectingCloud{}, c.Logger, c.expireSession)
	p.Enqueue(concept.NewMapRecord("distributed consensus", concept.Graph{
		Nodes: []concept.Node{{ID: "1", Label: "Raft"}},
	}))
	p.Close()

	sess, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Error("stored session should be gone after a rejected push")
	}
}
