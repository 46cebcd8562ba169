package reconcile

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/history"
)

// fakeCloud implements cloud.Store with per-call hooks and an in-memory
// collection.
type fakeCloud struct {
	mu      sync.Mutex
	maps    []concept.MapRecord
	listErr error
	pushErr error
	pushes  []string
}

func (f *fakeCloud) ListMaps(ctx context.Context) ([]concept.MapRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]concept.MapRecord, len(f.maps))
	copy(out, f.maps)
	return out, nil
}

func (f *fakeCloud) InsertMap(ctx context.Context, rec concept.MapRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, rec.Prompt)
	f.maps = append([]concept.MapRecord{rec}, f.maps...)
	return nil
}

func (f *fakeCloud) DeleteMap(ctx context.Context, prompt string) error { return nil }
func (f *fakeCloud) DeleteAllMaps(ctx context.Context) error            { return nil }

type memPersister struct{ records []concept.MapRecord }

func (m *memPersister) Load() ([]concept.MapRecord, error) { return m.records, nil }
func (m *memPersister) Save(records []concept.MapRecord) error {
	m.records = records
	return nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func record(id, prompt string) concept.MapRecord {
	return concept.MapRecord{ID: id, Prompt: prompt}
}

func newHistory(t *testing.T, records ...concept.MapRecord) *history.Store {
	t.Helper()
	return history.NewStore(&memPersister{records: records}, testLogger())
}

func prompts(records []concept.MapRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Prompt
	}
	return out
}

func TestSyncPushesLocalOnly(t *testing.T) {
	// Local has X (newer) and Y; cloud only has Y. X must be pushed
	// exactly once and local history must end as the full remote set.
	remote := &fakeCloud{maps: []concept.MapRecord{record("r1", "Y")}}
	hist := newHistory(t, record("l1", "X"), record("l2", "Y"))

	outcome := New(remote, hist, testLogger()).Sync(context.Background())
	if outcome.Status != StatusSynced {
		t.Fatalf("status = %v, message = %q", outcome.Status, outcome.Message)
	}
	if outcome.Pushed != 1 {
		t.Errorf("pushed = %d, want 1", outcome.Pushed)
	}
	if got := remote.pushes; len(got) != 1 || got[0] != "X" {
		t.Errorf("cloud pushes = %v, want [X]", got)
	}
	if got := prompts(hist.Records()); len(got) != 2 || got[0] != "X" || got[1] != "Y" {
		t.Errorf("local history = %v, want [X Y]", got)
	}
}

func TestSyncReplacesWhenNothingLocalOnly(t *testing.T) {
	remote := &fakeCloud{maps: []concept.MapRecord{record("r1", "Y"), record("r2", "Z")}}
	hist := newHistory(t, record("l1", "Y"))

	outcome := New(remote, hist, testLogger()).Sync(context.Background())
	if outcome.Status != StatusSynced || outcome.Pushed != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(remote.pushes) != 0 {
		t.Errorf("unexpected pushes %v", remote.pushes)
	}
	if got := prompts(hist.Records()); len(got) != 2 || got[0] != "Y" || got[1] != "Z" {
		t.Errorf("local history = %v, want [Y Z]", got)
	}
	// Replacement must carry remote identity, not keep the stale local row.
	rec, ok := hist.Get("r1")
	if !ok || rec.Prompt != "Y" {
		t.Errorf("remote record r1 missing after replace")
	}
}

func TestSyncSessionExpired(t *testing.T) {
	remote := &fakeCloud{listErr: errors.New(errors.ErrCodeSessionExpired, "JWT expired")}
	hist := newHistory(t, record("l1", "X"))

	outcome := New(remote, hist, testLogger()).Sync(context.Background())
	if outcome.Status != StatusSessionExpired {
		t.Fatalf("status = %v", outcome.Status)
	}
	if outcome.Message != MsgSessionExpired {
		t.Errorf("message = %q", outcome.Message)
	}
	if got := prompts(hist.Records()); len(got) != 1 || got[0] != "X" {
		t.Errorf("local history modified on auth failure: %v", got)
	}
}

func TestSyncNetworkFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "transport failure",
			err:     errors.Wrap(errors.ErrCodeNetwork, context.DeadlineExceeded, "connect to cloud store"),
			wantMsg: MsgConnectFailed,
		},
		{
			name:    "server error",
			err:     errors.New(errors.ErrCodeNetwork, "database unavailable"),
			wantMsg: MsgSyncFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeCloud{listErr: tt.err}
			hist := newHistory(t, record("l1", "X"))

			outcome := New(remote, hist, testLogger()).Sync(context.Background())
			if outcome.Status != StatusFailed {
				t.Fatalf("status = %v", outcome.Status)
			}
			if outcome.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", outcome.Message, tt.wantMsg)
			}
			if hist.Len() != 1 {
				t.Errorf("local history modified on network failure")
			}
		})
	}
}

func TestSyncPushFailureLeavesLocalIntact(t *testing.T) {
	remote := &fakeCloud{
		maps:    []concept.MapRecord{record("r1", "Y")},
		pushErr: errors.New(errors.ErrCodeNetwork, "insert failed"),
	}
	hist := newHistory(t, record("l1", "X"), record("l2", "Y"))

	outcome := New(remote, hist, testLogger()).Sync(context.Background())
	if outcome.Status != StatusFailed {
		t.Fatalf("status = %v", outcome.Status)
	}
	if got := prompts(hist.Records()); len(got) != 2 || got[0] != "X" {
		t.Errorf("local history = %v, want untouched [X Y]", got)
	}
}

func TestPusherUploads(t *testing.T) {
	remote := &fakeCloud{}
	p := NewPusher(remote, testLogger(), nil)

	if !p.Enqueue(record("1", "A")) || !p.Enqueue(record("2", "B")) {
		t.Fatal("Enqueue rejected with empty queue")
	}
	p.Close()

	if len(remote.pushes) != 2 {
		t.Fatalf("pushes = %v, want 2 uploads", remote.pushes)
	}
}

func TestPusherSessionExpiredFiresOnce(t *testing.T) {
	remote := &fakeCloud{pushErr: errors.New(errors.ErrCodeSessionExpired, "JWT expired")}
	fired := 0
	p := NewPusher(remote, testLogger(), func() { fired++ })

	p.Enqueue(record("1", "A"))
	p.Enqueue(record("2", "B"))
	p.Close()

	if fired != 1 {
		t.Fatalf("session-expired callback fired %d times, want 1", fired)
	}
}
