// Package history owns the ordered collection of generated concept maps.
//
// The store is an explicit, injectable object: every collaborator that
// needs history receives a *Store, nothing reaches for ambient state.
// Records are kept most-recent-first. Persistence is wholesale: the
// backing persister loads the collection once at construction and
// rewrites it in full after every mutation, mirroring how the browser
// host kept the whole array under a single storage key.
//
// All mutations are serialized through one mutex so the store can be
// shared with the background cloud pusher.
package history

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mindweave/mindweave/pkg/concept"
)

// Persister loads and rewrites the whole record collection.
type Persister interface {
	Load() ([]concept.MapRecord, error)
	Save(records []concept.MapRecord) error
}

// Patch is a partial update to one record. Explanations and SubMaps are
// upserted key-by-key into the record's existing maps; keys already
// present in the record but absent from the patch are left alone.
type Patch struct {
	Explanations map[string]string
	SubMaps      map[string]concept.Graph
}

// Store is the ordered, persistent history collection.
type Store struct {
	mu      sync.Mutex
	records []concept.MapRecord
	persist Persister
	logger  *log.Logger
}

// NewStore loads existing history through p and returns the store.
// A load failure is treated as empty history: logged, never surfaced as
// a blocking error, so a corrupt state file can't take the app down.
func NewStore(p Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{persist: p, logger: logger}
	records, err := p.Load()
	if err != nil {
		logger.Error("failed to load local history, starting empty", "err", err)
		return s
	}
	s.records = records
	return s
}

// Add prepends a record and rewrites the collection.
func (s *Store) Add(rec concept.MapRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]concept.MapRecord{rec}, s.records...)
	s.save()
}

// Get returns a copy of the record with the given ID.
func (s *Store) Get(id string) (concept.MapRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return concept.MapRecord{}, false
}

// Update merges a patch into the record with the given ID. Returns false
// if no such record exists.
func (s *Store) Update(id string, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		rec := &s.records[i]
		if len(patch.Explanations) > 0 {
			if rec.Explanations == nil {
				rec.Explanations = map[string]string{}
			}
			for k, v := range patch.Explanations {
				rec.Explanations[k] = v
			}
		}
		if len(patch.SubMaps) > 0 {
			if rec.SubMaps == nil {
				rec.SubMaps = map[string]concept.Graph{}
			}
			for k, v := range patch.SubMaps {
				rec.SubMaps[k] = v
			}
		}
		s.save()
		return true
	}
	return false
}

// SetGraph replaces the stored graph for id, used when layout or theme
// changes repaint a map. Returns false if no such record exists.
func (s *Store) SetGraph(id string, g concept.Graph) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Graph = g.Clone()
			s.save()
			return true
		}
	}
	return false
}

// DeleteOne removes the record with the given ID. Returns false if the
// record was not present.
func (s *Store) DeleteOne(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.save()
			return true
		}
	}
	return false
}

// DeleteAll empties the collection.
func (s *Store) DeleteAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.save()
}

// Replace swaps the whole collection. Used by reconciliation when the
// remote store wins.
func (s *Store) Replace(records []concept.MapRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]concept.MapRecord(nil), records...)
	s.save()
}

// Records returns a copy of the collection, most recent first.
func (s *Store) Records() []concept.MapRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]concept.MapRecord(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// save rewrites the whole collection. Persistence failures are logged
// and swallowed: local state stays authoritative in memory and the next
// successful mutation rewrites everything anyway.
func (s *Store) save() {
	if err := s.persist.Save(s.records); err != nil {
		s.logger.Warn("failed to persist history", "err", err)
	}
}
