package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
)

// historyFile is the well-known file the whole collection lives in,
// relative to the base directory.
const historyFile = "history.json"

// FilePersister stores the record collection as a single JSON array.
type FilePersister struct {
	path string
}

// NewFilePersister creates a file persister rooted in baseDir.
// If baseDir is empty, defaults to ~/.config/mindweave/
func NewFilePersister(baseDir string) (*FilePersister, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "mindweave")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FilePersister{path: filepath.Join(baseDir, historyFile)}, nil
}

// Load reads the whole collection. A missing file is empty history;
// unparsable content is reported as local corruption for the caller to
// log and ignore.
func (p *FilePersister) Load() ([]concept.MapRecord, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	var records []concept.MapRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLocalCorrupt, err, "parse local history")
	}
	return records, nil
}

// Save rewrites the whole collection.
func (p *FilePersister) Save(records []concept.MapRecord) error {
	if records == nil {
		records = []concept.MapRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// Path returns the history file location.
func (p *FilePersister) Path() string { return p.path }

var _ Persister = (*FilePersister)(nil)
