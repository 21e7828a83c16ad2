// Package checkpoint persists each pipeline stage's output as a JSON
// artifact so a later invocation can resume without repeating completed
// stages.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/homereels/agent-enrich/internal/model"
)

// ErrNotFound is returned by Load when the artifact has not been written yet.
var ErrNotFound = errors.New("checkpoint: artifact not found")

// CorruptError is returned by Load when the artifact exists but cannot be
// parsed. It is distinct from ErrNotFound so callers can tell "stage not yet
// run" apart from "stage output unreadable".
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("checkpoint: corrupt artifact %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Store reads and writes checkpoint artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Path returns the absolute location of the named artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the named artifact is present on disk.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Load reads the named artifact. Returns ErrNotFound if it was never saved
// and a *CorruptError if it exists but does not parse.
func (s *Store) Load(name string) ([]model.Office, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "checkpoint: read artifact")
	}

	var offices []model.Office
	if err := json.Unmarshal(data, &offices); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if offices == nil {
		offices = []model.Office{}
	}
	return offices, nil
}

// Save writes the artifact atomically: the payload goes to a temp file in the
// same directory and is renamed into place, so Load never observes a partial
// write.
func (s *Store) Save(name string, offices []model.Office) error {
	if offices == nil {
		offices = []model.Office{}
	}

	data, err := json.MarshalIndent(offices, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal artifact")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "checkpoint: create dir")
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: close temp file")
	}

	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: rename artifact")
	}
	return nil
}
