// Package history persists per-test outcomes across invocations.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hunit/internal/domain"
)

// SchemaVersion tags the on-disk layout. A file carrying a different version
// is treated as "no prior history" rather than risking a misread.
const SchemaVersion = 1

// keepRuns is how many RunRecords the store retains; diffing needs the
// immediately-preceding record alongside the new one.
const keepRuns = 2

type fileSchema struct {
	Version int                 `json:"version"`
	Runs    []*domain.RunRecord `json:"runs"`
}

// Store reads and writes RunRecords at an opaque caller-supplied path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the most recent RunRecord, or nil when there is none: missing
// file and schema-version mismatch both count as a first run. An unreadable
// or unparsable file is a configuration error.
func (s *Store) Load() (*domain.RunRecord, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// LoadLastTwo returns the two most recent RunRecords (current, previous).
// Either may be nil when fewer runs are stored.
func (s *Store) LoadLastTwo() (*domain.RunRecord, *domain.RunRecord, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, nil, err
	}
	var current, previous *domain.RunRecord
	if len(runs) > 0 {
		current = runs[0]
	}
	if len(runs) > 1 {
		previous = runs[1]
	}
	return current, previous, nil
}

func (s *Store) loadRuns() ([]*domain.RunRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read run history: %w", err)
	}
	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse run history %s: %w", s.path, err)
	}
	if file.Version != SchemaVersion {
		return nil, nil
	}
	return file.Runs, nil
}

// Save commits current as the newest RunRecord, retaining the previous one.
// The write is atomic: a killed process leaves either the old file or the new
// one, never a torn mix, so the next run's ordering and diffing stay sound.
func (s *Store) Save(current *domain.RunRecord) error {
	prior, err := s.loadRuns()
	if err != nil {
		// A corrupt prior file must not block committing the new run.
		prior = nil
	}
	runs := append([]*domain.RunRecord{current}, prior...)
	if len(runs) > keepRuns {
		runs = runs[:keepRuns]
	}
	data, err := json.MarshalIndent(fileSchema{Version: SchemaVersion, Runs: runs}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".run-history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write run history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close run history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit run history: %w", err)
	}
	return nil
}
