package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hunit/internal/domain"
)

// FailureEntry is one line of the durable failure log.
type FailureEntry struct {
	Time     time.Time      `json:"time"`
	ID       domain.TestID  `json:"id"`
	Outcome  domain.Outcome `json:"outcome"`
	Detail   string         `json:"detail,omitempty"`
	Output   string         `json:"output,omitempty"`
	Resolved bool           `json:"resolved,omitempty"`
}

// FailureLog appends every failing result to a JSON-lines file that outlives
// the terminal session, for later review with the failures viewer.
type FailureLog struct {
	path string
}

// NewFailureLog returns a log backed by the file at path.
func NewFailureLog(path string) *FailureLog {
	return &FailureLog{path: path}
}

// Path returns the backing file location.
func (l *FailureLog) Path() string {
	return l.path
}

// Append writes one failing result to the log.
func (l *FailureLog) Append(res domain.Result) error {
	entry := FailureEntry{
		Time:    time.Now().UTC(),
		ID:      res.ID,
		Outcome: res.Outcome,
		Detail:  res.Detail,
		Output:  res.Output,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal failure entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create failure log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open failure log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append failure log: %w", err)
	}
	return nil
}

// Load reads every entry in the log, oldest first. A missing file is an
// empty log.
func (l *FailureLog) Load() ([]FailureEntry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open failure log: %w", err)
	}
	defer f.Close()

	var entries []FailureEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry FailureEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse failure log %s: %w", l.path, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failure log: %w", err)
	}
	return entries, nil
}

// Rewrite replaces the whole log, e.g. after toggling resolved marks in the
// viewer.
func (l *FailureLog) Rewrite(entries []FailureEntry) error {
	var buf []byte
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal failure entry: %w", err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create failure log dir: %w", err)
	}
	if err := os.WriteFile(l.path, buf, 0644); err != nil {
		return fmt.Errorf("rewrite failure log: %w", err)
	}
	return nil
}
