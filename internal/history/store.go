// Package history records an audit trail of reconciliation runs. The
// primary store is an append-only JSON file; a Postgres sink can mirror
// entries when a database is configured.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ignite/lead-ledger/internal/pkg/logger"
)

const fileName = "reconciliation_history.json"

// Entry is one run's summary.
type Entry struct {
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	Period        string    `json:"period"`
	RowsIn        int       `json:"rows_in"`
	RowsCleaned   int       `json:"rows_cleaned"`
	RowsDropped   int       `json:"rows_dropped"`
	Added         int       `json:"added"`
	Relocated     int       `json:"relocated"`
	WindowHours   int       `json:"window_hours,omitempty"`
	WindowDays    int       `json:"window_days,omitempty"`
	SinceMidnight bool      `json:"since_midnight,omitempty"`
}

// FileStore keeps run history in a JSON array on disk.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

func (s *FileStore) path() string { return filepath.Join(s.dir, fileName) }

// Append adds an entry to the history file, creating it when missing. A
// corrupt history file is replaced rather than blocking the run.
func (s *FileStore) Append(e Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	entries, err := s.Load()
	if err != nil {
		logger.Warn("history file unreadable, starting fresh", "error", err.Error())
		entries = nil
	}
	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Load returns all recorded entries, oldest first. A missing file is an
// empty history.
func (s *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}
