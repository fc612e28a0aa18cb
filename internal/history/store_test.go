package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func entry(id string) Entry {
	return Entry{
		RunID:       id,
		Timestamp:   time.Date(2025, time.September, 26, 12, 0, 0, 0, time.UTC),
		Source:      "export.csv",
		Period:      "202592",
		RowsIn:      10,
		RowsCleaned: 8,
		Added:       5,
	}
}

func TestAppendAndLoad(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.Append(entry("run-1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(entry("run-2")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].RunID != "run-1" || got[1].RunID != "run-2" {
		t.Errorf("order = %q, %q; want oldest first", got[0].RunID, got[1].RunID)
	}
	if got[0].RowsCleaned != 8 || got[0].Source != "export.csv" {
		t.Errorf("entry fields lost: %+v", got[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("entries = %d, want 0", len(got))
	}
}

func TestAppendRecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Append(entry("run-1")); err != nil {
		t.Fatalf("Append over corrupt file: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].RunID != "run-1" {
		t.Errorf("entries = %+v", got)
	}
}
