// Package ledger persists and reconciles the two-partition lead ledger.
// The backing store is an Excel workbook: one sheet per partition, header
// row first, rewritten wholesale on every run.
package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Partition is one named sheet: a header and its rows, order preserved.
type Partition struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Ledger is the full workbook, partitions in stored order.
type Ledger struct {
	Partitions []*Partition
}

// Partition returns the named partition, or nil.
func (l *Ledger) Partition(name string) *Partition {
	for _, p := range l.Partitions {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Ensure returns the named partition, creating an empty one with the given
// schema when missing. Existing partitions keep their stored columns.
func (l *Ledger) Ensure(name string, columns []string) *Partition {
	if p := l.Partition(name); p != nil {
		return p
	}
	p := &Partition{Name: name, Columns: append([]string{}, columns...)}
	l.Partitions = append(l.Partitions, p)
	return p
}

// Store reads and writes a ledger workbook at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the given workbook path.
func NewStore(path string) *Store { return &Store{path: path} }

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

// Load reads the whole workbook. A missing file yields an empty ledger,
// not an error; any other failure is fatal for the run.
func (s *Store) Load(ctx context.Context) (*Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return &Ledger{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", s.path, err)
	}
	defer f.Close()

	led := &Ledger{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read ledger sheet %q: %w", name, err)
		}
		p := &Partition{Name: name}
		if len(rows) > 0 {
			for _, c := range rows[0] {
				p.Columns = append(p.Columns, strings.TrimSpace(c))
			}
			for _, row := range rows[1:] {
				padded := make([]string, len(p.Columns))
				for i := range p.Columns {
					if i < len(row) {
						padded[i] = row[i]
					}
				}
				p.Rows = append(p.Rows, padded)
			}
		}
		led.Partitions = append(led.Partitions, p)
	}
	return led, nil
}

// Save rewrites the whole workbook atomically: every partition is written
// to a temporary file which then replaces the ledger in one rename. On
// error nothing is partially written.
func (s *Store) Save(ctx context.Context, led *Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(led.Partitions) == 0 {
		return fmt.Errorf("save ledger %s: no partitions", s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, p := range led.Partitions {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), p.Name); err != nil {
				return fmt.Errorf("name ledger sheet %q: %w", p.Name, err)
			}
		} else if _, err := f.NewSheet(p.Name); err != nil {
			return fmt.Errorf("create ledger sheet %q: %w", p.Name, err)
		}
		if err := writeSheet(f, p); err != nil {
			return err
		}
	}

	// excelize derives the format from the extension, so the temp name
	// must keep .xlsx.
	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("write ledger %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace ledger %s: %w", s.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, p *Partition) error {
	header := make([]interface{}, len(p.Columns))
	for i, c := range p.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(p.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", p.Name, err)
	}
	for r, row := range p.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("address row %d of %q: %w", r, p.Name, err)
		}
		if err := f.SetSheetRow(p.Name, axis, &cells); err != nil {
			return fmt.Errorf("write row %d of %q: %w", r, p.Name, err)
		}
	}
	return nil
}

// ReadBytes returns the raw workbook bytes, for snapshotting. Missing
// files return os.ErrNotExist.
func (s *Store) ReadBytes() ([]byte, error) {
	return os.ReadFile(s.path)
}
