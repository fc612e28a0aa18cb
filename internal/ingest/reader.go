// Package ingest decodes raw CRM export files (CSV or TSV, UTF-8 or
// Latin-1) into an ordered tabular batch. It makes no attempt to interpret
// the data; that is the normalizer's job.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Batch is one parsed export: the header row and the data rows beneath it,
// column order preserved. Values are untyped text.
type Batch struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (b *Batch) Len() int { return len(b.Rows) }

// DetectDelimiter sniffs the field separator from the header line. Tab wins
// when present; otherwise whichever of semicolon and comma occurs more
// often, comma on a tie. Mirrors what the CRM actually emits: TSV pastes
// and comma or semicolon CSVs.
func DetectDelimiter(sample string) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	if strings.ContainsRune(sample, '\t') {
		return '\t'
	}
	if strings.Count(sample, ";") > strings.Count(sample, ",") {
		return ';'
	}
	return ','
}

// ReadBatch decodes and parses an export. Input that is not valid UTF-8 is
// re-decoded as Latin-1, matching the two encodings the CRM produces.
// Ragged rows are padded or truncated to the header width.
func ReadBatch(r io.Reader) (*Batch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, decErr := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if decErr != nil {
			return nil, fmt.Errorf("decode latin-1 export: %w", decErr)
		}
		raw = decoded
	}
	text := strings.TrimPrefix(string(raw), "\uFEFF")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = DetectDelimiter(text)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if len(records) == 0 {
		return &Batch{}, nil
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(columns))
		for i := range columns {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return &Batch{Columns: columns, Rows: rows}, nil
}

// ReadFile reads an export from disk.
func ReadFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}
	defer f.Close()
	return ReadBatch(f)
}
