package ingest

import (
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3", ','},
		{"semicolon", "a;b;c\n1;2;3", ';'},
		{"tab wins over comma", "a\tb,c\n", '\t'},
		{"comma on tie", "a\n", ','},
		{"only first line counts", "a,b\nx;y;z;w\n", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter(tt.sample); got != tt.want {
				t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.sample, got, tt.want)
			}
		})
	}
}

func TestReadBatch(t *testing.T) {
	in := "Name, Email ,Paid Date\nAna,ana@example.com,26/09/2025 13:35\nLuis,luis@example.com,27/09/2025 09:00\n"
	b, err := ReadBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	wantCols := []string{"Name", "Email", "Paid Date"}
	if len(b.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", b.Columns, wantCols)
	}
	for i, c := range wantCols {
		if b.Columns[i] != c {
			t.Errorf("column %d = %q, want %q (headers must be trimmed)", i, b.Columns[i], c)
		}
	}
	if b.Len() != 2 {
		t.Fatalf("rows = %d, want 2", b.Len())
	}
	if b.Rows[0][1] != "ana@example.com" {
		t.Errorf("row 0 email = %q", b.Rows[0][1])
	}
}

func TestReadBatchSemicolon(t *testing.T) {
	in := "Nombre;Correo\nAna;ana@example.com\n"
	b, err := ReadBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(b.Columns) != 2 || b.Columns[1] != "Correo" {
		t.Fatalf("columns = %v", b.Columns)
	}
}

func TestReadBatchRaggedRows(t *testing.T) {
	in := "A,B,C\n1,2\n1,2,3,4\n"
	b, err := ReadBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if len(b.Rows[0]) != 3 || b.Rows[0][2] != "" {
		t.Errorf("short row not padded: %v", b.Rows[0])
	}
	if len(b.Rows[1]) != 3 {
		t.Errorf("long row not truncated: %v", b.Rows[1])
	}
}

func TestReadBatchLatin1(t *testing.T) {
	// "Teléfono" with a Latin-1 é (0xE9), invalid as UTF-8.
	in := []byte("Nombre,Tel\xe9fono\nAna,555\n")
	b, err := ReadBatch(strings.NewReader(string(in)))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if b.Columns[1] != "Teléfono" {
		t.Errorf("column = %q, want %q", b.Columns[1], "Teléfono")
	}
}

func TestReadBatchBOM(t *testing.T) {
	in := "\uFEFFName,Email\nAna,a@b.c\n"
	b, err := ReadBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if b.Columns[0] != "Name" {
		t.Errorf("column = %q, want %q (BOM must be stripped)", b.Columns[0], "Name")
	}
}

func TestReadBatchEmpty(t *testing.T) {
	b, err := ReadBatch(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}
	if b.Len() != 0 || len(b.Columns) != 0 {
		t.Errorf("empty input produced %v / %v", b.Columns, b.Rows)
	}
}
