package graph

import (
	"context"
	"fmt"

	"github.com/ignite/lead-ledger/internal/lead"
)

// rowBatchSize bounds how many rows travel per rows/add call. Transport
// sizing only; correctness does not depend on it.
const rowBatchSize = 100

// Uploader mirrors cleaned leads into one worksheet table of a shared
// workbook. The remote table's header order is authoritative; rows are
// always reshaped to it before transmission.
type Uploader struct {
	client *Client
	ref    ItemRef
	sheet  string
}

// NewUploader creates an uploader for the given workbook sheet.
func NewUploader(client *Client, ref ItemRef, sheet string) *Uploader {
	return &Uploader{client: client, ref: ref, sheet: sheet}
}

// Append pushes the leads to the sheet's table, creating the table on
// first use. It returns how many rows were transmitted; on a partial
// failure that count tells the caller where to resume.
func (u *Uploader) Append(ctx context.Context, leads []*lead.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	table, headers, err := u.client.EnsureTable(ctx, u.ref, u.sheet, lead.ActiveColumns)
	if err != nil {
		return 0, err
	}
	rows := RowsForHeaders(headers, leads)
	return u.client.AppendRows(ctx, u.ref, table.ID, rows)
}

// RowsForHeaders serializes leads in the exact order of the remote table's
// headers, matching header names to lead fields case-insensitively.
// Headers that match nothing yield empty cells so every row has the remote
// shape.
func RowsForHeaders(headers []string, leads []*lead.Lead) [][]string {
	rows := make([][]string, len(leads))
	for i, l := range leads {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = l.ValueByHeader(h)
		}
		rows[i] = row
	}
	return rows
}

// AppendRows pushes rows to a table in batches, stopping at the first
// failed batch. It always reports how many rows were successfully
// transmitted, so a partial failure can be resumed without duplicating or
// skipping rows.
func (c *Client) AppendRows(ctx context.Context, ref ItemRef, tableID string, rows [][]string) (int, error) {
	sent := 0
	for start := 0; start < len(rows); start += rowBatchSize {
		end := start + rowBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := c.addRows(ctx, ref, tableID, rows[start:end]); err != nil {
			return sent, fmt.Errorf("append rows %d-%d: %w", start, end-1, err)
		}
		sent += end - start
	}
	return sent, nil
}

// EnsureTable returns the first table on the sheet, creating one sized to
// the given headers when the sheet has none.
func (c *Client) EnsureTable(ctx context.Context, ref ItemRef, sheet string, headers []string) (Table, []string, error) {
	tables, err := c.WorksheetTables(ctx, ref, sheet)
	if err != nil {
		return Table{}, nil, err
	}
	if len(tables) > 0 {
		remote, err := c.TableHeaders(ctx, ref, tables[0].ID)
		if err != nil {
			return Table{}, nil, err
		}
		if len(remote) == 0 {
			remote = headers
		}
		return tables[0], remote, nil
	}

	headerRange := fmt.Sprintf("%s!A1:%s1", sheet, ColumnLetter(len(headers)-1))
	table, err := c.CreateTable(ctx, ref, sheet, headerRange)
	if err != nil {
		return Table{}, nil, err
	}
	remote, err := c.TableHeaders(ctx, ref, table.ID)
	if err != nil {
		// Appending on guessed column order would scramble the workbook.
		return Table{}, nil, fmt.Errorf("read headers of created table %s: %w", table.ID, err)
	}
	if len(remote) == 0 {
		remote = headers
	}
	return table, remote, nil
}
