// Package postgres holds the PostgreSQL-backed repositories.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/lead-ledger/internal/history"
)

// HistoryRepo mirrors run-history entries into PostgreSQL for reporting.
type HistoryRepo struct{ db *sql.DB }

// NewHistoryRepo creates a Postgres-backed history repository.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// EnsureSchema creates the runs table when missing. Idempotent.
func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reconciliation_runs (
			run_id         UUID PRIMARY KEY,
			run_at         TIMESTAMPTZ NOT NULL,
			source         TEXT NOT NULL DEFAULT '',
			period         TEXT NOT NULL DEFAULT '',
			rows_in        INTEGER NOT NULL DEFAULT 0,
			rows_cleaned   INTEGER NOT NULL DEFAULT 0,
			rows_dropped   INTEGER NOT NULL DEFAULT 0,
			added          INTEGER NOT NULL DEFAULT 0,
			relocated      INTEGER NOT NULL DEFAULT 0,
			window_hours   INTEGER NOT NULL DEFAULT 0,
			window_days    INTEGER NOT NULL DEFAULT 0,
			since_midnight BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure reconciliation_runs schema: %w", err)
	}
	return nil
}

// Insert records one run.
func (r *HistoryRepo) Insert(ctx context.Context, e history.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reconciliation_runs
			(run_id, run_at, source, period, rows_in, rows_cleaned, rows_dropped,
			 added, relocated, window_hours, window_days, since_midnight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id) DO NOTHING
	`, e.RunID, e.Timestamp, e.Source, e.Period, e.RowsIn, e.RowsCleaned,
		e.RowsDropped, e.Added, e.Relocated, e.WindowHours, e.WindowDays, e.SinceMidnight)
	if err != nil {
		return fmt.Errorf("insert reconciliation run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, run_at, source, period, rows_in, rows_cleaned, rows_dropped,
		       added, relocated, window_hours, window_days, since_midnight
		FROM reconciliation_runs
		ORDER BY run_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reconciliation runs: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.RunID, &e.Timestamp, &e.Source, &e.Period,
			&e.RowsIn, &e.RowsCleaned, &e.RowsDropped, &e.Added, &e.Relocated,
			&e.WindowHours, &e.WindowDays, &e.SinceMidnight); err != nil {
			return nil, fmt.Errorf("scan reconciliation run: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
