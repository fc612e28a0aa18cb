// Package service orchestrates one reconciliation run: clean the raw
// batch, filter and deduplicate it, merge it into the ledger, and record
// the run in the history stores.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/lead-ledger/internal/config"
	"github.com/ignite/lead-ledger/internal/history"
	"github.com/ignite/lead-ledger/internal/ingest"
	"github.com/ignite/lead-ledger/internal/lead"
	"github.com/ignite/lead-ledger/internal/ledger"
	"github.com/ignite/lead-ledger/internal/pkg/logger"
)

// HistorySink mirrors run entries to a secondary store.
type HistorySink interface {
	Insert(ctx context.Context, e history.Entry) error
}

// Backup snapshots the current ledger bytes before a rewrite.
type Backup interface {
	Upload(ctx context.Context, ledgerPath string, data []byte) (string, error)
}

// WorkbookMirror pushes cleaned leads to a shared online workbook.
type WorkbookMirror interface {
	Append(ctx context.Context, leads []*lead.Lead) (int, error)
}

// Runner wires the pipeline together. Sink and BackupStore are optional.
type Runner struct {
	Cfg         *config.Config
	Store       *ledger.Store
	Reconciler  *ledger.Reconciler
	History     *history.FileStore
	Sink        HistorySink
	BackupStore Backup
	Mirror      WorkbookMirror
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config) *Runner {
	store := ledger.NewStore(cfg.Ledger.Path)
	rec := ledger.NewReconciler(store,
		ledger.WithLabels(cfg.Ledger.ActiveLabel, cfg.Ledger.DeferredLabel),
		ledger.WithDeferredMarkers(cfg.Ledger.DeferredMarkers),
	)
	return &Runner{
		Cfg:        cfg,
		Store:      store,
		Reconciler: rec,
		History:    history.NewFileStore(cfg.History.Dir),
	}
}

// RunOptions parametrize one run.
type RunOptions struct {
	Source       string // label recorded in history (file name, "api", ...)
	Window       lead.Window
	Period       string
	RelocateOnly bool
}

// Report is the caller-facing outcome of a run.
type Report struct {
	RunID             string `json:"run_id"`
	RowsIn            int    `json:"rows_in"`
	RowsCleaned       int    `json:"rows_cleaned"`
	RowsDropped       int    `json:"rows_dropped"`
	MissingDateColumn bool   `json:"missing_date_column,omitempty"`
	Added             int    `json:"added"`
	Relocated         int    `json:"relocated"`
	ActiveTotal       int    `json:"active_total"`
	DeferredTotal     int    `json:"deferred_total"`
	Mirrored          int    `json:"mirrored,omitempty"`
}

// Run executes the pipeline. batch may be nil for a relocation-only run.
// Cleaning problems are warnings, never errors: a batch with no resolvable
// date column, or one that filters down to nothing, still runs the
// relocation housekeeping pass. Only ledger persistence failures abort.
func (r *Runner) Run(ctx context.Context, batch *ingest.Batch, opts RunOptions) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}

	var cleaned []*lead.Lead
	relocateOnly := opts.RelocateOnly

	if batch != nil && !relocateOnly {
		report.RowsIn = batch.Len()

		res := lead.Normalize(batch, lead.NormalizeOptions{BaseURL: r.Cfg.Clean.BaseURL})
		report.RowsDropped = res.Dropped
		report.MissingDateColumn = res.MissingDateColumn
		if res.MissingDateColumn {
			logger.Warn("no date-bearing column resolved; batch yields no records",
				"source", opts.Source)
			relocateOnly = true
		} else {
			cleaned = lead.Dedupe(lead.Filter(res.Leads, opts.Window))
			report.RowsCleaned = len(cleaned)
			if res.Dropped > 0 {
				logger.Warn("rows dropped for unparseable dates",
					"dropped", res.Dropped, "source", opts.Source)
			}
			if len(cleaned) == 0 {
				logger.Info("batch empty after window filter", "source", opts.Source)
			}
		}
	}

	r.snapshotLedger(ctx)

	result, err := r.Reconciler.Reconcile(ctx, cleaned, opts.Period, relocateOnly)
	if err != nil {
		return nil, err
	}
	report.Added = result.Added
	report.Relocated = result.Relocated
	report.ActiveTotal = result.ActiveTotal
	report.DeferredTotal = result.DeferredTotal

	if r.Mirror != nil && len(cleaned) > 0 {
		sent, err := r.Mirror.Append(ctx, cleaned)
		report.Mirrored = sent
		if err != nil {
			// The ledger is already consistent; a mirror failure only
			// costs the online copy this batch.
			logger.Warn("workbook mirror failed",
				"sent", sent, "of", len(cleaned), "error", err.Error())
		}
	}

	r.record(ctx, report, opts)
	return report, nil
}

// snapshotLedger backs up the current ledger bytes, best effort.
func (r *Runner) snapshotLedger(ctx context.Context) {
	if r.BackupStore == nil {
		return
	}
	data, err := r.Store.ReadBytes()
	if err != nil {
		return // nothing to snapshot yet
	}
	key, err := r.BackupStore.Upload(ctx, r.Store.Path(), data)
	if err != nil {
		logger.Warn("ledger snapshot failed", "error", err.Error())
		return
	}
	logger.Info("ledger snapshot uploaded", "key", key)
}

// record writes the run to the history stores, best effort.
func (r *Runner) record(ctx context.Context, report *Report, opts RunOptions) {
	entry := history.Entry{
		RunID:         report.RunID,
		Timestamp:     time.Now(),
		Source:        opts.Source,
		Period:        opts.Period,
		RowsIn:        report.RowsIn,
		RowsCleaned:   report.RowsCleaned,
		RowsDropped:   report.RowsDropped,
		Added:         report.Added,
		Relocated:     report.Relocated,
		WindowHours:   opts.Window.Hours,
		WindowDays:    opts.Window.Days,
		SinceMidnight: opts.Window.SinceMidnight,
	}
	if r.History != nil {
		if err := r.History.Append(entry); err != nil {
			logger.Warn("history append failed", "error", err.Error())
		}
	}
	if r.Sink != nil {
		if err := r.Sink.Insert(ctx, entry); err != nil {
			logger.Warn("history sink insert failed", "error", err.Error())
		}
	}
}
