// Command leadledger cleans a raw CRM export and reconciles it into the
// ledger workbook from the command line.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/lead-ledger/internal/config"
	"github.com/ignite/lead-ledger/internal/graph"
	"github.com/ignite/lead-ledger/internal/ingest"
	"github.com/ignite/lead-ledger/internal/lead"
	"github.com/ignite/lead-ledger/internal/repository/postgres"
	"github.com/ignite/lead-ledger/internal/service"
	"github.com/ignite/lead-ledger/internal/storage"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to YAML config file")
		input         = flag.String("input", "", "path to the raw CSV export")
		hours         = flag.Int("hours", 0, "keep rows paid within the last N hours")
		days          = flag.Int("days", 0, "keep rows paid within the last N days")
		sinceMidnight = flag.Bool("since-midnight", false, "keep rows paid since yesterday's midnight")
		period        = flag.String("period", "", "ledger period label (e.g. \"Sep 2026\")")
		relocateOnly  = flag.Bool("relocate-only", false, "skip ingest; only re-home deferred leads")
		showHistory   = flag.Bool("history", false, "print past runs and exit")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	runner := service.NewRunner(cfg)

	if *showHistory {
		printHistory(runner)
		return
	}

	if *input == "" && !*relocateOnly {
		fmt.Fprintln(os.Stderr, "either -input or -relocate-only is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	if cfg.History.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.History.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewHistoryRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure history schema: %v", err)
		}
		runner.Sink = repo
	}

	if cfg.Backup.Enabled {
		backup, err := storage.NewS3Backup(ctx,
			cfg.Backup.S3Bucket, cfg.Backup.S3Region, cfg.Backup.AWSProfile)
		if err != nil {
			log.Fatalf("Failed to initialize S3 backup: %v", err)
		}
		runner.BackupStore = backup
	}

	if cfg.Graph.Enabled {
		runner.Mirror, err = setupMirror(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to set up workbook mirror: %v", err)
		}
	}

	opts := service.RunOptions{
		Period:       *period,
		RelocateOnly: *relocateOnly,
		Window: lead.Window{
			Hours:         *hours,
			Days:          *days,
			SinceMidnight: *sinceMidnight,
			Reference:     time.Now(),
		},
	}
	if opts.Period == "" {
		opts.Period = cfg.Ledger.Period
	}
	if *hours == 0 && *days == 0 && !*sinceMidnight {
		opts.Window.Hours = cfg.Clean.Hours
		opts.Window.Days = cfg.Clean.Days
		opts.Window.SinceMidnight = cfg.Clean.SinceMidnight
	}
	if err := opts.Window.Validate(); err != nil {
		log.Fatalf("Invalid window: %v", err)
	}

	var batch *ingest.Batch
	if *input != "" {
		batch, err = ingest.ReadFile(*input)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *input, err)
		}
		opts.Source = filepath.Base(*input)
	} else {
		opts.Source = "cli"
	}

	report, err := runner.Run(ctx, batch, opts)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	fmt.Printf("Run %s\n", report.RunID)
	fmt.Printf("  rows in:        %d\n", report.RowsIn)
	fmt.Printf("  rows cleaned:   %d\n", report.RowsCleaned)
	fmt.Printf("  rows dropped:   %d\n", report.RowsDropped)
	fmt.Printf("  added:          %d\n", report.Added)
	fmt.Printf("  relocated:      %d\n", report.Relocated)
	fmt.Printf("  active total:   %d\n", report.ActiveTotal)
	fmt.Printf("  deferred total: %d\n", report.DeferredTotal)
	if report.Mirrored > 0 {
		fmt.Printf("  mirrored:       %d\n", report.Mirrored)
	}
	if report.MissingDateColumn {
		fmt.Println("  warning: no date-bearing column found in input")
	}
}

// setupMirror signs in with the device-code flow and targets the shared
// workbook's worksheet.
func setupMirror(ctx context.Context, cfg *config.Config) (service.WorkbookMirror, error) {
	auth := graph.AuthConfig{
		ClientID: cfg.Graph.ClientID,
		TenantID: cfg.Graph.TenantID,
	}
	tok, err := graph.Authenticate(ctx, auth, func(code, uri string) {
		fmt.Printf("To mirror the ledger online, visit %s and enter code %s\n", uri, code)
	})
	if err != nil {
		return nil, err
	}
	client := graph.NewClient(tok.AccessToken)
	ref := graph.ItemRef{ShareURL: cfg.Graph.ShareURL}
	sheet := cfg.Graph.Worksheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	return graph.NewUploader(client, ref, sheet), nil
}

func printHistory(runner *service.Runner) {
	entries, err := runner.History.Load()
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Printf("%s  %s  source=%s cleaned=%d added=%d relocated=%d\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.RunID, e.Source,
			e.RowsCleaned, e.Added, e.Relocated)
	}
}
