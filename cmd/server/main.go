package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ignite/lead-ledger/internal/api"
	"github.com/ignite/lead-ledger/internal/config"
	"github.com/ignite/lead-ledger/internal/pkg/logger"
	"github.com/ignite/lead-ledger/internal/repository/postgres"
	"github.com/ignite/lead-ledger/internal/service"
	"github.com/ignite/lead-ledger/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("starting lead-ledger server",
		"ledger", cfg.Ledger.Path, "port", cfg.Server.Port)

	runner := service.NewRunner(cfg)

	if cfg.History.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.History.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		defer db.Close()

		repo := postgres.NewHistoryRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure history schema: %v", err)
		}
		cancel()
		runner.Sink = repo
		logger.Info("run history mirrored to postgres")
	}

	if cfg.Backup.Enabled {
		backup, err := storage.NewS3Backup(context.Background(),
			cfg.Backup.S3Bucket, cfg.Backup.S3Region, cfg.Backup.AWSProfile)
		if err != nil {
			log.Fatalf("Failed to initialize S3 backup: %v", err)
		}
		runner.BackupStore = backup
		logger.Info("ledger snapshots enabled", "bucket", cfg.Backup.S3Bucket)
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("%v", err)
	}

	server := api.NewServer(cfg.Server, runner)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	return config.LoadFromEnv(path)
}
