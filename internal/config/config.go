// Package config loads application configuration from a YAML file, with
// .env / environment overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Clean   CleanConfig   `yaml:"clean"`
	Graph   GraphConfig   `yaml:"graph"`
	History HistoryConfig `yaml:"history"`
	Backup  BackupConfig  `yaml:"backup"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LedgerConfig locates the ledger workbook and names its partitions.
type LedgerConfig struct {
	Path            string   `yaml:"path"`
	ActiveLabel     string   `yaml:"active_label"`
	DeferredLabel   string   `yaml:"deferred_label"`
	DeferredMarkers []string `yaml:"deferred_markers"`
	Period          string   `yaml:"period"`
}

// CleanConfig holds the default cleaning window and URL derivation.
type CleanConfig struct {
	Hours         int    `yaml:"hours"`
	Days          int    `yaml:"days"`
	SinceMidnight bool   `yaml:"since_midnight"`
	BaseURL       string `yaml:"base_url"`
}

// GraphConfig holds the optional Online Workbook mirror settings.
type GraphConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ClientID  string `yaml:"client_id"`
	TenantID  string `yaml:"tenant_id"`
	ShareURL  string `yaml:"share_url"`
	Worksheet string `yaml:"worksheet"`
}

// HistoryConfig holds run-history persistence settings. DatabaseURL is
// optional; when set, runs are mirrored into Postgres.
type HistoryConfig struct {
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
}

// BackupConfig holds optional S3 ledger snapshot settings.
type BackupConfig struct {
	Enabled    bool   `yaml:"enabled"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	AWSProfile string `yaml:"aws_profile"`
}

// Load reads the config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the config file and then applies environment
// overrides, reading a .env file first when present. An empty path
// starts from defaults so the binary can run on environment alone.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg *Config
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &Config{}
		cfg.applyDefaults()
	}

	if v := os.Getenv("LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("LEDGER_PERIOD"); v != "" {
		cfg.Ledger.Period = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.History.DatabaseURL = v
	}
	if v := os.Getenv("AZURE_CLIENT_ID"); v != "" {
		cfg.Graph.ClientID = v
	}
	if v := os.Getenv("AZURE_TENANT_ID"); v != "" {
		cfg.Graph.TenantID = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = "data/lead-ledger.xlsx"
	}
	if c.History.Dir == "" {
		c.History.Dir = "data/history"
	}
	if c.Clean.Hours == 0 && c.Clean.Days == 0 && !c.Clean.SinceMidnight {
		c.Clean.Hours = 48
	}
}

// Validate rejects contradictory configuration.
func (c *Config) Validate() error {
	if c.Clean.Hours > 0 && c.Clean.Days > 0 {
		return fmt.Errorf("config: clean.hours and clean.days are mutually exclusive")
	}
	if c.Backup.Enabled && c.Backup.S3Bucket == "" {
		return fmt.Errorf("config: backup.s3_bucket is required when backup is enabled")
	}
	if c.Graph.Enabled && c.Graph.ClientID == "" {
		return fmt.Errorf("config: graph.client_id is required when the workbook mirror is enabled")
	}
	return nil
}
