package cfg

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DataDir string `long:"data-dir" env:"XMARKS_DATA_DIR" description:"Data directory (default: ~/.xmarks)"`
	DBPath  string `long:"db-path" env:"XMARKS_DB_PATH" description:"SQLite database path (default: <data-dir>/db.sqlite)"`

	// External tool configuration
	BirdPath   string `long:"bird-path" env:"BIRD_PATH" default:"/opt/homebrew/bin/bird" description:"Path to the bird CLI used to export X bookmarks"`
	ClaudePath string `long:"claude-path" env:"CLAUDE_PATH" description:"Path to the claude CLI (default: well-known locations, then $PATH)"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for sync and classification tasks"`
	BatchSize    int    `long:"batch-size" env:"CLASSIFY_BATCH_SIZE" default:"300" description:"Number of posts per classification batch"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	dataDir := raw.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".xmarks")
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "db.sqlite")
	}

	cfg := &Cfg{
		DataDir:      dataDir,
		DBPath:       dbPath,
		BirdPath:     raw.BirdPath,
		ClaudePath:   raw.ClaudePath,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		WorkerCount:  raw.WorkerCount,
		BatchSize:    raw.BatchSize,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
