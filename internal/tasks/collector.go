package tasks

import (
	"context"

	"hanna-collector/internal/collector"
)

// Options defines initialization overrides for the collector.
// Mirrors the CLI flags used in cmd/collector/main.go.
type Options struct {
	ConfigPath      string
	IntervalMinutes int
	StorageEnabled  bool
	StorageDir      string
	StorageQueue    int
	SQLitePath      string
}

// InitAndRunCollector loads config, applies overrides, constructs the manager and runs it.
func InitAndRunCollector(ctx context.Context, opts Options) error {
	cfg, err := collector.LoadYAML(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Override YAML with provided options
	if opts.IntervalMinutes > 0 {
		cfg.Hanna.UpdateIntervalMinutes = opts.IntervalMinutes
	}
	if opts.StorageEnabled {
		cfg.System.Storage.Enabled = true
	}
	if opts.StorageDir != "" {
		cfg.System.Storage.Dir = opts.StorageDir
		cfg.System.Storage.Enabled = true
	}
	if opts.StorageQueue > 0 {
		cfg.System.Storage.MaxQueueSize = opts.StorageQueue
		cfg.System.Storage.Enabled = true
	}
	if opts.SQLitePath != "" {
		cfg.System.SQLite.Path = opts.SQLitePath
		cfg.System.SQLite.Enabled = true
	}

	mgr := &collector.Manager{Cfg: cfg}
	return mgr.Run(ctx)
}
