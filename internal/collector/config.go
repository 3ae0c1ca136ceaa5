package collector

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Root configuration for the collector daemon.
// This mirrors config/config.yaml.

type RootConfig struct {
	Hanna  HannaConfig  `yaml:"hanna"`
	System SystemConfig `yaml:"system"`
}

// HannaConfig holds the cloud account and polling settings. Credentials can
// also come from HANNA_EMAIL / HANNA_PASSWORD so they stay out of the file.
type HannaConfig struct {
	Email                 string `yaml:"email"`
	Password              string `yaml:"password"`
	UpdateIntervalMinutes int    `yaml:"update_interval_minutes"`
	// BaseURL overrides the production API root, for tests only.
	BaseURL string `yaml:"base_url"`
}

type SystemConfig struct {
	Storage struct {
		Enabled      bool          `yaml:"enabled"`
		Dir          string        `yaml:"dir"`
		FileType     string        `yaml:"file_type"` // json | csv | json+csv
		MaxQueueSize int           `yaml:"max_queue_size"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
	} `yaml:"storage"`
	SQLite struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"sqlite"`
	Influx struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"influx"`
}

func LoadYAML(path string) (RootConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RootConfig{}, err
	}
	var cfg RootConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RootConfig{}, err
	}

	// Environment wins over the file for account settings.
	if v := os.Getenv("HANNA_EMAIL"); v != "" {
		cfg.Hanna.Email = v
	}
	if v := os.Getenv("HANNA_PASSWORD"); v != "" {
		cfg.Hanna.Password = v
	}
	if v := os.Getenv("HANNA_UPDATE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return RootConfig{}, fmt.Errorf("HANNA_UPDATE_INTERVAL: %w", err)
		}
		cfg.Hanna.UpdateIntervalMinutes = n
	}

	// Defaults
	if cfg.System.Storage.MaxQueueSize <= 0 {
		cfg.System.Storage.MaxQueueSize = 1000
	}
	if cfg.System.SQLite.Enabled && cfg.System.SQLite.Path == "" {
		cfg.System.SQLite.Path = "data/hanna.sqlite"
	}

	// Basic validation
	if cfg.Hanna.Email == "" || cfg.Hanna.Password == "" {
		return RootConfig{}, fmt.Errorf("hanna email and password are required (config or HANNA_EMAIL/HANNA_PASSWORD)")
	}
	if cfg.System.Influx.Enabled && cfg.System.Influx.URL == "" {
		return RootConfig{}, fmt.Errorf("influx.url is required when influx is enabled")
	}
	return cfg, nil
}
