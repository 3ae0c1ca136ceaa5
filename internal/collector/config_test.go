package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
hanna:
  email: user@example.com
  password: secret
  update_interval_minutes: 10
system:
  storage:
    enabled: true
    dir: out
    file_type: json+csv
    cache_ttl: 30m
  sqlite:
    enabled: true
  influx:
    enabled: true
    url: http://localhost:8086
    database: hanna
`)

	cfg, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if cfg.Hanna.Email != "user@example.com" || cfg.Hanna.Password != "secret" {
		t.Fatalf("credentials not loaded: %+v", cfg.Hanna)
	}
	if cfg.Hanna.UpdateIntervalMinutes != 10 {
		t.Fatalf("interval = %d, want 10", cfg.Hanna.UpdateIntervalMinutes)
	}
	if cfg.System.Storage.CacheTTL != 30*time.Minute {
		t.Fatalf("cache_ttl = %s, want 30m", cfg.System.Storage.CacheTTL)
	}
	if cfg.System.Storage.MaxQueueSize != 1000 {
		t.Fatalf("queue default = %d, want 1000", cfg.System.Storage.MaxQueueSize)
	}
	if cfg.System.SQLite.Path != "data/hanna.sqlite" {
		t.Fatalf("sqlite path default = %q", cfg.System.SQLite.Path)
	}
}

func TestLoadYAMLEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
hanna:
  email: file@example.com
  password: filepass
  update_interval_minutes: 5
`)

	t.Setenv("HANNA_EMAIL", "env@example.com")
	t.Setenv("HANNA_PASSWORD", "envpass")
	t.Setenv("HANNA_UPDATE_INTERVAL", "15")

	cfg, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if cfg.Hanna.Email != "env@example.com" {
		t.Fatalf("email = %q, want env override", cfg.Hanna.Email)
	}
	if cfg.Hanna.Password != "envpass" {
		t.Fatalf("password = %q, want env override", cfg.Hanna.Password)
	}
	if cfg.Hanna.UpdateIntervalMinutes != 15 {
		t.Fatalf("interval = %d, want 15", cfg.Hanna.UpdateIntervalMinutes)
	}
}

func TestLoadYAMLMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
hanna:
  update_interval_minutes: 5
`)
	if _, err := LoadYAML(path); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLoadYAMLInfluxNeedsURL(t *testing.T) {
	path := writeConfig(t, `
hanna:
  email: a@b.c
  password: p
system:
  influx:
    enabled: true
`)
	if _, err := LoadYAML(path); err == nil {
		t.Fatal("expected error for influx without url")
	}
}

func TestLoadYAMLBadInterval(t *testing.T) {
	path := writeConfig(t, `
hanna:
  email: a@b.c
  password: p
`)
	t.Setenv("HANNA_UPDATE_INTERVAL", "often")
	if _, err := LoadYAML(path); err == nil {
		t.Fatal("expected error for non-numeric HANNA_UPDATE_INTERVAL")
	}
}
