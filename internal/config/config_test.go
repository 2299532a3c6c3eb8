package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `
server:
  host: 127.0.0.1
  port: 9090
database:
  host: db.local
  port: 5432
  user: ngo
  password: secret
  dbname: ngo_site
  sslmode: disable
storage:
  region: ap-south-1
  bucket: uploads
jwt:
  secret: test-secret
rate_limit:
  enabled: true
  limit: 5
  window_seconds: 30
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.Bucket != "uploads" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Limit != 5 || cfg.RateLimit.Window() != 30*time.Second {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RateLimit.Limit != 10 {
		t.Fatalf("expected default limit 10, got %d", cfg.RateLimit.Limit)
	}
	if cfg.RateLimit.Window() != time.Minute {
		t.Fatalf("expected default window 1m, got %v", cfg.RateLimit.Window())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "ngo",
		Password: "secret",
		DBName:   "ngo_site",
		SSLMode:  "disable",
	}
	want := "host=db.local port=5432 user=ngo password=secret dbname=ngo_site sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
