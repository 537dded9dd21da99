package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Fatalf("default port: got %s", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Fatalf("default backend: got %s", cfg.DataBackend)
	}
	if cfg.AMQPQueue != "sync_invoices" {
		t.Fatalf("default queue: got %s", cfg.AMQPQueue)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Fatalf("default sync interval: got %v", cfg.SyncInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SYNC_INTERVAL", "2m")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-123")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port: got %s", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("backend: got %s", cfg.DataBackend)
	}
	if cfg.SyncInterval != 2*time.Minute {
		t.Fatalf("sync interval: got %v", cfg.SyncInterval)
	}
	if cfg.GoogleSpreadsheetID != "sheet-123" {
		t.Fatalf("spreadsheet id: got %s", cfg.GoogleSpreadsheetID)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) { c.DataBackend = "memory" }, ""},
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"empty queue", func(c *Config) { c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"sync interval too small", func(c *Config) { c.SyncInterval = time.Millisecond }, "invalid sync interval"},
		{"sheet name empty with spreadsheet", func(c *Config) {
			c.GoogleSpreadsheetID = "sheet-123"
			c.GoogleSheetName = ""
		}, "sheet name cannot be empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			cfg.DataBackend = "memory" // avoid touching the filesystem
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
