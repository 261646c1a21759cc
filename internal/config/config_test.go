package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		ListenAddr:     ":8080",
		DBType:         "sqlite",
		DBURI:          "file:ocall.db?_pragma=foreign_keys(1)",
		DBMaxOpenConns: 25,
		TLS:            false,
		TLSCert:        "certs/server.crt",
		TLSKey:         "certs/server.key",
		CacheTTL:       5 * time.Minute,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OCALL_LISTEN_ADDR", ":9090")
	t.Setenv("OCALL_DB_TYPE", "Postgres")
	t.Setenv("OCALL_TLS", "true")
	t.Setenv("OCALL_CACHE_TTL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.DBType != "postgres" || !cfg.TLS || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocall.yaml")
	content := "listen_addr: \":7070\"\ndb_max_open_conns: 4\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OCALL_DB_MAX_OPEN_CONNS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("expected listen address from file, got %q", cfg.ListenAddr)
	}
	if cfg.DBMaxOpenConns != 8 {
		t.Fatalf("expected env to win over file, got %d", cfg.DBMaxOpenConns)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "OCALL_DB_TYPE", value: "mysql"},
		{key: "OCALL_CACHE_TTL", value: "soon"},
		{key: "OCALL_CACHE_TTL", value: "0s"},
		{key: "OCALL_DB_MAX_OPEN_CONNS", value: "0"},
		{key: "OCALL_TLS", value: "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestPrintSettings(t *testing.T) {
	t.Setenv("OCALL_LISTEN_ADDR", ":1234")
	s, err := New("")
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}
	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()
	for _, want := range []string{"OCALL_LISTEN_ADDR", ":1234", "OCALL_DB_TYPE", "sqlite"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in settings table:\n%s", want, out)
		}
	}
	if !s.Has(DB_URI) || s.IsTrue(TLS) {
		t.Fatalf("unexpected settings state")
	}
}
