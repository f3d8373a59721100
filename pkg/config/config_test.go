package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dagopt.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9090"

[store]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
ttl = "1h"

[mongo]
uri = "mongodb://localhost:27017"
database = "graphs"

[optimize]
skip_merge = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "localhost:6379" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Duration() != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.Store.Duration())
	}
	if cfg.Mongo.Database != "graphs" {
		t.Errorf("Mongo.Database = %q, want graphs", cfg.Mongo.Database)
	}
	if !cfg.Optimize.SkipMerge || cfg.Optimize.SkipReduction {
		t.Errorf("Optimize = %+v", cfg.Optimize)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":7070"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	def := Default()
	if cfg.Store.Backend != def.Store.Backend || cfg.Store.Duration() != def.Store.Duration() {
		t.Errorf("Store defaults not kept: %+v", cfg.Store)
	}
}

func TestLoad_MissingDefaultPath(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("missing default file did not fall back to defaults: %+v", cfg)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() accepted a missing explicit path")
	}
}

func TestLoad_BadTOML(t *testing.T) {
	path := writeConfig(t, "[server\naddr=")
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted malformed TOML")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "dynamodb"
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an unknown store backend")
	}
}

func TestLoad_BadTTL(t *testing.T) {
	path := writeConfig(t, `
[store]
ttl = "tomorrow"
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an invalid duration")
	}
}
