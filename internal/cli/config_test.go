package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
catalog = "cells.toml"

[cache]
backend = "redis"
namespace = "staging"
[cache.redis]
addr = "cache:6379"
db = 2

[archive]
backend = "mongo"
mongo_uri = "mongodb://db:27017"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Catalog != "cells.toml" {
		t.Errorf("Catalog = %q, want %q", cfg.Catalog, "cells.toml")
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "cache:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Namespace != "staging" {
		t.Errorf("Cache.Namespace = %q, want %q", cfg.Cache.Namespace, "staging")
	}
	if cfg.Archive.MongoURI != "mongodb://db:27017" {
		t.Errorf("Archive.MongoURI = %q", cfg.Archive.MongoURI)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want default %q", cfg.Serve.Addr, ":8080")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "colour = \"red\"\n", "unknown key"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", "unknown cache backend"},
		{"bad syntax", "catalog = \n", "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig() with a missing explicit file should fail")
	}
}
