package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration file. Flags override it.
//
//	catalog = "cells/adder.toml"
//
//	[cache]
//	backend = "redis"
//	namespace = "staging"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[archive]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[serve]
//	addr = ":8080"
type Config struct {
	Catalog string        `toml:"catalog"`
	Cache   CacheConfig   `toml:"cache"`
	Archive ArchiveConfig `toml:"archive"`
	Serve   ServeConfig   `toml:"serve"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend   string      `toml:"backend"` // file (default), redis, none
	Dir       string      `toml:"dir"`
	Namespace string      `toml:"namespace"` // key prefix, for sharing one redis
	Redis     RedisConfig `toml:"redis"`
}

// RedisConfig locates the redis server.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ArchiveConfig selects where synthesized designs are recorded.
type ArchiveConfig struct {
	Backend  string `toml:"backend"` // file (default for the CLI), memory, mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{Backend: "file", Redis: RedisConfig{Addr: "localhost:6379"}},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// LoadConfig reads path over the defaults. An empty path tries the default
// location and silently falls back to the defaults if there is no file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	switch cfg.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return cfg, fmt.Errorf("load config %s: unknown cache backend %q", path, cfg.Cache.Backend)
	}
	return cfg, nil
}
