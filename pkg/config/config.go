// Package config loads application configuration from TOML files.
//
// Configuration is optional: every field has a working default, and a
// missing config file is not an error. The CLI looks for dagopt.toml in
// the working directory unless a path is given explicitly.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dagopt/pkg/errors"
)

// DefaultPath is the config file the CLI looks for when none is given.
const DefaultPath = "dagopt.toml"

// Config is the root configuration document.
type Config struct {
	Server   Server   `toml:"server"`
	Store    Store    `toml:"store"`
	Mongo    Mongo    `toml:"mongo"`
	Optimize Optimize `toml:"optimize"`
}

// Server configures the HTTP API.
type Server struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

// Store configures snapshot persistence.
type Store struct {
	// Backend selects the storage backend: "file", "redis" or "none".
	Backend string `toml:"backend"`

	// Dir is the directory for the file backend.
	Dir string `toml:"dir"`

	// RedisAddr is the Redis address for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword authenticates against Redis when set.
	RedisPassword string `toml:"redis_password"`

	// RedisDB selects the Redis database number.
	RedisDB int `toml:"redis_db"`

	// TTL bounds cached optimization results, e.g. "24h".
	TTL duration `toml:"ttl"`
}

// Mongo configures the graph exporter.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Optimize holds default flags for optimization runs.
type Optimize struct {
	SkipReduction bool `toml:"skip_reduction"`
	SkipMerge     bool `toml:"skip_merge"`
}

// duration wraps time.Duration for TOML string decoding.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the configured store TTL as a time.Duration.
func (s Store) Duration() time.Duration { return time.Duration(s.TTL) }

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8000"},
		Store:    Store{Backend: "file", Dir: ".dagopt/snapshots", TTL: duration(24 * time.Hour)},
		Mongo:    Mongo{Database: "dagopt"},
		Optimize: Optimize{},
	}
}

// Load reads the config file at path, applying defaults for absent fields.
// A missing file at the default path yields the defaults; a missing file at
// an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "failed to parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown store backend %q (want file, redis or none)", c.Store.Backend)
	}
	return nil
}
