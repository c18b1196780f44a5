// Package config loads blueprint's TOML configuration.
//
// Configuration is read from $XDG_CONFIG_HOME/blueprint/config.toml (or the
// path given with --config) on top of [Default], then environment variables
// override individual fields:
//
//	BLUEPRINT_STORE_DRIVER   store.driver
//	BLUEPRINT_MONGO_URI      store.uri
//	BLUEPRINT_MONGO_DATABASE store.database
//	BLUEPRINT_CATALOG        store.catalog
//	BLUEPRINT_CACHE_DRIVER   cache.driver
//	BLUEPRINT_REDIS_URL      cache.url
//	BLUEPRINT_ADDR           server.addr
//
// Example:
//
//	[store]
//	driver = "mongo"
//	uri = "mongodb://localhost:27017"
//	database = "blueprint"
//
//	[cache]
//	driver = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blueprint/pkg/errors"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Cache drivers.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects the repository.
type StoreConfig struct {
	Driver   string `toml:"driver"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`

	// Catalog is a reference catalog file loaded into the memory store.
	Catalog string `toml:"catalog"`
}

// CacheConfig selects the export and graph cache.
type CacheConfig struct {
	Driver string `toml:"driver"`

	// Dir is the file cache directory. Empty means the user cache dir.
	Dir string `toml:"dir"`

	URL    string   `toml:"url"`
	Prefix string   `toml:"prefix"`
	TTL    Duration `toml:"ttl"`
}

// ServerConfig configures `blueprint serve`.
type ServerConfig struct {
	Addr             string   `toml:"addr"`
	MaxDocumentBytes int64    `toml:"max_document_bytes"`
	RequestTimeout   Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:   StoreMemory,
			Database: "blueprint",
		},
		Cache: CacheConfig{
			Driver: CacheFile,
			Prefix: "blueprint:",
			TTL:    Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:             ":8080",
			MaxDocumentBytes: 32 << 20,
			RequestTimeout:   Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/blueprint/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blueprint", "config.toml"), nil
}

// Load reads the configuration at path, applies environment overrides and
// validates the result. An empty path reads [DefaultPath] if it exists.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		if err := cfg.decodeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) && !required {
		return nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		env   string
		field *string
	}{
		{"BLUEPRINT_STORE_DRIVER", &c.Store.Driver},
		{"BLUEPRINT_MONGO_URI", &c.Store.URI},
		{"BLUEPRINT_MONGO_DATABASE", &c.Store.Database},
		{"BLUEPRINT_CATALOG", &c.Store.Catalog},
		{"BLUEPRINT_CACHE_DRIVER", &c.Cache.Driver},
		{"BLUEPRINT_REDIS_URL", &c.Cache.URL},
		{"BLUEPRINT_ADDR", &c.Server.Addr},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.env); ok && v != "" {
			*o.field = v
		}
	}
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongo:
		if c.Store.URI == "" || c.Store.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.uri and store.database are required for the mongo store")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.driver must be memory or mongo, got %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.url is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.driver must be none, file or redis, got %q", c.Cache.Driver)
	}

	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Server.RequestTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.request_timeout must not be negative")
	}
	if c.Server.MaxDocumentBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_document_bytes must not be negative")
	}
	return nil
}
