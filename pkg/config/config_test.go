package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/blueprint/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BLUEPRINT_STORE_DRIVER", "BLUEPRINT_MONGO_URI", "BLUEPRINT_MONGO_DATABASE",
		"BLUEPRINT_CATALOG", "BLUEPRINT_CACHE_DRIVER", "BLUEPRINT_REDIS_URL", "BLUEPRINT_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[store]
driver = "mongo"
uri = "mongodb://db:27017"

[cache]
driver = "redis"
url = "redis://cache:6379/0"
ttl = "90m"

[server]
addr = ":9000"
request_timeout = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreMongo || cfg.Store.URI != "mongodb://db:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Database != "blueprint" {
		t.Errorf("unset keys should keep defaults, database = %q", cfg.Store.Database)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache.ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RequestTimeout.Duration != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxDocumentBytes != 32<<20 {
		t.Errorf("max_document_bytes = %d", cfg.Server.MaxDocumentBytes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[store]\ndriver = \"memory\"\n")
	t.Setenv("BLUEPRINT_STORE_DRIVER", "mongo")
	t.Setenv("BLUEPRINT_MONGO_URI", "mongodb://env:27017")
	t.Setenv("BLUEPRINT_ADDR", ":7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreMongo || cfg.Store.URI != "mongodb://env:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[store\n"},
		{"unknown key", "[store]\ndrvier = \"mongo\"\n"},
		{"bad duration", "[cache]\nttl = \"soon\"\n"},
		{"bad store driver", "[store]\ndriver = \"postgres\"\n"},
		{"mongo without uri", "[store]\ndriver = \"mongo\"\n"},
		{"redis without url", "[cache]\ndriver = \"redis\"\n"},
		{"bad cache driver", "[cache]\ndriver = \"memcached\"\n"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n"},
		{"negative size", "[server]\nmax_document_bytes = -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	out, _ := d.MarshalText()
	if string(out) != "1m30s" {
		t.Errorf("MarshalText = %q", out)
	}
}
