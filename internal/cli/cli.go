// Package cli implements the blueprint command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/buildinfo"
	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/catalog"
	"github.com/matzehuels/blueprint/pkg/config"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/repository"
	"github.com/matzehuels/blueprint/pkg/repository/memory"
	"github.com/matzehuels/blueprint/pkg/repository/mongo"
)

// appName is the application name used for directories and display.
const appName = "blueprint"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Logs and spinners go to stderr.
	Out io.Writer

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blueprint imports and exports project versions as JSON documents",
		Long: `Blueprint moves project versions (zones, devices, cloud nodes and service
instances) between a project store and a self-contained JSON exchange
document. References to shared catalog data are written by natural key and
resolved again on import.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blueprint/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded configuration, or the defaults when commands
// run without the root's pre-run hook.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()

	store, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	cacheCfg := cfg.Cache
	if noCache {
		cacheCfg.Driver = config.CacheNone
	}
	ch, err := openCache(ctx, cacheCfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(store, ch, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), c.Logger)
	runner.ExportTTL = cfg.Cache.TTL.Duration
	return runner, nil
}

// openStore connects the configured repository. A memory store is seeded
// from the catalog file when one is configured.
func (c *CLI) openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		c.Logger.Debug("Connecting to MongoDB", "database", cfg.Database)
		return mongo.Connect(ctx, cfg.URI, cfg.Database)
	default:
		if cfg.Catalog == "" {
			return memory.New(), nil
		}
		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		store, problems := cat.Store()
		for _, p := range problems {
			c.Logger.Warn("Catalog", "problem", p)
		}
		c.Logger.Debug("Loaded catalog", "path", cfg.Catalog)
		return store, nil
	}
}

func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cfg.URL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open redis cache")
		}
		return c, nil
	case config.CacheFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// cacheDir returns the file cache directory.
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseList splits a comma-separated flag value, dropping empty items.
func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
