package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
	"github.com/matzehuels/blueprint/pkg/repository"
	"github.com/matzehuels/blueprint/pkg/transfer"
)

// Runner executes pipeline stages against a store with caching.
//
// The Runner holds no per-call state. Multiple goroutines can safely use the
// same Runner.
type Runner struct {
	Store  repository.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ExportTTL overrides [cache.TTLExport] when positive.
	ExportTTL time.Duration
}

// NewRunner creates a runner for store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(store repository.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  store,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Import imports data and, unless opts.DryRun is set, saves the resulting
// project version. Saving drops any cached export of the version.
func (r *Runner) Import(ctx context.Context, data []byte, opts ImportOptions) (*ImportResult, error) {
	if err := errors.ValidateDocumentSize(int64(len(data)), opts.limit()); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Transfer().OnImportStart(ctx, len(data))

	res, err := transfer.Import(ctx, r.Store, data)
	if err != nil {
		observability.Transfer().OnImportComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	out := &ImportResult{
		ID:             res.ID,
		Errors:         res.Errors,
		ProjectVersion: res.ProjectVersion,
	}

	if !opts.DryRun {
		id, err := r.Store.SaveProjectVersion(ctx, res.ProjectVersion)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeStorage, err, "save project version")
			observability.Transfer().OnImportComplete(ctx, 0, len(res.Errors), time.Since(start), err)
			return nil, err
		}
		out.VersionID = id
		if err := r.Cache.Delete(ctx, r.Keyer.ExportKey(id)); err != nil {
			r.Logger.Warn("invalidate export cache", "version", id, "error", err)
		}
	}

	out.Stats = statsOf(res.ProjectVersion, time.Since(start))
	observability.Transfer().OnImportComplete(ctx, out.VersionID, len(out.Errors), out.Stats.Duration, nil)

	r.Logger.Info("imported project version",
		"import", out.ID,
		"version", out.VersionID,
		"devices", out.Stats.Devices,
		"cfnodes", out.Stats.CFNodes,
		"errors", len(out.Errors),
		"dry_run", opts.DryRun,
		"duration", out.Stats.Duration)
	for _, msg := range out.Errors {
		r.Logger.Debug("import error", "import", out.ID, "error", msg)
	}
	return out, nil
}

// Export returns the exchange document of a persisted project version and
// whether it came from the cache.
func (r *Runner) Export(ctx context.Context, versionID int, opts ExportOptions) ([]byte, bool, error) {
	key := r.Keyer.ExportKey(versionID)
	if !opts.Refresh {
		if data, ok := r.cached(ctx, "export", key); ok {
			return data, true, nil
		}
	}

	start := time.Now()
	observability.Transfer().OnExportStart(ctx, versionID)

	data, err := r.export(ctx, versionID)
	observability.Transfer().OnExportComplete(ctx, versionID, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	ttl := cache.TTLExport
	if r.ExportTTL > 0 {
		ttl = r.ExportTTL
	}
	r.store(ctx, "export", key, data, ttl)
	r.Logger.Info("exported project version",
		"version", versionID,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, false, nil
}

func (r *Runner) export(ctx context.Context, versionID int) ([]byte, error) {
	pv, err := r.Store.LoadProjectVersion(ctx, versionID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load project version %d", versionID)
	}
	if pv == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "project version %d not found", versionID)
	}
	data, err := transfer.Marshal(pv)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode project version %d", versionID)
	}
	return data, nil
}

// Graph renders the trees of an exchange document and reports whether the
// result came from the cache.
func (r *Runner) Graph(ctx context.Context, data []byte, opts GraphOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "graph options")
	}

	key := r.Keyer.GraphKey(cache.Hash(data), cache.GraphKeyOpts{
		Format:     opts.Format,
		Kinds:      opts.Kinds,
		Detailed:   opts.Detailed,
		References: opts.References,
	})
	if !opts.Refresh {
		if out, ok := r.cached(ctx, "graph", key); ok {
			return out, true, nil
		}
	}

	doc, err := document.Read(bytes.NewReader(data))
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeGeneric, err, "parse document")
	}

	start := time.Now()
	out := []byte(nodelink.ToDOT(doc, opts.nodelink()))
	if opts.Format == FormatSVG {
		if out, err = nodelink.RenderSVG(ctx, string(out)); err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	}

	r.store(ctx, "graph", key, out, cache.TTLGraph)
	r.Logger.Debug("rendered graph", "format", opts.Format, "bytes", len(out), "duration", time.Since(start))
	return out, false, nil
}

// cached reads key from the cache. Cache failures count as misses.
func (r *Runner) cached(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner: the cache and the store.
func (r *Runner) Close() error {
	var cacheErr error
	if r.Cache != nil {
		cacheErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			return err
		}
	}
	return cacheErr
}
