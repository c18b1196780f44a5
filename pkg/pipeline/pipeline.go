// Package pipeline runs imports, exports and graph renders with caching.
//
// The CLI and the HTTP server both drive the transfer engine through a
// [Runner] so that persistence, cache invalidation, hooks and logging behave
// the same on every entry point.
//
// # Stages
//
//  1. Import: exchange document → [transfer.Import] → [repository.Store]
//  2. Export: [repository.Store] → [transfer.Marshal], cached per version
//  3. Graph: exchange document → DOT or SVG, cached per document hash
//
// # Usage
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	res, err := runner.Import(ctx, data, pipeline.ImportOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, hit, err := runner.Export(ctx, res.VersionID, pipeline.ExportOptions{})
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDocumentBytes bounds the size of an import document.
	DefaultMaxDocumentBytes = 32 << 20

	// DefaultFormat is the default graph output format.
	DefaultFormat = FormatSVG
)

// Format constants for graph output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported graph formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// ValidateFormat checks a graph format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %s (must be dot or svg)", format)
	}
	return nil
}

// ValidateKinds checks graph kinds against [nodelink.AllKinds].
func ValidateKinds(kinds []string) error {
	for _, k := range kinds {
		if !nodelink.ValidKind(k) {
			return fmt.Errorf("invalid kind: %s (must be one of %v)", k, nodelink.AllKinds)
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// ImportOptions controls [Runner.Import].
type ImportOptions struct {
	// DryRun resolves the document without saving it.
	DryRun bool `json:"dry_run,omitempty"`

	// MaxBytes rejects larger documents. Zero means
	// [DefaultMaxDocumentBytes]; negative disables the check.
	MaxBytes int64 `json:"-"`
}

func (o ImportOptions) limit() int64 {
	if o.MaxBytes == 0 {
		return DefaultMaxDocumentBytes
	}
	return o.MaxBytes
}

// ExportOptions controls [Runner.Export].
type ExportOptions struct {
	// Refresh bypasses the cache read. The fresh document is still cached.
	Refresh bool `json:"refresh,omitempty"`
}

// GraphOptions controls [Runner.Graph].
type GraphOptions struct {
	Format     string   `json:"format,omitempty"`
	Kinds      []string `json:"kinds,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	References bool     `json:"references,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults fills in the default format and checks the rest.
// Kinds are sorted so equivalent requests share a cache entry.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if err := ValidateKinds(o.Kinds); err != nil {
		return err
	}
	o.Kinds = slices.Compact(slices.Sorted(slices.Values(o.Kinds)))
	return nil
}

func (o GraphOptions) nodelink() nodelink.Options {
	return nodelink.Options{Kinds: o.Kinds, Detailed: o.Detailed, References: o.References}
}

// =============================================================================
// Results
// =============================================================================

// ImportResult is the outcome of [Runner.Import].
type ImportResult struct {
	// ID identifies the import run.
	ID string `json:"id"`

	// VersionID is the persisted project version, or zero on a dry run.
	VersionID int `json:"version_id,omitempty"`

	// Errors lists the recoverable problems of the import.
	Errors []string `json:"errors"`

	ProjectVersion *model.ProjectVersion `json:"-"`
	Stats          Stats                 `json:"stats"`
}

// Stats counts what an import produced.
type Stats struct {
	Zones    int           `json:"zones"`
	Devices  int           `json:"devices"`
	CFNodes  int           `json:"cfnodes"`
	Services int           `json:"services"`
	Duration time.Duration `json:"duration_ns"`
}

func statsOf(pv *model.ProjectVersion, d time.Duration) Stats {
	return Stats{
		Zones:    len(pv.Zones),
		Devices:  len(pv.Devices),
		CFNodes:  len(pv.CFNodes),
		Services: len(pv.Services),
		Duration: d,
	}
}
