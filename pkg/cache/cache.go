// Package cache stores rendered export documents and graph artifacts.
//
// Three backends implement [Cache]:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry, for CLI usage
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys are built by a [Keyer] so that every backend sees the same key for
// the same content.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default expiry per entry kind.
const (
	TTLExport = 24 * time.Hour
	TTLGraph  = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// ExportKey addresses the export document of a persisted project
	// version.
	ExportKey(versionID int) string

	// GraphKey addresses a rendered graph of an exchange document, by the
	// document's content hash.
	GraphKey(documentHash string, opts GraphKeyOpts) string
}

// GraphKeyOpts holds the render options that change a graph artifact.
type GraphKeyOpts struct {
	Format     string   `json:"format"`
	Kinds      []string `json:"kinds,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	References bool     `json:"references,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExportKey returns "export:<id>".
func (DefaultKeyer) ExportKey(versionID int) string {
	return fmt.Sprintf("export:%d", versionID)
}

// GraphKey hashes the document hash together with opts.
func (DefaultKeyer) GraphKey(documentHash string, opts GraphKeyOpts) string {
	return hashKey("graph", documentHash, opts)
}
