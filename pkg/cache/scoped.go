package cache

// ScopedKeyer wraps a Keyer with a prefix. The server uses it to keep its
// keys apart from other tenants of a shared Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "blueprint:")
//	keyer.ExportKey(42) // "blueprint:export:42"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExportKey generates a prefixed key for an export document.
func (k *ScopedKeyer) ExportKey(versionID int) string {
	return k.prefix + k.inner.ExportKey(versionID)
}

// GraphKey generates a prefixed key for a rendered graph.
func (k *ScopedKeyer) GraphKey(documentHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(documentHash, opts)
}
