package cache

// ScopedKeyer wraps a Keyer with a prefix so several experiments can share
// one backend without colliding.
//
// Example usage:
//
//	// Keys for one experiment campaign
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "campaign:drift-2026:")
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

// ModelKey generates a prefixed key for learned models.
func (k *ScopedKeyer) ModelKey(kind, datasetHash string, params map[string]string) string {
	return k.prefix + k.inner.ModelKey(kind, datasetHash, params)
}

// DatasetKey generates a prefixed key for datasets.
func (k *ScopedKeyer) DatasetKey(path string) string {
	return k.prefix + k.inner.DatasetKey(path)
}
