package cache

import "time"

// ScopedKeyer wraps a Keyer with a prefix so that several package feeds can
// share one Redis database without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "feed:nuget.org:")
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

// ArchiveKey generates a prefixed archive key.
func (k *ScopedKeyer) ArchiveKey(parser, path string, size int64, modTime time.Time) string {
	return k.prefix + k.inner.ArchiveKey(parser, path, size, modTime)
}
