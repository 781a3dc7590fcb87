package cache

import (
	"time"
)

// Keyer derives cache keys.
type Keyer interface {
	// ArchiveKey identifies the parsed record of one archive file. It changes
	// whenever the file is replaced, resized or touched.
	ArchiveKey(parser, path string, size int64, modTime time.Time) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArchiveKey implements [Keyer].
func (DefaultKeyer) ArchiveKey(parser, path string, size int64, modTime time.Time) string {
	return hashKey("archive:"+parser, path, size, modTime.UTC().UnixNano())
}

var _ Keyer = DefaultKeyer{}
