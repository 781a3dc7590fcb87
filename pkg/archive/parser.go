package archive

import (
	"github.com/matzehuels/treedepth/pkg/index"
)

// Parser extracts an [index.Record] from one archive file.
type Parser interface {
	// Type returns the parser identifier (e.g. "nuspec", "npm"). It is part of
	// the cache key, so records parsed by different parsers never collide.
	Type() string
	// Supports reports whether this parser handles the given file name.
	Supports(name string) bool
	// Parse reads the archive at path.
	Parse(path string) (index.Record, error)
}

// DefaultParsers returns the parsers used when [Options.Parsers] is empty.
func DefaultParsers() []Parser {
	return []Parser{&Nuspec{}, &NPM{}}
}

// Detect returns the first parser that supports name, or nil.
func Detect(name string, parsers ...Parser) Parser {
	for _, p := range parsers {
		if p.Supports(name) {
			return p
		}
	}
	return nil
}
