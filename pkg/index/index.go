// Package index holds the de-duplicated dependency index that the tree
// builder consumes: one entry per package identifier, mapping it to the
// identifiers it declares as direct dependencies.
//
// An [Index] is built once from archive [Record] values (see package archive)
// or decoded from a TOML file, and is read-only afterwards.
package index

import (
	"slices"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

// Record is the metadata extracted from one package archive.
type Record struct {
	ID           string   `json:"id"`
	Version      string   `json:"version,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	// Source is the archive the record was read from, if any.
	Source string `json:"source,omitempty"`
}

// Options configures [New].
type Options struct {
	// Validate checks each identifier before it is admitted. Defaults to
	// [pkgerrors.ValidatePackageName].
	Validate func(id string) error

	// Logger receives one line per skipped or duplicate record.
	Logger func(msg string, args ...any)
}

// Index maps package identifiers to their declared direct dependencies.
// Identifiers are compared exactly; no case folding is applied.
type Index struct {
	entries map[string]Record
	order   []string
	dupes   []Record
	invalid []Record
}

// New builds an index from records. When several records share an identifier,
// the first one wins and the rest are kept as duplicates. Records whose
// identifier fails validation are skipped. Dependency lists are copied as-is;
// duplicates inside one list are preserved.
func New(records []Record, opts Options) *Index {
	if opts.Validate == nil {
		opts.Validate = func(id string) error { return pkgerrors.ValidatePackageName(id) }
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}

	idx := &Index{entries: make(map[string]Record, len(records))}
	for _, r := range records {
		if err := opts.Validate(r.ID); err != nil {
			opts.Logger("skipping %s: %v", describe(r), err)
			idx.invalid = append(idx.invalid, r)
			continue
		}
		if _, exists := idx.entries[r.ID]; exists {
			opts.Logger("duplicate package %s ignored (%s)", r.ID, describe(r))
			idx.dupes = append(idx.dupes, r)
			continue
		}
		r.Dependencies = slices.Clone(r.Dependencies)
		idx.entries[r.ID] = r
		idx.order = append(idx.order, r.ID)
	}
	return idx
}

// FromMap builds an index from a plain identifier → dependencies map.
// Identifiers are inserted in sorted order.
func FromMap(m map[string][]string) *Index {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]Record, len(ids))
	for i, id := range ids {
		records[i] = Record{ID: id, Dependencies: m[id]}
	}
	return New(records, Options{})
}

func describe(r Record) string {
	if r.Source != "" {
		return r.Source
	}
	if r.Version != "" {
		return r.ID + " " + r.Version
	}
	return r.ID
}

// Dependencies returns the declared dependencies of id and whether id is known.
func (i *Index) Dependencies(id string) ([]string, bool) {
	r, ok := i.entries[id]
	if !ok {
		return nil, false
	}
	return r.Dependencies, true
}

// Record returns the record kept for id.
func (i *Index) Record(id string) (Record, bool) {
	r, ok := i.entries[id]
	return r, ok
}

// IDs returns every identifier in insertion order.
func (i *Index) IDs() []string { return slices.Clone(i.order) }

// Len returns the number of distinct identifiers.
func (i *Index) Len() int { return len(i.order) }

// TopLevel returns the identifiers with at least one declared dependency, in
// insertion order. This is the initial expansion frontier of the tree.
func (i *Index) TopLevel() []string {
	var top []string
	for _, id := range i.order {
		if len(i.entries[id].Dependencies) > 0 {
			top = append(top, id)
		}
	}
	return top
}

// LeafCount returns the number of identifiers with no dependencies. Such
// packages are depth 1 by definition and are never expanded into the tree.
func (i *Index) LeafCount() int {
	n := 0
	for _, id := range i.order {
		if len(i.entries[id].Dependencies) == 0 {
			n++
		}
	}
	return n
}

// Duplicates returns the records dropped because their identifier was already taken.
func (i *Index) Duplicates() []Record { return slices.Clone(i.dupes) }

// Invalid returns the records dropped because their identifier failed validation.
func (i *Index) Invalid() []Record { return slices.Clone(i.invalid) }

// Map returns a copy of the index as a plain map. Leaf packages map to an
// empty, non-nil slice.
func (i *Index) Map() map[string][]string {
	m := make(map[string][]string, len(i.order))
	for _, id := range i.order {
		m[id] = append([]string{}, i.entries[id].Dependencies...)
	}
	return m
}
