package archive

import (
	"encoding/xml"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/index"
)

// Nuspec parses NuGet .nupkg archives. The manifest is the first *.nuspec
// entry at the archive root. Dependencies are flattened across all
// target-framework groups, keeping declaration order and duplicates.
type Nuspec struct{}

func (*Nuspec) Type() string { return "nuspec" }
func (*Nuspec) Supports(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".nupkg")
}

func (p *Nuspec) Parse(file string) (index.Record, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "open %s", filepath.Base(file))
	}
	defer zr.Close()

	var manifest *zip.File
	for _, f := range zr.File {
		if err := pkgerrors.ValidateArchiveEntry(f.Name); err != nil {
			return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "entry %q", f.Name)
		}
		if !strings.Contains(f.Name, "/") && strings.EqualFold(path.Ext(f.Name), ".nuspec") {
			manifest = f
			break
		}
	}
	if manifest == nil {
		return index.Record{}, pkgerrors.New(pkgerrors.ErrCodeInvalidArchive, "no .nuspec manifest in %s", filepath.Base(file))
	}

	rc, err := manifest.Open()
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "read %s", manifest.Name)
	}
	defer rc.Close()

	var doc nuspecDocument
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "parse %s", manifest.Name)
	}

	md := doc.Metadata
	if strings.TrimSpace(md.ID) == "" {
		return index.Record{}, pkgerrors.New(pkgerrors.ErrCodeInvalidArchive, "%s has no package id", manifest.Name)
	}

	return index.Record{
		ID:           strings.TrimSpace(md.ID),
		Version:      strings.TrimSpace(md.Version),
		Dependencies: md.Dependencies.flatten(),
		Source:       filepath.Base(file),
	}, nil
}

// nuspecDocument matches elements by local name, so every nuspec schema
// namespace decodes the same way.
type nuspecDocument struct {
	Metadata struct {
		ID           string             `xml:"id"`
		Version      string             `xml:"version"`
		Dependencies nuspecDependencies `xml:"dependencies"`
	} `xml:"metadata"`
}

type nuspecDependencies struct {
	Direct []nuspecDependency `xml:"dependency"`
	Groups []struct {
		TargetFramework string             `xml:"targetFramework,attr"`
		Dependencies    []nuspecDependency `xml:"dependency"`
	} `xml:"group"`
}

type nuspecDependency struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

func (d nuspecDependencies) flatten() []string {
	var ids []string
	add := func(deps []nuspecDependency) {
		for _, dep := range deps {
			if id := strings.TrimSpace(dep.ID); id != "" {
				ids = append(ids, id)
			}
		}
	}
	add(d.Direct)
	for _, g := range d.Groups {
		add(g.Dependencies)
	}
	return ids
}
