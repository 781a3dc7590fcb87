package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/klauspost/compress/gzip"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/index"
)

// maxManifestSize bounds how much of package.json is read.
const maxManifestSize = 8 << 20

// NPM parses npm registry tarballs (.tgz). The manifest is package.json
// directly under the tarball's single top-level directory, conventionally
// "package/". Only runtime dependencies are read, sorted by name.
type NPM struct{}

func (*NPM) Type() string { return "npm" }
func (*NPM) Supports(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".tgz")
}

func (p *NPM) Parse(file string) (index.Record, error) {
	f, err := os.Open(file)
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "open %s", filepath.Base(file))
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "gunzip %s", filepath.Base(file))
	}
	defer gz.Close()

	data, err := readPackageJSON(tar.NewReader(gz))
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "read %s", filepath.Base(file))
	}

	js, err := simplejson.NewJson(data)
	if err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "parse package.json in %s", filepath.Base(file))
	}

	name, _ := js.Get("name").String()
	if name == "" {
		return index.Record{}, pkgerrors.New(pkgerrors.ErrCodeInvalidArchive, "package.json in %s has no name", filepath.Base(file))
	}
	if err := pkgerrors.ValidateNpmPackageName(name); err != nil {
		return index.Record{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidArchive, err, "package.json in %s", filepath.Base(file))
	}
	version, _ := js.Get("version").String()

	return index.Record{
		ID:           name,
		Version:      version,
		Dependencies: dependencyNames(js.Get("dependencies")),
		Source:       filepath.Base(file),
	}, nil
}

func readPackageJSON(tr *tar.Reader) ([]byte, error) {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidArchive, "no package.json")
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := strings.TrimPrefix(hdr.Name, "./")
		if err := pkgerrors.ValidateArchiveEntry(name); err != nil {
			return nil, err
		}
		if parts := strings.Split(name, "/"); len(parts) != 2 || parts[1] != "package.json" {
			continue
		}
		return io.ReadAll(io.LimitReader(tr, maxManifestSize))
	}
}

func dependencyNames(js *simplejson.Json) []string {
	deps, err := js.Map()
	if err != nil || len(deps) == 0 {
		return nil
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
