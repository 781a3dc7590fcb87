package archive

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/treedepth/pkg/cache"
	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
)

const signalrNuspec = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>Microsoft.AspNet.SignalR</id>
    <version>2.4.3</version>
    <dependencies>
      <group targetFramework=".NETFramework4.5">
        <dependency id="Microsoft.AspNet.SignalR.Core" version="2.4.3" />
        <dependency id="Microsoft.AspNet.SignalR.SystemWeb" version="2.4.3" />
      </group>
      <group targetFramework=".NETStandard2.0">
        <dependency id="Microsoft.AspNet.SignalR.Core" version="2.4.3" />
      </group>
    </dependencies>
  </metadata>
</package>`

const legacyNuspec = `<?xml version="1.0"?>
<package>
  <metadata>
    <id>jQuery.UI</id>
    <version>1.8.20</version>
    <dependencies>
      <dependency id="jQuery" version="[1.4.4,)" />
    </dependencies>
  </metadata>
</package>`

func writeNupkg(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for n, body := range entries {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return p
}

func writeTgz(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for n, body := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     n,
			Mode:     0644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return p
}

func TestNuspec_Parse(t *testing.T) {
	dir := t.TempDir()
	p := writeNupkg(t, dir, "Microsoft.AspNet.SignalR.2.4.3.nupkg", map[string]string{
		"Microsoft.AspNet.SignalR.nuspec": signalrNuspec,
		"lib/net45/readme.txt":            "hi",
	})

	rec, err := (&Nuspec{}).Parse(p)
	require.NoError(t, err)
	assert.Equal(t, "Microsoft.AspNet.SignalR", rec.ID)
	assert.Equal(t, "2.4.3", rec.Version)
	assert.Equal(t, []string{
		"Microsoft.AspNet.SignalR.Core",
		"Microsoft.AspNet.SignalR.SystemWeb",
		"Microsoft.AspNet.SignalR.Core",
	}, rec.Dependencies, "groups are flattened without collapsing duplicates")
	assert.Equal(t, "Microsoft.AspNet.SignalR.2.4.3.nupkg", rec.Source)
}

func TestNuspec_ParseLegacyUngrouped(t *testing.T) {
	p := writeNupkg(t, t.TempDir(), "jQuery.UI.1.8.20.nupkg", map[string]string{
		"jQuery.UI.nuspec": legacyNuspec,
	})

	rec, err := (&Nuspec{}).Parse(p)
	require.NoError(t, err)
	assert.Equal(t, "jQuery.UI", rec.ID)
	assert.Equal(t, []string{"jQuery"}, rec.Dependencies)
}

func TestNuspec_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	notZip := filepath.Join(dir, "broken.nupkg")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"not a zip", notZip},
		{"no manifest", writeNupkg(t, dir, "empty.nupkg", map[string]string{"lib/a.dll": "x"})},
		{"nested manifest only", writeNupkg(t, dir, "nested.nupkg", map[string]string{"sub/a.nuspec": legacyNuspec})},
		{"bad xml", writeNupkg(t, dir, "badxml.nupkg", map[string]string{"a.nuspec": "<package><metadata>"})},
		{"no id", writeNupkg(t, dir, "noid.nupkg", map[string]string{"a.nuspec": "<package><metadata></metadata></package>"})},
		{"traversal", writeNupkg(t, dir, "evil.nupkg", map[string]string{"../evil.nuspec": legacyNuspec})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Nuspec{}).Parse(tt.path)
			assert.True(t, pkgerrors.Is(err, pkgerrors.ErrCodeInvalidArchive), "got %v", err)
		})
	}
}

func TestNPM_Parse(t *testing.T) {
	p := writeTgz(t, t.TempDir(), "express-4.18.2.tgz", map[string]string{
		"package/package.json":     `{"name":"express","version":"4.18.2","dependencies":{"qs":"6.11.0","body-parser":"1.20.1"},"devDependencies":{"mocha":"*"}}`,
		"package/lib/package.json": `{"name":"nested"}`,
	})

	rec, err := (&NPM{}).Parse(p)
	require.NoError(t, err)
	assert.Equal(t, "express", rec.ID)
	assert.Equal(t, "4.18.2", rec.Version)
	assert.Equal(t, []string{"body-parser", "qs"}, rec.Dependencies)
}

func TestNPM_ParseScopedName(t *testing.T) {
	p := writeTgz(t, t.TempDir(), "types-node-20.0.0.tgz", map[string]string{
		"package/package.json": `{"name":"@types/node","version":"20.0.0"}`,
	})

	rec, err := (&NPM{}).Parse(p)
	require.NoError(t, err)
	assert.Equal(t, "@types/node", rec.ID)
	assert.Empty(t, rec.Dependencies)
}

func TestNPM_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	notGzip := filepath.Join(dir, "plain.tgz")
	require.NoError(t, os.WriteFile(notGzip, []byte("plain"), 0644))

	for name, path := range map[string]string{
		"not gzip":    notGzip,
		"no manifest": writeTgz(t, dir, "none.tgz", map[string]string{"package/index.js": ""}),
		"bad json":    writeTgz(t, dir, "bad.tgz", map[string]string{"package/package.json": "{"}),
		"no name":     writeTgz(t, dir, "noname.tgz", map[string]string{"package/package.json": `{"version":"1.0.0"}`}),
		"bad name":    writeTgz(t, dir, "badname.tgz", map[string]string{"package/package.json": `{"name":"Left Pad"}`}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := (&NPM{}).Parse(path)
			assert.True(t, pkgerrors.Is(err, pkgerrors.ErrCodeInvalidArchive), "got %v", err)
		})
	}
}

func TestDetect(t *testing.T) {
	parsers := DefaultParsers()
	assert.Equal(t, "nuspec", Detect("A.1.0.0.NUPKG", parsers...).Type())
	assert.Equal(t, "npm", Detect("left-pad-1.3.0.tgz", parsers...).Type())
	assert.Nil(t, Detect("readme.md", parsers...))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeNupkg(t, dir, "b.nupkg", map[string]string{"b.nuspec": legacyNuspec})
	writeNupkg(t, dir, "a.nupkg", map[string]string{"a.nuspec": signalrNuspec})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.nupkg"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.nupkg"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.nupkg"), 0755))

	var logged []string
	res, err := Scan(context.Background(), dir, Options{
		Workers: 2,
		Logger:  func(msg string, args ...any) { logged = append(logged, msg) },
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Archives)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Microsoft.AspNet.SignalR", res.Records[0].ID, "records keep file-name order")
	assert.Equal(t, "jQuery.UI", res.Records[1].ID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "c.nupkg", res.Failures[0].Name)
	assert.Contains(t, res.Failures[0].Error(), "broken package: c.nupkg")
	assert.Len(t, logged, 1)
}

func TestScan_Cache(t *testing.T) {
	dir := t.TempDir()
	writeNupkg(t, dir, "a.nupkg", map[string]string{"a.nuspec": signalrNuspec})

	mem, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	opts := Options{Cache: mem}

	first, err := Scan(context.Background(), dir, opts)
	require.NoError(t, err)
	assert.Zero(t, first.CacheHits)
	assert.Equal(t, 1, mem.Len())

	second, err := Scan(context.Background(), dir, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CacheHits)
	assert.Equal(t, first.Records, second.Records)
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrCodeFileNotFound), "got %v", err)
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeNupkg(t, dir, "a.nupkg", map[string]string{"a.nuspec": signalrNuspec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, dir, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
