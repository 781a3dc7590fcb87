// Package archive reads package metadata out of archive files on disk.
//
// Each supported format has a [Parser] that turns one file into an
// [index.Record]: the package identifier, its version, and the identifiers of
// its direct dependencies. [Scan] applies the parsers to every file in a
// directory and collects the records for [index.New].
//
// # Formats
//
//   - [Nuspec]: NuGet .nupkg files (zip archives with a .nuspec manifest)
//   - [NPM]: npm .tgz tarballs (package/package.json)
//
// Version constraints on dependencies are read but discarded; only the
// identifiers matter to the tree builder.
//
// # Failures
//
// A file that cannot be opened or whose manifest is malformed is reported as
// a [Failure] and skipped. It never aborts a scan.
package archive
