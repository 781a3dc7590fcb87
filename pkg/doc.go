// Package pkg provides the core libraries for treedepth, a dependency depth
// analyzer for NuGet package collections.
//
// # Overview
//
// treedepth reads every package archive in a directory, expands each package
// that declares dependencies into a tree, and reports the deepest level found
// together with the ancestor chain of every package at that level. The pkg
// directory is organized as follows:
//
//  1. [archive] - Read package metadata from .nupkg and npm .tgz archives
//  2. [index] - The de-duplicated id to dependencies registry
//  3. [tree] - Tree expansion with ancestor-chain cycle cutting, plus depth analysis
//  4. [report] - Text, JSON, DOT and SVG output
//  5. [pipeline] - Orchestration (scan → index → build → analyze → report)
//  6. [cache] - Archive record caching (file, memory, Redis)
//
// # Architecture
//
//	Package directory (*.nupkg, *.tgz)  or  index.toml
//	         ↓
//	    [archive] package (concurrent scan, cached per file)
//	         ↓
//	    [index] package (first record per id wins)
//	         ↓
//	    [tree] package (Build + Analyze)
//	         ↓
//	    [report] package (text/json/dot/svg)
//
// # Quick Start
//
//	idx := index.FromMap(map[string][]string{
//	    "X": {"Y"},
//	    "Y": {"Z"},
//	    "Z": nil,
//	})
//	t := tree.Build(idx, idx.TopLevel(), nil)
//	a, _ := t.Analyze()
//	fmt.Println(a.MaxDepth, a.IDs()) // 3 [Z]
//
// # Supporting Packages
//
//   - [errors] - Coded errors and input validation
//   - [observability] - Hooks for scan, build and cache events
//   - [buildinfo] - Version information injected at build time
package pkg
