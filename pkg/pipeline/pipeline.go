// Package pipeline runs a complete depth analysis: scan the archive directory
// (or load a TOML index), build the de-duplicated index, unroll the tree,
// select the deepest nodes, and assemble a report.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Dir: "/srv/nuget"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Report.WriteText(os.Stdout)
//
// Stages can also be run on their own with [Runner.LoadIndex] and [Analyze].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/index"
	"github.com/matzehuels/treedepth/pkg/report"
	"github.com/matzehuels/treedepth/pkg/tree"
)

// Options configures one run. Exactly one of Dir and IndexFile is set.
type Options struct {
	// Dir is a directory of package archives.
	Dir string `json:"dir,omitempty"`
	// IndexFile is a TOML index as written by `treedepth index`.
	IndexFile string `json:"index_file,omitempty"`

	// Workers bounds concurrent archive parsing. Zero means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
	// Refresh ignores cached archive records and re-parses every file.
	Refresh bool `json:"refresh,omitempty"`
	// StrictIDs validates identifiers with the NuGet id rules instead of the
	// generic package name rules.
	StrictIDs bool `json:"strict_ids,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Validate checks that exactly one input is configured.
func (o *Options) Validate() error {
	switch {
	case o.Dir == "" && o.IndexFile == "":
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "a package directory or an index file is required")
	case o.Dir != "" && o.IndexFile != "":
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "package directory and index file are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Source describes the configured input for display.
func (o Options) Source() string {
	if o.IndexFile != "" {
		return o.IndexFile
	}
	return o.Dir
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Index    *index.Index
	Tree     *tree.Tree
	Analysis *tree.Analysis // nil when the tree is empty
	Report   *report.Report
	Stats    Stats
}

// Stats contains run statistics.
type Stats struct {
	Archives  int
	Broken    int
	CacheHits int
	Packages  int
	Leaves    int
	Nodes     int
	MaxDepth  int
	Missing   int
	Cycles    int

	ScanTime    time.Duration
	BuildTime   time.Duration
	AnalyzeTime time.Duration
}
