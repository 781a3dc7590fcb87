package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treedepth/pkg/archive"
	"github.com/matzehuels/treedepth/pkg/cache"
	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/index"
	"github.com/matzehuels/treedepth/pkg/observability"
	"github.com/matzehuels/treedepth/pkg/report"
	"github.com/matzehuels/treedepth/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// results. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete index → build → analyze → report pipeline.
// An empty tree is not an error: the result carries a "no data" report and a
// nil Analysis.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{}

	// Stage 1: Index
	scanStart := time.Now()
	idx, scanned, err := r.LoadIndex(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	result.Index = idx
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.Packages = idx.Len()
	result.Stats.Leaves = idx.LeafCount()
	var broken []string
	if scanned != nil {
		result.Stats.Archives = scanned.Archives
		result.Stats.Broken = len(scanned.Failures)
		result.Stats.CacheHits = scanned.CacheHits
		for _, f := range scanned.Failures {
			broken = append(broken, f.Name)
		}
	}

	logger.Info("indexed packages",
		"packages", idx.Len(),
		"without_dependencies", result.Stats.Leaves,
		"broken", result.Stats.Broken,
		"duration", result.Stats.ScanTime)

	// Stage 2: Build
	buildStart := time.Now()
	t := Build(ctx, idx, logger)
	result.Tree = t
	result.Stats.BuildTime = time.Since(buildStart)
	st := t.Stats()
	result.Stats.Nodes = st.Nodes
	result.Stats.MaxDepth = st.MaxDepth
	result.Stats.Missing = st.Missing
	result.Stats.Cycles = st.Cycles

	logger.Info("built tree",
		"nodes", st.Nodes,
		"missing", st.Missing,
		"cycles", st.Cycles,
		"duration", result.Stats.BuildTime)

	// Stage 3: Analyze
	analyzeStart := time.Now()
	a, err := Analyze(ctx, t)
	if err != nil && !errors.Is(err, tree.ErrNoData) {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Analysis = a
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	if a == nil {
		logger.Warn("no data: no package declares a dependency")
	} else {
		logger.Info("analyzed depth",
			"max_depth", a.MaxDepth,
			"deepest", len(a.Deepest),
			"duration", result.Stats.AnalyzeTime)
	}

	result.Report = report.New(t, a, report.Options{
		Source:   opts.Source(),
		Packages: idx.Len(),
		Leaves:   result.Stats.Leaves,
		Archives: result.Stats.Archives,
		Broken:   broken,
	})
	return result, nil
}

// LoadIndex builds the dependency index from the configured input. The scan
// result is nil when the input is an index file.
func (r *Runner) LoadIndex(ctx context.Context, opts Options) (*index.Index, *archive.Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	logger := opts.Logger
	idxOpts := index.Options{Logger: logger.Warnf}
	if opts.StrictIDs {
		idxOpts.Validate = func(id string) error { return pkgerrors.ValidateNuGetID(id) }
	}

	if opts.IndexFile != "" {
		idx, err := index.Load(opts.IndexFile, idxOpts)
		return idx, nil, err
	}

	c := r.Cache
	if opts.Refresh {
		c = writeOnly{c}
	}
	scanned, err := archive.Scan(ctx, opts.Dir, archive.Options{
		Cache:   c,
		Keyer:   r.Keyer,
		Workers: opts.Workers,
		Logger:  logger.Warnf,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("scanned archives",
		"archives", scanned.Archives,
		"cache_hits", scanned.CacheHits)
	return index.New(scanned.Records, idxOpts), scanned, nil
}

// Build unrolls the dependency tree of idx, logging diagnostics to logger.
func Build(ctx context.Context, idx *index.Index, logger *log.Logger) *tree.Tree {
	top := idx.TopLevel()
	start := time.Now()
	observability.Analysis().OnBuildStart(ctx, len(top))
	t := tree.Build(idx, top, logObserver{logger: logger})
	observability.Analysis().OnBuildComplete(ctx, t.Len(), t.MaxDepth(), time.Since(start))
	return t
}

// Analyze selects the deepest nodes of t. It returns [tree.ErrNoData] for an
// empty tree.
func Analyze(ctx context.Context, t *tree.Tree) (*tree.Analysis, error) {
	a, err := t.Analyze()
	if err != nil {
		observability.Analysis().OnAnalyzeComplete(ctx, 0, 0, err)
		return nil, err
	}
	observability.Analysis().OnAnalyzeComplete(ctx, a.MaxDepth, len(a.Deepest), nil)
	return a, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// writeOnly hides cached entries so every archive is parsed again, while
// still storing the fresh records.
type writeOnly struct{ cache.Cache }

func (writeOnly) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
