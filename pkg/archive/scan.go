package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treedepth/pkg/cache"
	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/index"
	"github.com/matzehuels/treedepth/pkg/observability"
)

const cacheKeyType = "archive"

// Options configures [Scan].
type Options struct {
	// Parsers are tried in order for each file. Defaults to [DefaultParsers].
	Parsers []Parser
	// Cache stores parsed records between runs. Defaults to [cache.NullCache].
	Cache cache.Cache
	// Keyer derives cache keys. Defaults to [cache.DefaultKeyer].
	Keyer cache.Keyer
	// TTL for cached records. Defaults to [cache.DefaultTTL].
	TTL time.Duration
	// Workers bounds the number of archives parsed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int
	// Logger receives one line per broken archive.
	Logger func(msg string, args ...any)
}

func (o Options) withDefaults() Options {
	if len(o.Parsers) == 0 {
		o.Parsers = DefaultParsers()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.TTL <= 0 {
		o.TTL = cache.DefaultTTL
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	return o
}

// Failure is an archive that could not be read.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string { return "broken package: " + f.Name + ": " + f.Err.Error() }
func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of a [Scan].
type Result struct {
	// Records are in file-name order, one per readable archive.
	Records []index.Record
	// Failures are in file-name order.
	Failures []Failure
	// Archives is the number of files handled by some parser.
	Archives int
	// CacheHits counts records served from the cache.
	CacheHits int
}

type slot struct {
	record index.Record
	err    error
	hit    bool
}

type job struct {
	path   string
	parser Parser
	info   os.FileInfo
}

// Scan parses every supported archive directly inside dir. Subdirectories,
// hidden files and files no parser supports are ignored. Archives are parsed
// concurrently, but results keep the sorted file-name order so that
// de-duplication downstream is deterministic.
//
// Only a missing directory or a cancelled context make Scan fail; broken
// archives are collected in [Result.Failures].
func Scan(ctx context.Context, dir string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()
	observability.Analysis().OnScanStart(ctx, dir)

	res, err := scan(ctx, dir, opts)
	if res != nil {
		observability.Analysis().OnScanComplete(ctx, dir, res.Archives, len(res.Failures), time.Since(start), err)
	} else {
		observability.Analysis().OnScanComplete(ctx, dir, 0, 0, time.Since(start), err)
	}
	return res, err
}

func scan(ctx context.Context, dir string, opts Options) (*Result, error) {
	jobs, err := listArchives(dir, opts.Parsers)
	if err != nil {
		return nil, err
	}

	slots := make([]slot, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = parseCached(gctx, j, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Archives: len(jobs)}
	for i, s := range slots {
		name := filepath.Base(jobs[i].path)
		if s.err != nil {
			f := Failure{Name: name, Err: s.err}
			opts.Logger("broken package: %s: %v", name, s.err)
			res.Failures = append(res.Failures, f)
			continue
		}
		if s.hit {
			res.CacheHits++
		}
		res.Records = append(res.Records, s.record)
	}
	return res, nil
}

func listArchives(dir string, parsers []Parser) ([]job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "package directory %s", dir)
		}
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidPath, err, "read package directory %s", dir)
	}

	// ReadDir returns entries sorted by file name.
	var jobs []job
	for _, e := range entries {
		if e.IsDir() || pkgerrors.ValidateArchiveName(e.Name()) != nil {
			continue
		}
		p := Detect(e.Name(), parsers...)
		if p == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		jobs = append(jobs, job{path: filepath.Join(dir, e.Name()), parser: p, info: info})
	}
	return jobs, nil
}

// parseCached parses one archive, consulting the cache first. Cache failures
// degrade to a plain parse.
func parseCached(ctx context.Context, j job, opts Options) slot {
	key := opts.Keyer.ArchiveKey(j.parser.Type(), j.path, j.info.Size(), j.info.ModTime())

	if data, ok, err := opts.Cache.Get(ctx, key); err == nil && ok {
		var rec index.Record
		if json.Unmarshal(data, &rec) == nil {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return slot{record: rec, hit: true}
		}
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	rec, err := j.parser.Parse(j.path)
	if err != nil {
		return slot{err: err}
	}
	if data, err := json.Marshal(rec); err == nil {
		if opts.Cache.Set(ctx, key, data, opts.TTL) == nil {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return slot{record: rec}
}
