package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treedepth/pkg/cache"
	pkgerrors "github.com/matzehuels/treedepth/pkg/errors"
	"github.com/matzehuels/treedepth/pkg/observability"
)

func writeIndex(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "index.toml")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func quietRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewRunner(nil, nil, logger), &buf
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"dir", Options{Dir: "/feed"}, false},
		{"index", Options{IndexFile: "index.toml"}, false},
		{"neither", Options{}, true},
		{"both", Options{Dir: "/feed", IndexFile: "index.toml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidInput) {
				t.Errorf("Validate() error code = %s, want INVALID_INPUT", pkgerrors.GetCode(err))
			}
		})
	}
}

func TestExecute_IndexFile(t *testing.T) {
	path := writeIndex(t, `
[packages]
"X" = ["Y"]
"Y" = ["Z", "GHOST"]
"Z" = []
"A" = ["B"]
"B" = ["A"]
`)
	r, logs := quietRunner(t)

	res, err := r.Execute(context.Background(), Options{IndexFile: path})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.Packages != 5 || res.Stats.Leaves != 1 {
		t.Errorf("Packages = %d, Leaves = %d; want 5, 1", res.Stats.Packages, res.Stats.Leaves)
	}
	if res.Stats.MaxDepth != 3 || res.Stats.Missing != 2 || res.Stats.Cycles != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := res.Report.DeepestIDs(); len(got) != 1 || got[0] != "Z" {
		t.Errorf("DeepestIDs() = %v, want [Z]", got)
	}
	if res.Report.Source != path {
		t.Errorf("Report.Source = %q, want %q", res.Report.Source, path)
	}

	out := logs.String()
	for _, want := range []string{"referenced package not found", "circular reference", "dive"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestExecute_NoData(t *testing.T) {
	path := writeIndex(t, "[packages]\nA = []\nB = []\n")
	r, _ := quietRunner(t)

	res, err := r.Execute(context.Background(), Options{IndexFile: path})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Analysis != nil || !res.Report.NoData {
		t.Error("an index without dependencies should produce a no-data report")
	}
	if res.Stats.Leaves != 2 {
		t.Errorf("Leaves = %d, want 2", res.Stats.Leaves)
	}
}

func TestExecute_EmptyDirectory(t *testing.T) {
	r, _ := quietRunner(t)
	res, err := r.Execute(context.Background(), Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Report.NoData || res.Stats.Archives != 0 {
		t.Errorf("got %+v", res.Stats)
	}
}

func TestExecute_MissingInput(t *testing.T) {
	r, _ := quietRunner(t)
	_, err := r.Execute(context.Background(), Options{IndexFile: filepath.Join(t.TempDir(), "nope.toml")})
	if !pkgerrors.Is(err, pkgerrors.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

type countingHooks struct {
	observability.NoopAnalysisHooks
	builds, analyses int
}

func (h *countingHooks) OnBuildComplete(context.Context, int, int, time.Duration) { h.builds++ }
func (h *countingHooks) OnAnalyzeComplete(context.Context, int, int, error)       { h.analyses++ }

func TestExecute_Hooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetAnalysisHooks(hooks)
	defer observability.Reset()

	path := writeIndex(t, "[packages]\nA = [\"B\"]\nB = []\n")
	r, _ := quietRunner(t)
	if _, err := r.Execute(context.Background(), Options{IndexFile: path}); err != nil {
		t.Fatal(err)
	}
	if hooks.builds != 1 || hooks.analyses != 1 {
		t.Errorf("builds = %d, analyses = %d; want 1, 1", hooks.builds, hooks.analyses)
	}
}

func TestWriteOnlyCache(t *testing.T) {
	mem, err := cache.NewMemoryCache(4)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	c := writeOnly{mem}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("writeOnly.Get should always miss")
	}
	if _, hit, _ := mem.Get(ctx, "k"); !hit {
		t.Error("writeOnly.Set should reach the underlying cache")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Error("NewRunner should fill in defaults")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
