package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/walker"
)

func setupProject(t *testing.T) (root string, files []walker.FileInfo) {
	t.Helper()
	root = t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.svg", `<svg viewBox="0 0 10 10"><path d="M10 10"/></svg>`)
	write("nested/b.path", "M 5 5\n")
	write("bad.svg", `<svg><path d="M 0 0"/></svg>`)

	files, err := walker.Walk(walker.Options{Root: root})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	return root, files
}

func setupCache(t *testing.T) *cache.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return cache.NewStore(database)
}

func baseOptions(out string) Options {
	return Options{
		Frame:       pathdata.Frame{Width: 20, Height: 20},
		ViewBox:     pathdata.ViewBox{Width: 10, Height: 10},
		OutputDir:   out,
		Concurrency: 2,
	}
}

func statuses(res *Result) map[string]history.FileStatus {
	m := make(map[string]history.FileStatus)
	for _, f := range res.Files {
		m[f.RelPath] = f.Status
	}
	return m
}

func TestProcessFiles(t *testing.T) {
	_, files := setupProject(t)
	out := t.TempDir()
	store := setupCache(t)

	res := NewRunner(baseOptions(out), store, nil).ProcessFiles(context.Background(), files)

	want := []string{"a.svg", "bad.svg", "nested/b.path"}
	if len(res.Files) != len(want) {
		t.Fatalf("got %d results, want %d", len(res.Files), len(want))
	}
	for i, rel := range want {
		if res.Files[i].RelPath != rel {
			t.Errorf("Files[%d] = %q, want %q", i, res.Files[i].RelPath, rel)
		}
	}

	st := statuses(res)
	if st["a.svg"] != history.FileFitted || st["nested/b.path"] != history.FileFitted {
		t.Errorf("statuses = %v", st)
	}
	if st["bad.svg"] != history.FileFailed {
		t.Errorf("bad.svg status = %q, want failed", st["bad.svg"])
	}
	if !res.Failed() || len(res.Errors) != 1 {
		t.Errorf("Errors = %v", res.Errors)
	}
	if res.Files[0].Paths != 1 {
		t.Errorf("a.svg paths = %d, want 1", res.Files[0].Paths)
	}

	svg, err := os.ReadFile(filepath.Join(out, "a.svg"))
	if err != nil {
		t.Fatalf("reading fitted svg: %v", err)
	}
	if !strings.Contains(string(svg), `d="M 20 20"`) || !strings.Contains(string(svg), `viewBox="0 0 20 20"`) {
		t.Errorf("fitted svg = %s", svg)
	}
	d, err := os.ReadFile(filepath.Join(out, "nested", "b.path"))
	if err != nil {
		t.Fatalf("reading fitted path: %v", err)
	}
	if string(d) != "M 10 10\n" {
		t.Errorf("fitted path = %q", d)
	}
	if _, err := os.Stat(filepath.Join(out, "bad.svg")); !os.IsNotExist(err) {
		t.Error("failed file should not be written")
	}
}

func TestProcessFiles_CacheHits(t *testing.T) {
	_, files := setupProject(t)
	store := setupCache(t)
	runner := NewRunner(baseOptions(""), store, nil)

	runner.ProcessFiles(context.Background(), files)
	res := runner.ProcessFiles(context.Background(), files)

	st := statuses(res)
	if st["a.svg"] != history.FileCached || st["nested/b.path"] != history.FileCached {
		t.Errorf("second run statuses = %v", st)
	}
	if res.Files[0].Paths != 1 {
		t.Errorf("cached a.svg paths = %d, want 1", res.Files[0].Paths)
	}
}

func TestProcessFiles_NoCache(t *testing.T) {
	_, files := setupProject(t)
	runner := NewRunner(baseOptions(""), nil, nil)

	for i := 0; i < 2; i++ {
		res := runner.ProcessFiles(context.Background(), files)
		if st := statuses(res); st["a.svg"] != history.FileFitted {
			t.Errorf("run %d: a.svg status = %q", i, st["a.svg"])
		}
	}
}

func TestProcessFiles_PathDataNeedsViewBox(t *testing.T) {
	_, files := setupProject(t)
	opts := baseOptions("")
	opts.ViewBox = pathdata.ViewBox{}

	res := NewRunner(opts, nil, nil).ProcessFiles(context.Background(), files)

	found := false
	for _, err := range res.Errors {
		if errors.Is(err, ErrNoViewBox) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ErrNoViewBox among %v", res.Errors)
	}
}

func TestProcessFiles_Strict(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "broken.path")
	if err := os.WriteFile(p, []byte("M 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	files := []walker.FileInfo{{Path: p, RelPath: "broken.path", Kind: walker.KindPathData}}

	opts := baseOptions("")
	res := NewRunner(opts, nil, nil).ProcessFiles(context.Background(), files)
	if res.Failed() {
		t.Errorf("lenient run failed: %v", res.Errors)
	}

	opts.Strict = true
	res = NewRunner(opts, setupCache(t), nil).ProcessFiles(context.Background(), files)
	var cmdErr *pathdata.CommandError
	if len(res.Errors) != 1 || !errors.As(res.Errors[0], &cmdErr) {
		t.Errorf("strict errors = %v", res.Errors)
	}
}

func TestProcessFiles_Progress(t *testing.T) {
	_, files := setupProject(t)

	var (
		mu    sync.Mutex
		calls int
		max   int
	)
	onProgress := func(done, total int, fr history.FileResult) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if done > max {
			max = done
		}
		if total != len(files) {
			t.Errorf("total = %d, want %d", total, len(files))
		}
	}

	NewRunner(baseOptions(""), nil, onProgress).ProcessFiles(context.Background(), files)
	if calls != len(files) || max != len(files) {
		t.Errorf("progress calls = %d, max = %d, want %d", calls, max, len(files))
	}
}

func TestProcessFiles_Cancelled(t *testing.T) {
	_, files := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewRunner(baseOptions(""), nil, nil).ProcessFiles(ctx, files)
	if len(res.Files) != len(files) {
		t.Fatalf("got %d results, want %d", len(res.Files), len(files))
	}
	// Files that lose the race for a worker slot are recorded as failed.
	for _, f := range res.Files {
		if f.Status == history.FileFailed && f.Error == "" {
			t.Errorf("%s failed without an error", f.RelPath)
		}
	}
}

func TestProcessFiles_Empty(t *testing.T) {
	res := NewRunner(baseOptions(""), nil, nil).ProcessFiles(context.Background(), nil)
	if len(res.Files) != 0 || res.Failed() {
		t.Errorf("empty batch = %+v", res)
	}
}
