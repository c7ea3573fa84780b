// Package batch fits many discovered files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/svgdoc"
	"github.com/ziadkadry99/pathfit/internal/walker"
)

// ErrNoViewBox is returned for bare path data files when no source viewbox
// was configured.
var ErrNoViewBox = errors.New("batch: path data files need a source viewbox")

// ProgressFunc is called after each file, from worker goroutines.
type ProgressFunc func(done, total int, fr history.FileResult)

// Options controls a Runner.
type Options struct {
	Frame pathdata.Frame
	// ViewBox is the source space of bare path data files. SVG documents
	// use their own root viewBox.
	ViewBox     pathdata.ViewBox
	Strict      bool
	OutputDir   string // results mirror RelPath under this directory; empty skips writing
	Concurrency int
	// FailFast cancels outstanding work after the first failure.
	FailFast bool
}

// Runner fits files with bounded parallelism.
type Runner struct {
	opts       Options
	cache      *cache.Store
	onProgress ProgressFunc
}

// NewRunner creates a Runner. store may be nil to disable caching.
func NewRunner(opts Options, store *cache.Store, onProgress ProgressFunc) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{opts: opts, cache: store, onProgress: onProgress}
}

// Result holds the per-file outcomes of a batch, sorted by path, and the
// errors of the files that failed.
type Result struct {
	Files  []history.FileResult
	Errors []error
}

// Failed reports whether any file failed.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }

// ProcessFiles fits every file. Per-file failures are collected, not returned.
func (b *Runner) ProcessFiles(ctx context.Context, files []walker.FileInfo) *Result {
	total := len(files)
	result := &Result{}
	if total == 0 {
		return result
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, b.opts.Concurrency)
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed int64
	)

	record := func(fr history.FileResult, err error) {
		mu.Lock()
		if err != nil {
			fr.Status = history.FileFailed
			fr.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Errorf("fit %s: %w", fr.RelPath, err))
		}
		result.Files = append(result.Files, fr)
		mu.Unlock()

		if err != nil && b.opts.FailFast {
			cancel()
		}
		count := atomic.AddInt64(&processed, 1)
		if b.onProgress != nil {
			b.onProgress(int(count), total, fr)
		}
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			record(history.FileResult{RelPath: file.RelPath}, fmt.Errorf("skipped: %w", ctx.Err()))
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f walker.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()
			record(b.processFile(ctx, f))
		}(file)
	}

	wg.Wait()
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].RelPath < result.Files[j].RelPath
	})
	return result
}

func (b *Runner) processFile(ctx context.Context, f walker.FileInfo) (history.FileResult, error) {
	fr := history.FileResult{RelPath: f.RelPath, Status: history.FileFitted}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return fr, fmt.Errorf("read: %w", err)
	}

	var (
		out   []byte
		paths int
		hit   bool
	)
	switch f.Kind {
	case walker.KindSVG:
		out, paths, hit, err = b.fitDocument(ctx, content)
	case walker.KindPathData:
		out, hit, err = b.fitPathData(ctx, content)
		paths = 1
	default:
		err = fmt.Errorf("unsupported file kind %q", f.Kind)
	}
	if err != nil {
		return fr, err
	}
	fr.Paths = paths
	if hit {
		fr.Status = history.FileCached
	}

	if b.opts.OutputDir != "" {
		dst := filepath.Join(b.opts.OutputDir, filepath.FromSlash(f.RelPath))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fr, fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(dst, out, 0o644); err != nil {
			return fr, fmt.Errorf("write: %w", err)
		}
	}
	return fr, nil
}

func (b *Runner) fitDocument(ctx context.Context, content []byte) (out []byte, paths int, hit bool, err error) {
	var key string
	if b.cache != nil {
		key = cache.Key(cache.KindSVG, content, pathdata.ViewBox{}, b.opts.Frame, b.opts.Strict)
		cached, ok, err := b.cache.Get(ctx, key)
		if err != nil {
			return nil, 0, false, err
		}
		if ok {
			info, err := svgdoc.Inspect(content)
			if err != nil {
				return nil, 0, false, err
			}
			return cached, len(info.Paths), true, nil
		}
	}

	out, stats, err := svgdoc.Fit(content, b.opts.Frame, svgdoc.Options{Strict: b.opts.Strict})
	if err != nil {
		return nil, 0, false, err
	}
	if b.cache != nil {
		if err := b.cache.Put(ctx, key, cache.KindSVG, out); err != nil {
			return nil, 0, false, err
		}
	}
	return out, stats.Paths, false, nil
}

func (b *Runner) fitPathData(ctx context.Context, content []byte) (out []byte, hit bool, err error) {
	if !b.opts.ViewBox.Valid() {
		return nil, false, ErrNoViewBox
	}
	r := pathdata.NewRescaler(b.opts.ViewBox, b.opts.Frame)
	d := string(content)

	var s string
	switch {
	case b.cache != nil:
		s, hit, err = b.cache.RescalePath(ctx, r, d, b.opts.Strict)
	case b.opts.Strict:
		s, err = r.RescaleStrict(d)
	default:
		s = r.Rescale(d)
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(s + "\n"), hit, nil
}
