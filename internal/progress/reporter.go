// Package progress reports how far a batch fit has got.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives one Update per finished file. Updates come from worker
// goroutines, so done counts may arrive out of order.
type Reporter interface {
	Start(total int)
	Update(done int, relPath string, failed bool)
	Finish()
}

// NewReporter returns a Silent reporter if quiet is requested, a CIReporter
// if a CI environment variable is set, and a TerminalReporter otherwise.
func NewReporter(quiet bool) Reporter {
	if quiet {
		return Silent{}
	}
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws a progress bar on stderr.
type TerminalReporter struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	done   int
	failed int
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Fitting paths"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(done int, relPath string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	r.done = max(r.done, done)
	if failed {
		r.failed++
	}
	desc := relPath
	if r.failed > 0 {
		desc = fmt.Sprintf("%s (%d failed)", relPath, r.failed)
	}
	r.bar.Describe(desc)
	_ = r.bar.Set(r.done)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints one line per file, suitable for CI logs.
type CIReporter struct {
	Out io.Writer

	mu     sync.Mutex
	total  int
	failed int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.Out, "Fitting %d files\n", total)
}

func (r *CIReporter) Update(done int, relPath string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if failed {
		r.failed++
		fmt.Fprintf(r.Out, "[%d/%d] %s: failed\n", done, r.total, relPath)
		return
	}
	fmt.Fprintf(r.Out, "[%d/%d] %s\n", done, r.total, relPath)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.Out, "Fitting complete: %d of %d files failed\n", r.failed, r.total)
}

// Silent discards all progress.
type Silent struct{}

func (Silent) Start(int)                {}
func (Silent) Update(int, string, bool) {}
func (Silent) Finish()                  {}
