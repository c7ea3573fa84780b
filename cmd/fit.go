package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/batch"
	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/config"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/progress"
	"github.com/ziadkadry99/pathfit/internal/report"
	"github.com/ziadkadry99/pathfit/internal/svgdoc"
	"github.com/ziadkadry99/pathfit/internal/walker"
)

// maxReportSamples bounds the before/after pairs included in a run report.
const maxReportSamples = 3

var fitCmd = &cobra.Command{
	Use:   "fit [file-or-dir]",
	Short: "Fit SVG documents and path data files into the target frame",
	Long: `With a file argument, fits that single SVG document (or .path/.d file) and
prints the result, or writes it to --output.

With a directory argument, or none, walks the tree for matching files, fits
them in parallel into output_dir, records the run in the history database and
writes a Markdown and HTML report next to the results.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFit,
}

func init() {
	addFrameFlags(fitCmd)
	fitCmd.Flags().String("view-box", "", "source viewBox of bare path data files (overrides config)")
	fitCmd.Flags().StringP("output", "o", "", "output file (single file) or directory (tree)")
	fitCmd.Flags().Int("concurrency", 0, "max files fitted in parallel (overrides config)")
	fitCmd.Flags().Bool("fail-fast", false, "stop after the first failing file")
	fitCmd.Flags().Bool("no-cache", false, "do not use or record the rescale cache and run history")
	fitCmd.Flags().Bool("no-report", false, "do not write report.md and report.html")
	fitCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFrameFlags(cmd, cfg); err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		cfg.MaxConcurrency = n
	}
	output, _ := cmd.Flags().GetString("output")

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	stat, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("reading %s: %w", target, err)
	}
	if !stat.IsDir() {
		return fitSingle(cmd, cfg, target, output)
	}

	if output != "" {
		cfg.OutputDir = output
	}
	return fitTree(cmd, cfg, target)
}

// fitSingle fits one file and writes it to output, or stdout when output is empty.
func fitSingle(cmd *cobra.Command, cfg *config.Config, path, output string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var out []byte
	switch walker.DetectKind(path) {
	case walker.KindPathData:
		vb, err := cfg.SourceViewBox()
		if err != nil {
			return err
		}
		if !vb.Valid() {
			return batch.ErrNoViewBox
		}
		r := pathdata.NewRescaler(vb, cfg.Frame())
		d := string(content)
		if cfg.Strict {
			if d, err = r.RescaleStrict(d); err != nil {
				return fmt.Errorf("fitting %s: %w", path, err)
			}
		} else {
			d = r.Rescale(d)
		}
		out = []byte(d + "\n")
	default:
		var stats *svgdoc.Stats
		out, stats, err = svgdoc.Fit(content, cfg.Frame(), svgdoc.Options{Strict: cfg.Strict})
		if err != nil {
			return fmt.Errorf("fitting %s: %w", path, err)
		}
		if verbose {
			cmd.PrintErrf("Rewrote %d of %d paths, %d shapes left unchanged\n",
				stats.Rewritten, stats.Paths, stats.Unsupported)
		}
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// fitTree fits every matching file under root into cfg.OutputDir.
func fitTree(cmd *cobra.Command, cfg *config.Config, root string) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	vb, err := cfg.SourceViewBox()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning files in %s...\n", root)
	}
	files, err := walker.Walk(walker.Options{
		Root:    root,
		Include: cfg.Include,
		Exclude: append(append([]string{}, cfg.Exclude...), outputExcludes(root, cfg.OutputDir)...),
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Found %d files to fit\n", len(files))
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No files found to fit.")
		return nil
	}

	var (
		store *cache.Store
		runs  *history.Store
	)
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		database, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store = cache.NewStore(database)
		runs = history.NewStore(database)
	}

	absRoot, _ := filepath.Abs(root)
	var run *history.Run
	if runs != nil {
		if run, err = runs.Start(ctx, absRoot, cfg.Frame(), cfg.Strict, len(files)); err != nil {
			return err
		}
	} else {
		run = &history.Run{
			ID:        uuid.New().String(),
			Root:      absRoot,
			Frame:     cfg.Frame(),
			Strict:    cfg.Strict,
			Status:    history.StatusRunning,
			Total:     len(files),
			StartedAt: start.UTC().Truncate(time.Second),
		}
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	reporter := progress.NewReporter(quiet)
	reporter.Start(len(files))

	failFast, _ := cmd.Flags().GetBool("fail-fast")
	runner := batch.NewRunner(batch.Options{
		Frame:       cfg.Frame(),
		ViewBox:     vb,
		Strict:      cfg.Strict,
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.MaxConcurrency,
		FailFast:    failFast,
	}, store, func(done, total int, fr history.FileResult) {
		reporter.Update(done, fr.RelPath, fr.Status == history.FileFailed)
	})
	result := runner.ProcessFiles(ctx, files)
	reporter.Finish()

	if runs != nil {
		if err := runs.Finish(ctx, run.ID, result.Files); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		if stored, err := runs.Get(ctx, run.ID); err == nil {
			run = stored
		} else {
			run.Complete(result.Files, time.Now().UTC())
		}
	} else {
		run.Complete(result.Files, time.Now().UTC())
	}

	if noReport, _ := cmd.Flags().GetBool("no-report"); !noReport {
		samples := collectSamples(files, result.Files, cfg.OutputDir)
		if err := report.Write(cfg.OutputDir, run, samples); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write report: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", filepath.Join(cfg.OutputDir, "report.html"))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d fitted, %d cached, %d failed in %s\n",
		run.ID, run.Fitted, run.Cached, run.Failed, time.Since(start).Round(time.Millisecond))

	if result.Failed() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		return fmt.Errorf("%d of %d files failed", len(result.Errors), len(files))
	}
	return nil
}

// outputExcludes keeps a run from fitting its own results when the output
// directory lies inside the walked tree.
func outputExcludes(root, outputDir string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel) + "/**"}
}

// collectSamples pairs the source and output of the first few successful files.
func collectSamples(files []walker.FileInfo, results []history.FileResult, outputDir string) []report.Sample {
	src := make(map[string]string, len(files))
	for _, f := range files {
		src[f.RelPath] = f.Path
	}

	var samples []report.Sample
	for _, r := range results {
		if len(samples) == maxReportSamples {
			break
		}
		if r.Status == history.FileFailed {
			continue
		}
		before, err := os.ReadFile(src[r.RelPath])
		if err != nil {
			continue
		}
		after, err := os.ReadFile(filepath.Join(outputDir, filepath.FromSlash(r.RelPath)))
		if err != nil {
			continue
		}
		samples = append(samples, report.Sample{
			RelPath: r.RelPath,
			Before:  string(before),
			After:   string(after),
		})
	}
	return samples
}
