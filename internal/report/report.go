// Package report renders a batch run as Markdown and as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// Sample is a before/after pair shown in the report.
type Sample struct {
	RelPath string
	Before  string
	After   string
}

// Markdown renders a summary of run. Samples, if any, are appended as
// highlighted code blocks.
func Markdown(run *history.Run, samples []Sample) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# pathfit run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- Root: `%s`\n", run.Root)
	fmt.Fprintf(&b, "- Frame: %s x %s at (%s, %s)\n",
		pathdata.FormatNumber(run.Frame.Width), pathdata.FormatNumber(run.Frame.Height),
		pathdata.FormatNumber(run.Frame.OffsetX), pathdata.FormatNumber(run.Frame.OffsetY))
	mode := "lenient"
	if run.Strict {
		mode = "strict"
	}
	fmt.Fprintf(&b, "- Mode: %s\n", mode)
	fmt.Fprintf(&b, "- Status: **%s**\n", run.Status)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	if run.FinishedAt != nil {
		fmt.Fprintf(&b, "- Duration: %s\n", run.FinishedAt.Sub(run.StartedAt))
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Total | Fitted | Cached | Failed |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n", run.Total, run.Fitted, run.Cached, run.Failed)

	if len(run.Files) > 0 {
		b.WriteString("## Files\n\n")
		b.WriteString("| File | Status | Paths |\n|---|---|---:|\n")
		for _, f := range run.Files {
			fmt.Fprintf(&b, "| `%s` | %s | %d |\n", f.RelPath, f.Status, f.Paths)
		}
		b.WriteString("\n")
	}

	var failures []history.FileResult
	for _, f := range run.Files {
		if f.Status == history.FileFailed {
			failures = append(failures, f)
		}
	}
	if len(failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.RelPath, escapeInline(f.Error))
		}
		b.WriteString("\n")
	}

	if len(samples) > 0 {
		b.WriteString("## Samples\n\n")
		for _, s := range samples {
			fmt.Fprintf(&b, "### %s\n\n", s.RelPath)
			fmt.Fprintf(&b, "```xml\n%s\n```\n\n", strings.TrimSpace(s.Before))
			fmt.Fprintf(&b, "```xml\n%s\n```\n\n", strings.TrimSpace(s.After))
		}
	}

	return b.Bytes()
}

// escapeInline keeps error text from breaking the surrounding Markdown.
func escapeInline(s string) string {
	return strings.NewReplacer("\n", " ", "|", "\\|", "`", "'").Replace(s)
}

// newMarkdown returns the goldmark converter used for reports.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// HTML renders Markdown(run, samples) into a standalone page.
func HTML(run *history.Run, samples []Sample) ([]byte, error) {
	var body bytes.Buffer
	if err := newMarkdown().Convert(Markdown(run, samples), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: "pathfit run " + run.ID,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return page.Bytes(), nil
}

// Write stores report.md and report.html for run under dir.
func Write(dir string, run *history.Run, samples []Sample) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), Markdown(run, samples), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	page, err := HTML(run, samples)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), page, 0o644); err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}
	return nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
    table { border-collapse: collapse; margin: 1rem 0; }
    th, td { border: 1px solid #d0d7de; padding: 4px 10px; }
    pre { padding: 12px; overflow-x: auto; border-radius: 6px; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 0.9em; }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>
`
