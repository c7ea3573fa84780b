package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/db"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", result.Content[0])
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
		required []string
	}{
		{"rescale_path", rescalePathTool, "rescale_path", []string{"d", "view_box", "width", "height"}},
		{"fit_svg", fitSVGTool, "fit_svg", []string{"svg", "width", "height"}},
		{"inspect_svg", inspectSVGTool, "inspect_svg", []string{"svg"}},
		{"progress_clip_path", progressClipPathTool, "progress_clip_path", []string{"angle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description is empty")
			}
			required := map[string]bool{}
			for _, r := range tt.tool.InputSchema.Required {
				required[r] = true
			}
			for _, r := range tt.required {
				if !required[r] {
					t.Errorf("parameter %q is not required", r)
				}
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(nil)
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server is nil")
	}
}

func TestHandleRescalePath(t *testing.T) {
	srv := NewServer(nil)
	ctx := context.Background()

	t.Run("rescales into the frame", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"d":        "M 0 0 L 24 24 l -12 0",
			"view_box": "0 0 24 24",
			"width":    48.0,
			"height":   48.0,
			"offset_x": 10.0,
		}
		result, err := srv.handleRescalePath(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if got, want := resultText(t, result), "M 10 0 L 58 48 l -24 0"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("missing d", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"view_box": "0 0 1 1", "width": 1.0, "height": 1.0}
		result, _ := srv.handleRescalePath(ctx, req)
		if !result.IsError {
			t.Error("expected error result for missing d")
		}
	})

	t.Run("bad view_box", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"d": "M 0 0", "view_box": "0 0 x", "width": 1.0, "height": 1.0}
		result, _ := srv.handleRescalePath(ctx, req)
		if !result.IsError {
			t.Error("expected error result for malformed view_box")
		}
	})

	t.Run("non-positive frame", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"d": "M 0 0", "view_box": "0 0 1 1", "width": 0.0, "height": 1.0}
		result, _ := srv.handleRescalePath(ctx, req)
		if !result.IsError {
			t.Error("expected error result for zero width")
		}
	})

	t.Run("strict reports malformed data", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"d": "M 1", "view_box": "0 0 1 1", "width": 2.0, "height": 2.0, "strict": true,
		}
		result, _ := srv.handleRescalePath(ctx, req)
		if !result.IsError {
			t.Error("expected error result in strict mode")
		}
	})
}

func TestHandleRescalePath_Cached(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()
	store := cache.NewStore(database)
	srv := NewServer(store)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"d": "M 1 1 H 2", "view_box": "0 0 2 2", "width": 4.0, "height": 4.0,
	}
	for i := 0; i < 2; i++ {
		result, err := srv.handleRescalePath(ctx, req)
		if err != nil || result.IsError {
			t.Fatalf("call %d failed: %v %v", i, err, result.Content)
		}
		if got := resultText(t, result); got != "M 2 2 H 4" {
			t.Errorf("call %d = %q", i, got)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Hits != 1 {
		t.Errorf("stats = %+v, want 1 entry with 1 hit", stats)
	}
}

func TestHandleFitSVG(t *testing.T) {
	srv := NewServer(nil)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"svg":    `<svg viewBox="0 0 10 10"><path d="M 5 5"/></svg>`,
		"width":  20.0,
		"height": 20.0,
	}
	result, err := srv.handleFitSVG(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	want := `<svg viewBox="0 0 20 20" width="20" height="20"><path d="M 10 10"/></svg>`
	if got := resultText(t, result); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	req.Params.Arguments = map[string]any{"svg": "<html/>", "width": 20.0, "height": 20.0}
	result, _ = srv.handleFitSVG(ctx, req)
	if !result.IsError {
		t.Error("expected error result for non-SVG input")
	}
}

func TestHandleInspectSVG(t *testing.T) {
	srv := NewServer(nil)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"svg": `<svg viewBox="0 0 24 24"><path d="M 1 2"/><rect/></svg>`,
	}
	result, err := srv.handleInspectSVG(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	for _, want := range []string{"width: 24", "- M 1 2", "shapes: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("inspect output missing %q:\n%s", want, text)
		}
	}
}

func TestHandleProgressClipPath(t *testing.T) {
	srv := NewServer(nil)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"angle": 90.0}
	result, err := srv.handleProgressClipPath(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := resultText(t, result), "polygon(100% 0%, 100% 50%, 100% 100%, 100% 100%, 50% 50%)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	req.Params.Arguments = map[string]any{"angle": 90.0, "width": 200.0, "height": 200.0}
	result, _ = srv.handleProgressClipPath(ctx, req)
	lines := strings.Split(resultText(t, result), "\n")
	if len(lines) != 2 || lines[1] != "M 200 0 L 200 100 L 200 200 L 200 200 L 100 100 Z" {
		t.Errorf("unexpected output: %q", lines)
	}

	req.Params.Arguments = map[string]any{}
	result, _ = srv.handleProgressClipPath(ctx, req)
	if !result.IsError {
		t.Error("expected error result for missing angle")
	}
}
