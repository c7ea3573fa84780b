package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/pathfit/internal/clippath"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/svgdoc"
)

// frameArgs reads the target frame parameters shared by the rescaling tools.
func frameArgs(request mcp.CallToolRequest) (pathdata.Frame, error) {
	w, err := request.RequireFloat("width")
	if err != nil {
		return pathdata.Frame{}, errors.New("missing required parameter: width")
	}
	h, err := request.RequireFloat("height")
	if err != nil {
		return pathdata.Frame{}, errors.New("missing required parameter: height")
	}
	if w <= 0 || h <= 0 {
		return pathdata.Frame{}, fmt.Errorf("width and height must be positive, got %v x %v", w, h)
	}
	return pathdata.Frame{
		Width:   w,
		Height:  h,
		OffsetX: request.GetFloat("offset_x", 0),
		OffsetY: request.GetFloat("offset_y", 0),
	}, nil
}

// handleRescalePath rescales a single path data string.
func (s *Server) handleRescalePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := request.RequireString("d")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: d"), nil
	}
	vbText, err := request.RequireString("view_box")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: view_box"), nil
	}
	vb, err := pathdata.ParseViewBox(vbText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid view_box: %v", err)), nil
	}
	frame, err := frameArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strict := request.GetBool("strict", false)

	r := pathdata.NewRescaler(vb, frame)
	if s.cache != nil {
		out, _, err := s.cache.RescalePath(ctx, r, d, strict)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rescale failed: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}

	if !strict {
		return mcp.NewToolResultText(r.Rescale(d)), nil
	}
	out, err := r.RescaleStrict(d)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rescale failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleFitSVG rewrites a whole SVG document into the target frame.
func (s *Server) handleFitSVG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := request.RequireString("svg")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: svg"), nil
	}
	frame, err := frameArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, stats, err := svgdoc.Fit([]byte(doc), frame, svgdoc.Options{Strict: request.GetBool("strict", false)})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fit failed: %v", err)), nil
	}
	log.Printf("mcp: fit_svg rewrote %d of %d paths", stats.Rewritten, stats.Paths)
	return mcp.NewToolResultText(string(out)), nil
}

// handleInspectSVG reports the sizing and path data of an SVG document as YAML.
func (s *Server) handleInspectSVG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := request.RequireString("svg")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: svg"), nil
	}
	info, err := svgdoc.Inspect([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	data, err := yaml.Marshal(info)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleProgressClipPath builds the clip path for a progress sweep.
func (s *Server) handleProgressClipPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	angle, err := request.RequireFloat("angle")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: angle"), nil
	}

	var sb strings.Builder
	sb.WriteString(clippath.Progress(angle))

	w := request.GetFloat("width", 0)
	h := request.GetFloat("height", 0)
	if w > 0 && h > 0 {
		sb.WriteString("\n")
		sb.WriteString(clippath.ProgressPath(angle, pathdata.Frame{Width: w, Height: h}))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
