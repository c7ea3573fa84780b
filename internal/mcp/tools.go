package mcp

import "github.com/mark3labs/mcp-go/mcp"

// frameOptions are the target frame parameters shared by the rescaling tools.
var frameOptions = []mcp.ToolOption{
	mcp.WithNumber("width",
		mcp.Required(),
		mcp.Description("Target frame width in pixels"),
	),
	mcp.WithNumber("height",
		mcp.Required(),
		mcp.Description("Target frame height in pixels"),
	),
	mcp.WithNumber("offset_x",
		mcp.Description("Horizontal offset added to absolute coordinates (default 0)"),
	),
	mcp.WithNumber("offset_y",
		mcp.Description("Vertical offset added to absolute coordinates (default 0)"),
	),
	mcp.WithBoolean("strict",
		mcp.Description("Fail on malformed input instead of copying it through (default false)"),
	),
}

func withFrame(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, frameOptions...)
}

// rescalePathTool defines the rescale_path MCP tool.
var rescalePathTool = mcp.NewTool("rescale_path", withFrame(
	mcp.WithDescription("Rescale SVG path data from its source viewBox into a target pixel frame. Relative commands are scaled without offset; arc flags and rotation are kept."),
	mcp.WithString("d",
		mcp.Required(),
		mcp.Description("SVG path data, e.g. \"M 0 0 L 24 24\""),
	),
	mcp.WithString("view_box",
		mcp.Required(),
		mcp.Description("Source viewBox as \"minX minY width height\""),
	),
)...)

// fitSVGTool defines the fit_svg MCP tool.
var fitSVGTool = mcp.NewTool("fit_svg", withFrame(
	mcp.WithDescription("Fit a whole SVG document into a target pixel frame: every <path d> is rescaled and the root viewBox, width and height are updated."),
	mcp.WithString("svg",
		mcp.Required(),
		mcp.Description("The SVG document source"),
	),
)...)

// inspectSVGTool defines the inspect_svg MCP tool.
var inspectSVGTool = mcp.NewTool("inspect_svg",
	mcp.WithDescription("Report the root viewBox, declared size and path data of an SVG document."),
	mcp.WithString("svg",
		mcp.Required(),
		mcp.Description("The SVG document source"),
	),
)

// progressClipPathTool defines the progress_clip_path MCP tool.
var progressClipPathTool = mcp.NewTool("progress_clip_path",
	mcp.WithDescription("Build a CSS polygon() clip path for a circular progress indicator swept clockwise by the given angle. With width and height, also returns the polygon as SVG path data in that frame."),
	mcp.WithNumber("angle",
		mcp.Required(),
		mcp.Description("Sweep in degrees, clamped to 0-360"),
	),
	mcp.WithNumber("width",
		mcp.Description("Optional frame width for SVG path output"),
	),
	mcp.WithNumber("height",
		mcp.Description("Optional frame height for SVG path output"),
	),
)
