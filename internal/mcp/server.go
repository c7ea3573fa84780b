package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/pathfit/internal/cache"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the rescaler as tools.
type Server struct {
	cache *cache.Store
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server. store may be nil to disable caching.
func NewServer(store *cache.Store) *Server {
	s := &Server{cache: store}

	s.mcp = server.NewMCPServer(
		"pathfit",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(rescalePathTool, s.handleRescalePath)
	s.mcp.AddTool(fitSVGTool, s.handleFitSVG)
	s.mcp.AddTool(inspectSVGTool, s.handleInspectSVG)
	s.mcp.AddTool(progressClipPathTool, s.handleProgressClipPath)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
