// Package mcp provides an MCP (Model Context Protocol) server that exposes
// memory reconstruction as a tool.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/rsum/pkg/pipeline"
	"github.com/papercomputeco/rsum/pkg/runner"
	"github.com/papercomputeco/rsum/pkg/utils"
)

type Config struct {
	// Executors maps each supported variant to the pipeline that runs it.
	Executors map[pipeline.Variant]runner.Executor

	// DefaultVariant is used when a call names no variant.
	DefaultVariant pipeline.Variant

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the reconstruct_memory tool.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rsum",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if len(c.Executors) == 0 {
			return nil, errors.New("executor is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}
		if s.config.DefaultVariant == "" {
			s.config.DefaultVariant = pipeline.VariantCoVe
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        reconstructToolName,
			Description: reconstructDescription,
		}, s.handleReconstruct)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
