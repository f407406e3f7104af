package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/rsum/api/mcp"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/runner"
)

// Runs is the run queue the API submits to. *runner.Pool satisfies it.
type Runs interface {
	Submit(job runner.Job) (runner.Run, error)
	Get(id string) (runner.Run, error)
}

// Server is the API server for submitting and inspecting runs.
type Server struct {
	config  Config
	runs    Runs
	metrics *metrics.Metrics
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server. The MCP server and metrics are
// optional; their routes are only mounted when provided.
func NewServer(config Config, runs Runs, mcpServer *mcp.Server, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if runs == nil {
		return nil, errors.New("run queue is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		runs:    runs,
		metrics: m,
		logger:  logger,
		app:     app,
	}

	app.Use(s.countRequests)

	app.Get("/ping", s.handlePing)
	app.Post("/v1/runs", s.handleSubmitRun)
	app.Get("/v1/runs/:id", s.handleGetRun)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}
	if mcpServer != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// countRequests records every request by matched route and status code.
func (s *Server) countRequests(c *fiber.Ctx) error {
	err := c.Next()
	if s.metrics == nil {
		return err
	}

	code := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	s.metrics.HTTPRequests.WithLabelValues(c.Route().Path, strconv.Itoa(code)).Inc()
	return err
}
