// Package servecmder provides the serve command, which runs the rsum HTTP API
// with its MCP endpoint and Prometheus metrics.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rsum/api"
	"github.com/papercomputeco/rsum/api/mcp"
	"github.com/papercomputeco/rsum/pkg/cliui"
	"github.com/papercomputeco/rsum/pkg/config"
	"github.com/papercomputeco/rsum/pkg/engine"
	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/runner"
)

type serveCommander struct {
	cfg   *config.Config
	debug bool

	// client replaces the configured provider in tests.
	client llm.Client
}

const serveLongDesc string = `Run the rsum API server.

The server accepts datasets over HTTP, queues them on a worker pool, and
runs the memory pipeline in the background:
  POST /v1/runs        Queue a run; returns its id
  GET  /v1/runs/:id    Run status and, once finished, the result
  GET  /metrics        Prometheus metrics
  GET  /ping           Health check
  /mcp                 MCP endpoint with the reconstruct_memory tool

Both pipeline variants are served; --variant picks the default for requests
that name none.

Examples:
  rsum serve
  rsum serve --listen :9000 --workers 4
  rsum serve --provider openai --model gpt-4o-mini --eventstream kafka --kafka-brokers localhost:9092`

const serveShortDesc string = "Run the rsum API server"

// serveFlags are the registry keys the serve command exposes.
var serveFlags = append(append([]string{
	config.FlagListen,
	config.FlagWorkers,
	config.FlagQueueSize,
	config.FlagLogJSON,
}, config.ModelFlags...), config.PipelineFlags...)

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.RsumFlags, serveFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd.ErrOrStderr())
		},
	}

	config.AddRegisteredFlags(cmd, config.RsumFlags, serveFlags)

	return cmd
}

func (c *serveCommander) run(ctx context.Context, stderr io.Writer) error {
	l := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.cfg.Log.JSON && cliui.IsTerminal(stderr)),
		logger.WithJSON(c.cfg.Log.JSON),
		logger.WithWriter(stderr),
	)

	m := metrics.New()
	e, err := engine.New(&engine.Config{
		Settings: c.cfg,
		Client:   c.client,
		Metrics:  m,
		Logger:   l,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			l.Warn("closing event publisher", "error", err)
		}
	}()

	pool, err := runner.NewPool(&runner.Config{
		Executors:      e.Executors(),
		DefaultVariant: e.PrimaryVariant(),
		NumWorkers:     c.cfg.API.Workers,
		QueueSize:      c.cfg.API.QueueSize,
		Metrics:        m,
		Logger:         l,
	})
	if err != nil {
		return fmt.Errorf("creating run pool: %w", err)
	}
	defer pool.Close()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Executors:      e.Executors(),
		DefaultVariant: e.PrimaryVariant(),
		Logger:         l,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, pool, mcpServer, m, l)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return serve(ctx, apiServer, l)
}

// serve runs the API server until it fails or ctx is cancelled by a signal
// or the caller.
func serve(ctx context.Context, apiServer *api.Server, l *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		l.Info("shutting down")
		if err := apiServer.Shutdown(); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}
		return nil
	}
}
