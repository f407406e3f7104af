// Package runcmder provides the run command, which reconstructs memory over
// a dataset's past sessions and answers its current context.
package runcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rsum/pkg/cliui"
	"github.com/papercomputeco/rsum/pkg/config"
	"github.com/papercomputeco/rsum/pkg/dataset"
	"github.com/papercomputeco/rsum/pkg/engine"
	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/pipeline"
	"github.com/papercomputeco/rsum/pkg/transcript"
)

type runCommander struct {
	cfg   *config.Config
	debug bool

	// client replaces the configured provider in tests.
	client llm.Client
}

const runLongDesc string = `Reconstruct memory over past sessions and answer the current context.

Each session is summarized into a memory draft. With the default "cove"
variant, the facts new to that draft are checked against the session with
verification questions and the draft is revised from the answers. The "rsum"
variant adopts each draft as-is. The final memory is then used to answer
the dataset's current_context.

Datasets are JSON (or YAML) documents:
  {"sessions": [["User: ...", "Assistant: ..."], ...],
   "current_context": ["User: ..."]}

Several files may be given; their sessions are concatenated in order and the
last file supplies current_context. With no arguments, dataset.files from the
config is used.

Every log record and streamed chunk is also written to a transcript file
named rsum_<variant>_log_<timestamp>.txt in --log-dir.

Examples:
  rsum run dataset.json
  rsum run --variant rsum --model llama3.1:8b dataset.json
  rsum run --provider openai --model gpt-4o-mini part1.json part2.json
  rsum run --strict --verify-concurrency 4 dataset.yaml`

const runShortDesc string = "Reconstruct memory and answer the current context"

// runFlags are the registry keys the run command exposes.
var runFlags = append(append(append([]string{}, config.ModelFlags...), config.PipelineFlags...),
	config.FlagLogDir,
	config.FlagLogJSON,
)

func NewRunCmd() *cobra.Command {
	return newRunCmd(&runCommander{})
}

func newRunCmd(cmder *runCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dataset ...]",
		Short: runShortDesc,
		Long:  runLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.RsumFlags, runFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	config.AddRegisteredFlags(cmd, config.RsumFlags, runFlags)

	return cmd
}

func (c *runCommander) run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = c.cfg.Dataset.Files
	}

	// Setup failures are reported before any model call.
	ds, err := dataset.Load(paths...)
	if err != nil {
		return err
	}

	variant, err := pipeline.ParseVariant(c.cfg.Pipeline.Variant)
	if err != nil {
		return err
	}

	started := time.Now()
	tr, err := transcript.Open(c.cfg.Log.Dir, string(variant), started)
	if err != nil {
		return err
	}
	defer tr.Close()

	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.cfg.Log.JSON && cliui.IsTerminal(stderr)),
		logger.WithJSON(c.cfg.Log.JSON),
		logger.WithWriter(stderr),
	)
	file := logger.New(
		logger.WithLevel(slog.LevelDebug),
		logger.WithWriter(tr),
	)
	l := logger.Multi(console, file)

	l.Info("starting run",
		"variant", string(variant),
		"provider", c.cfg.Model.Provider,
		"model", c.cfg.Model.Name,
		"sessions", len(ds.Sessions),
		"transcript", tr.Path(),
	)

	m := metrics.New()
	e, err := engine.New(&engine.Config{
		Settings:     c.cfg,
		Client:       c.client,
		StreamWriter: io.MultiWriter(stderr, tr),
		Metrics:      m,
		Logger:       l,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			l.Warn("closing event publisher", "error", err)
		}
	}()

	result, err := e.Primary().Run(ctx, ds.Sessions, ds.Context)
	if err != nil {
		l.Error("run failed", "error", err)
		return fmt.Errorf("run failed: %w", err)
	}

	l.Info("final response", "response", result.Response)
	l.Info("run complete", "run_id", result.RunID, "elapsed", cliui.FormatDuration(time.Since(started)))

	printSummary(stdout, result, tr.Path(), time.Since(started))
	return nil
}

func printSummary(w io.Writer, result *pipeline.Result, transcriptPath string, elapsed time.Duration) {
	fmt.Fprintf(w, "\n%s\n\n", cliui.TitleStyle.Render("Memory reconstruction"))
	fmt.Fprintln(w, cliui.KeyValue("Run", result.RunID, 12))
	fmt.Fprintln(w, cliui.KeyValue("Variant", string(result.Variant), 12))
	fmt.Fprintln(w, cliui.KeyValue("Sessions", fmt.Sprintf("%d", len(result.Sessions)), 12))
	fmt.Fprintln(w, cliui.KeyValue("Elapsed", cliui.FormatDuration(elapsed), 12))
	fmt.Fprintln(w, cliui.KeyValue("Transcript", transcriptPath, 12))
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		line := fmt.Sprintf("S%d %s", s.Session, s.Outcome)
		if n := len(s.Questions); n > 0 {
			line += cliui.DimStyle.Render(fmt.Sprintf(" (%d questions)", n))
		}
		fmt.Fprintf(w, "  %s %s\n", cliui.SuccessMark, line)
	}

	fmt.Fprintf(w, "\n%s\n%s\n", cliui.KeyStyle.Render("Memory"), result.Memory.String())

	response := result.Response
	if cliui.IsTerminal(w) {
		if rendered, err := cliui.RenderMarkdown(response); err == nil {
			response = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintf(w, "\n%s\n%s\n", cliui.KeyStyle.Render("Response"), response)
}
