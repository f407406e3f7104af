// Package gateway is the single point through which every pipeline stage
// reaches the model. It fixes the decoding options, tees streamed output,
// records metrics, and applies the lenient or strict error policy.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/prompt"
)

// ErrorMarkerPrefix starts the text returned in place of model output when a
// call fails in lenient mode.
const ErrorMarkerPrefix = "LLM call error: "

// ErrModelCall wraps every model call failure surfaced in strict mode.
var ErrModelCall = errors.New("model call failed")

// Config configures a Gateway.
type Config struct {
	// Client is the provider used for every call.
	Client llm.Client

	// Model name sent with every request.
	Model string

	// Options are the fixed decoding options sent with every request.
	Options llm.Options

	// Stream selects incremental responses. Chunks are written to
	// StreamWriter as they arrive.
	Stream       bool
	StreamWriter io.Writer

	// Strict returns failures as errors instead of marker text.
	Strict bool

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Gateway sends rendered prompts to the model.
type Gateway struct {
	client  llm.Client
	model   string
	options llm.Options
	stream  bool
	strict  bool
	logger  *slog.Logger
	metrics *metrics.Metrics

	// streamMu serializes chunk writes when verification fans out.
	streamMu sync.Mutex
	streamW  io.Writer
}

// New creates a Gateway. A nil Logger discards logs; a nil StreamWriter
// discards streamed chunks.
func New(c *Config) *Gateway {
	l := c.Logger
	if l == nil {
		l = logger.Nop()
	}
	w := c.StreamWriter
	if w == nil {
		w = io.Discard
	}

	return &Gateway{
		client:  c.Client,
		model:   c.Model,
		options: c.Options,
		stream:  c.Stream,
		strict:  c.Strict,
		logger:  l,
		metrics: c.Metrics,
		streamW: w,
	}
}

// Strict reports whether model failures are returned as errors.
func (g *Gateway) Strict() bool {
	return g.strict
}

// Generate sends [system, user] to the model and returns the trimmed reply.
//
// In lenient mode a failure yields "LLM call error: <cause>" and a nil error,
// so the marker flows downstream as if it were model output. In strict mode
// the failure is returned wrapped in ErrModelCall.
func (g *Gateway) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	g.logger.Debug("model request",
		"task", p.Task,
		"stage", string(p.Stage),
		"model", g.model,
		"system_prompt", p.System,
		"user_prompt", p.User,
	)

	req := &llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			llm.NewSystemMessage(p.System),
			llm.NewUserMessage(p.User),
		},
		Stream:  g.stream,
		Options: g.options,
	}

	var onChunk llm.ChunkFunc
	if g.stream {
		onChunk = g.writeChunk
	}

	start := time.Now()
	resp, err := g.client.Chat(ctx, req, onChunk)
	elapsed := time.Since(start)
	g.metrics.ObserveModelCall(string(p.Stage), elapsed, err)

	if g.stream {
		g.writeChunk(llm.StreamChunk{Content: "\n"})
	}

	if err != nil {
		if g.strict {
			g.logger.Error("model call failed", "task", p.Task, "error", err)
			return "", fmt.Errorf("%w: %s: %w", ErrModelCall, p.Task, err)
		}

		marker := ErrorMarkerPrefix + err.Error()
		g.logger.Warn("model call failed, continuing with error text",
			"task", p.Task,
			"error", err,
		)
		return marker, nil
	}

	content := strings.TrimSpace(resp.Message.Content)
	g.logger.Info("model response",
		"task", p.Task,
		"duration", elapsed.Round(time.Millisecond),
		"content", content,
	)
	return content, nil
}

func (g *Gateway) writeChunk(chunk llm.StreamChunk) {
	if chunk.Content == "" {
		return
	}
	g.streamMu.Lock()
	defer g.streamMu.Unlock()
	_, _ = io.WriteString(g.streamW, chunk.Content)
}

// IsErrorMarker reports whether text is a lenient-mode failure marker.
func IsErrorMarker(text string) bool {
	return strings.HasPrefix(text, ErrorMarkerPrefix)
}
