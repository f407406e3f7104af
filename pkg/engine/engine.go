// Package engine assembles a model client, gateway, event publisher and one
// pipeline per variant from a resolved config.Config. Both `rsum run` and
// `rsum serve` build their pipelines through it.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/rsum/pkg/config"
	"github.com/papercomputeco/rsum/pkg/eventstream"
	"github.com/papercomputeco/rsum/pkg/eventstream/kafka"
	"github.com/papercomputeco/rsum/pkg/eventstream/nop"
	"github.com/papercomputeco/rsum/pkg/gateway"
	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/llm/provider"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/pipeline"
	"github.com/papercomputeco/rsum/pkg/prompt"
	"github.com/papercomputeco/rsum/pkg/runner"
)

// Event stream provider names accepted in eventstream.provider.
const (
	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
)

// ErrUnknownEventStream is returned for an unsupported eventstream.provider.
var ErrUnknownEventStream = errors.New("unknown event stream provider")

// Config configures an Engine.
type Config struct {
	Settings *config.Config

	// Client overrides the provider built from Settings.Model. Tests use it
	// to inject a scripted client.
	Client llm.Client

	// Publisher overrides the publisher built from Settings.EventStream.
	Publisher eventstream.Publisher

	// StreamWriter receives streamed model chunks when model.stream is set.
	StreamWriter io.Writer

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Engine owns the shared model gateway and publisher behind every pipeline.
type Engine struct {
	gateway   *gateway.Gateway
	publisher eventstream.Publisher
	pipelines map[pipeline.Variant]*pipeline.Pipeline
	primary   pipeline.Variant
}

// New builds an Engine with a pipeline for every known variant.
// The configured pipeline.variant becomes the primary one.
func New(c *Config) (*Engine, error) {
	if c.Settings == nil {
		return nil, errors.New("engine requires settings")
	}
	s := c.Settings

	l := c.Logger
	if l == nil {
		l = logger.Nop()
	}

	primary, err := pipeline.ParseVariant(s.Pipeline.Variant)
	if err != nil {
		return nil, err
	}
	style, err := prompt.ParseDraftStyle(s.Pipeline.DraftStyle)
	if err != nil {
		return nil, err
	}

	client := c.Client
	if client == nil {
		client, err = NewClient(s.Model)
		if err != nil {
			return nil, err
		}
	}

	gw := gateway.New(&gateway.Config{
		Client: client,
		Model:  s.Model.Name,
		Options: llm.Options{
			Temperature: s.Model.Temperature,
			Seed:        s.Model.Seed,
			NumCtx:      s.Model.NumCtx,
		},
		Stream:       s.Model.Stream,
		StreamWriter: c.StreamWriter,
		Strict:       s.Pipeline.Strict,
		Logger:       l,
		Metrics:      c.Metrics,
	})

	pub := c.Publisher
	if pub == nil {
		pub, err = NewPublisher(s.EventStream)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		gateway:   gw,
		publisher: pub,
		pipelines: make(map[pipeline.Variant]*pipeline.Pipeline, 2),
		primary:   primary,
	}

	for _, v := range []pipeline.Variant{pipeline.VariantCoVe, pipeline.VariantRsum} {
		p, err := pipeline.New(&pipeline.Config{
			Generator:         gw,
			Variant:           v,
			DraftStyle:        style,
			VerifyConcurrency: s.Pipeline.VerifyConcurrency,
			NoiseThreshold:    s.Pipeline.NoiseThreshold,
			Publisher:         pub,
			Metrics:           c.Metrics,
			Logger:            l,
		})
		if err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("building %s pipeline: %w", v, err)
		}
		e.pipelines[v] = p
	}

	l.Debug("engine ready",
		"provider", client.Name(),
		"model", s.Model.Name,
		"variant", string(primary),
		"strict", s.Pipeline.Strict,
	)

	return e, nil
}

// NewClient builds the model client named by m.Provider, resolving the
// target through provider.ResolveTarget.
func NewClient(m config.ModelConfig) (llm.Client, error) {
	timeout, err := m.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	client, err := provider.New(provider.Config{
		Provider: m.Provider,
		Target:   provider.ResolveTarget(m.Provider, m.Target),
		APIKey:   m.APIKey,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	return client, nil
}

// NewPublisher builds the stage event publisher named by es.Provider.
func NewPublisher(es config.EventStreamConfig) (eventstream.Publisher, error) {
	switch es.Provider {
	case "", EventStreamNone:
		return nop.NewPublisher(), nil
	case EventStreamKafka:
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: es.Brokers,
			Topic:   es.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventStream, es.Provider)
	}
}

// Primary returns the pipeline for the configured variant.
func (e *Engine) Primary() *pipeline.Pipeline {
	return e.pipelines[e.primary]
}

// PrimaryVariant returns the configured variant.
func (e *Engine) PrimaryVariant() pipeline.Variant {
	return e.primary
}

// Pipeline returns the pipeline for v.
func (e *Engine) Pipeline(v pipeline.Variant) (*pipeline.Pipeline, error) {
	p, ok := e.pipelines[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", pipeline.ErrUnknownVariant, v)
	}
	return p, nil
}

// Executors exposes every pipeline as a runner executor.
func (e *Engine) Executors() map[pipeline.Variant]runner.Executor {
	out := make(map[pipeline.Variant]runner.Executor, len(e.pipelines))
	for v, p := range e.pipelines {
		out[v] = p
	}
	return out
}

// Close releases the event publisher.
func (e *Engine) Close() error {
	return e.publisher.Close()
}
