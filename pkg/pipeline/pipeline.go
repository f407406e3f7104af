// Package pipeline orchestrates the per-session memory stages over an ordered
// list of sessions and produces the final response.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/eventstream"
	"github.com/papercomputeco/rsum/pkg/eventstream/nop"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/memory"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/prompt"
	"github.com/papercomputeco/rsum/pkg/utils"
)

const previewLen = 120

// Config configures a Pipeline.
type Config struct {
	// Generator reaches the model. Required.
	Generator memory.Generator

	Variant    Variant
	DraftStyle prompt.DraftStyle

	// VerifyConcurrency bounds concurrent fact-check calls. Defaults to 1.
	VerifyConcurrency int

	// NoiseThreshold is the minimum delta length in runes. Defaults to
	// memory.DefaultNoiseThreshold.
	NoiseThreshold int

	Publisher eventstream.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Pipeline runs the memory stages. It holds no per-run state, so one
// Pipeline may serve concurrent runs.
type Pipeline struct {
	variant    Variant
	drafter    *memory.Drafter
	extractor  *memory.DeltaExtractor
	questioner *memory.QuestionGenerator
	verifier   *memory.Verifier
	reconciler *memory.Reconciler
	responder  *memory.Responder

	publisher eventstream.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// SessionTrace records what happened to one session.
type SessionTrace struct {
	Session   int               `json:"session"`
	Draft     memory.Memory     `json:"draft"`
	Delta     memory.Delta      `json:"delta,omitempty"`
	Questions []memory.Question `json:"questions,omitempty"`
	Record    *memory.Record    `json:"record,omitempty"`
	Memory    memory.Memory     `json:"memory"`
	Outcome   Outcome           `json:"outcome"`
}

// Result is the output of one run.
type Result struct {
	RunID    string         `json:"run_id"`
	Variant  Variant        `json:"variant"`
	Memory   memory.Memory  `json:"memory"`
	Response string         `json:"response"`
	Sessions []SessionTrace `json:"sessions"`
}

// New creates a Pipeline.
func New(c *Config) (*Pipeline, error) {
	if c.Generator == nil {
		return nil, errors.New("pipeline requires a generator")
	}
	variant, err := ParseVariant(string(c.Variant))
	if err != nil {
		return nil, err
	}
	style, err := prompt.ParseDraftStyle(string(c.DraftStyle))
	if err != nil {
		return nil, err
	}

	pub := c.Publisher
	if pub == nil {
		pub = nop.NewPublisher()
	}
	l := c.Logger
	if l == nil {
		l = logger.Nop()
	}

	return &Pipeline{
		variant:    variant,
		drafter:    memory.NewDrafter(c.Generator, style),
		extractor:  memory.NewDeltaExtractor(c.Generator, c.NoiseThreshold),
		questioner: memory.NewQuestionGenerator(c.Generator),
		verifier:   memory.NewVerifier(c.Generator, c.VerifyConcurrency),
		reconciler: memory.NewReconciler(c.Generator),
		responder:  memory.NewResponder(c.Generator),
		publisher:  pub,
		metrics:    c.Metrics,
		logger:     l.With("variant", string(variant)),
	}, nil
}

// Variant returns the arm this pipeline runs.
func (p *Pipeline) Variant() Variant {
	return p.variant
}

// RunOption customizes a single run.
type RunOption func(*runOptions)

type runOptions struct {
	runID string
}

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) RunOption {
	return func(o *runOptions) {
		o.runID = id
	}
}

// Run processes sessions strictly in order, then issues exactly one response
// call with the last memory. With zero sessions the memory stays Empty.
//
// Model failures only surface as errors when the generator is strict; the
// first one aborts the run.
func (p *Pipeline) Run(ctx context.Context, sessions []dialogue.Session, current dialogue.Context, opts ...RunOption) (*Result, error) {
	o := runOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	r := &run{Pipeline: p, id: o.runID, logger: p.logger.With("run_id", o.runID)}
	result := &Result{
		RunID:    o.runID,
		Variant:  p.variant,
		Memory:   memory.Empty,
		Sessions: make([]SessionTrace, 0, len(sessions)),
	}

	if len(sessions) == 0 {
		r.logger.Warn("no past sessions, answering with empty memory")
	}

	for _, s := range sessions {
		r.logger.Info("processing session", "session", s.Ordinal, "of", len(sessions))

		trace, err := r.session(ctx, result.Memory, s)
		if err != nil {
			return nil, err
		}
		result.Memory = trace.Memory
		result.Sessions = append(result.Sessions, *trace)

		p.metrics.ObserveSession(string(trace.Outcome), len(trace.Questions))
		r.logger.Info("session memory fixed",
			"session", s.Ordinal,
			"outcome", string(trace.Outcome),
			"memory", trace.Memory.String(),
		)
	}
	if len(sessions) > 0 {
		r.logger.Info("memory updated for past sessions", "count", len(sessions))
	}

	r.logger.Info("generating final response")
	start := time.Now()
	response, err := p.responder.Respond(ctx, result.Memory, current)
	if err != nil {
		return nil, fmt.Errorf("final response: %w", err)
	}
	r.publish(ctx, 0, prompt.StageResponse, "Final Response Generation", start, response)
	result.Response = response

	return result, nil
}

// run carries per-run identity through the stage helpers.
type run struct {
	*Pipeline
	id     string
	logger *slog.Logger
}

func (r *run) session(ctx context.Context, prev memory.Memory, s dialogue.Session) (*SessionTrace, error) {
	trace := &SessionTrace{Session: s.Ordinal}

	start := time.Now()
	draft, err := r.drafter.Draft(ctx, prev, s)
	if err != nil {
		return nil, stageError(s, prompt.StageDraft, err)
	}
	trace.Draft = draft
	r.publish(ctx, s.Ordinal, prompt.StageDraft, fmt.Sprintf("Memory Generation (S%d)", s.Ordinal), start, string(draft))

	if r.variant == VariantRsum {
		trace.Memory = draft
		trace.Outcome = OutcomeDraft
		return trace, nil
	}

	start = time.Now()
	delta, err := r.extractor.Extract(ctx, prev, draft)
	if err != nil {
		return nil, stageError(s, prompt.StageDelta, err)
	}
	trace.Delta = delta
	r.publish(ctx, s.Ordinal, prompt.StageDelta, "Memory Diff Generation", start, string(delta))

	if delta.IsEmpty() {
		r.logger.Info("no delta, adopting draft", "session", s.Ordinal)
		trace.Memory = draft
		trace.Outcome = OutcomeNoDelta
		return trace, nil
	}

	start = time.Now()
	questions, err := r.questioner.Generate(ctx, delta)
	if err != nil {
		return nil, stageError(s, prompt.StageQuestions, err)
	}
	trace.Questions = questions
	r.publish(ctx, s.Ordinal, prompt.StageQuestions, "Question Generation (Diff)", start, fmt.Sprintf("%d questions", len(questions)))
	r.logger.Info("verification questions generated", "session", s.Ordinal, "count", len(questions))

	if len(questions) == 0 {
		r.logger.Info("no verification questions, adopting draft", "session", s.Ordinal)
		trace.Memory = draft
		trace.Outcome = OutcomeNoQuestions
		return trace, nil
	}

	start = time.Now()
	record, err := r.verifier.Verify(ctx, questions, s)
	if err != nil {
		return nil, stageError(s, prompt.StageVerify, err)
	}
	trace.Record = record
	r.publish(ctx, s.Ordinal, prompt.StageVerify, "Fact Verification", start, fmt.Sprintf("%d answers", record.Len()))

	start = time.Now()
	final, err := r.reconciler.Reconcile(ctx, draft, record)
	if err != nil {
		return nil, stageError(s, prompt.StageReconcile, err)
	}
	r.publish(ctx, s.Ordinal, prompt.StageReconcile, "Final Memory Reconstruction", start, string(final))

	trace.Memory = final
	trace.Outcome = OutcomeReconciled
	return trace, nil
}

// publish emits a stage event. Publishing never fails a run.
func (r *run) publish(ctx context.Context, session int, stage prompt.Stage, task string, start time.Time, output string) {
	event := eventstream.NewStageEvent(r.id, string(r.variant), session, string(stage), task)
	event.DurationMs = time.Since(start).Milliseconds()
	event.OutputPreview = utils.Truncate(output, previewLen)

	if err := r.publisher.PublishStage(ctx, event); err != nil {
		r.logger.Warn("failed to publish stage event",
			"session", session,
			"stage", string(stage),
			"error", err,
		)
	}
}

func stageError(s dialogue.Session, stage prompt.Stage, err error) error {
	return fmt.Errorf("session %d %s: %w", s.Ordinal, stage, err)
}
