// Package runner executes pipeline runs asynchronously on a bounded worker
// pool and tracks their status by id.
//
// The pool decouples model work from the API's HTTP hot path: submitting a
// run only enqueues it, and callers poll for the result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/logger"
	"github.com/papercomputeco/rsum/pkg/metrics"
	"github.com/papercomputeco/rsum/pkg/pipeline"
)

var (
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 64
)

var (
	// ErrRunNotFound is returned by Get for an unknown run id.
	ErrRunNotFound = errors.New("run not found")

	// ErrQueueFull is returned by Submit when the job queue has no capacity.
	ErrQueueFull = errors.New("run queue is full")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("runner is closed")
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Executor runs the memory pipeline. *pipeline.Pipeline satisfies it.
type Executor interface {
	Run(ctx context.Context, sessions []dialogue.Session, current dialogue.Context, opts ...pipeline.RunOption) (*pipeline.Result, error)
}

// Run is a snapshot of one submitted run.
type Run struct {
	ID         string           `json:"id"`
	Status     Status           `json:"status"`
	Variant    pipeline.Variant `json:"variant"`
	Error      string           `json:"error,omitempty"`
	Result     *pipeline.Result `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Job is a unit of work for the pool.
type Job struct {
	Variant  pipeline.Variant
	Sessions []dialogue.Session
	Context  dialogue.Context
}

// Config is the configuration options for the pool.
type Config struct {
	// Executors maps each supported variant to the pipeline that runs it.
	Executors map[pipeline.Variant]Executor

	// DefaultVariant is used for jobs that name no variant.
	DefaultVariant pipeline.Variant

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type queued struct {
	id       string
	executor Executor
	job      Job
}

// Pool processes runs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan queued
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	runs   map[string]*Run
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if len(c.Executors) == 0 {
		return nil, errors.New("runner requires at least one executor")
	}

	if c.DefaultVariant == "" {
		c.DefaultVariant = pipeline.VariantCoVe
	}
	if _, ok := c.Executors[c.DefaultVariant]; !ok {
		return nil, fmt.Errorf("%w: no executor for default variant %q", pipeline.ErrUnknownVariant, c.DefaultVariant)
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	l := c.Logger
	if l == nil {
		l = logger.Nop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan queued, c.QueueSize),
		logger: l,
		runs:   make(map[string]*Run),
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Submit registers a run and enqueues it. The returned snapshot is queued.
// An unknown variant yields pipeline.ErrUnknownVariant; a full queue yields
// ErrQueueFull and the run is forgotten.
func (p *Pool) Submit(job Job) (Run, error) {
	if job.Variant == "" {
		job.Variant = p.config.DefaultVariant
	}
	executor, ok := p.config.Executors[job.Variant]
	if !ok {
		return Run{}, fmt.Errorf("%w: %q", pipeline.ErrUnknownVariant, job.Variant)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Variant:   job.Variant,
		CreatedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Run{}, ErrClosed
	}

	select {
	case p.queue <- queued{id: run.ID, executor: executor, job: job}:
		p.runs[run.ID] = run
		p.config.Metrics.IncRun(metrics.RunQueued)
		p.logger.Debug("run queued",
			"run_id", run.ID,
			"variant", string(job.Variant),
			"sessions", len(job.Sessions),
		)
		return *run, nil
	default:
		p.config.Metrics.IncRun(metrics.RunRejected)
		p.logger.Error("run not queued, queue full, run dropped",
			"variant", string(job.Variant),
		)
		return Run{}, ErrQueueFull
	}
}

// Get returns a snapshot of the run with the given id.
func (p *Pool) Get(id string) (Run, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	run, ok := p.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return *run, nil
}

// Close stops accepting runs and waits for queued and in-flight runs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls runs off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for q := range p.queue {
		p.process(q)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

func (p *Pool) process(q queued) {
	p.update(q.id, func(r *Run) {
		now := time.Now().UTC()
		r.Status = StatusRunning
		r.StartedAt = &now
	})

	result, err := q.executor.Run(context.Background(), q.job.Sessions, q.job.Context, pipeline.WithRunID(q.id))

	p.update(q.id, func(r *Run) {
		now := time.Now().UTC()
		r.FinishedAt = &now
		if err != nil {
			r.Status = StatusFailed
			r.Error = err.Error()
			return
		}
		r.Status = StatusSucceeded
		r.Result = result
	})

	if err != nil {
		p.config.Metrics.IncRun(metrics.RunFailed)
		p.logger.Error("run failed", "run_id", q.id, "error", err)
		return
	}

	p.config.Metrics.IncRun(metrics.RunSucceeded)
	p.logger.Info("run finished",
		"run_id", q.id,
		"variant", string(q.job.Variant),
		"sessions", len(result.Sessions),
	)
}

func (p *Pool) update(id string, fn func(*Run)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.runs[id]; ok {
		fn(r)
	}
}
