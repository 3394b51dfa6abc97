// Package host runs a fixed set of jobs concurrently under one shared
// cancellation signal. When any job faults, every other job is asked to
// stop; the host waits for all of them and reports every fault together.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/job"
)

// Host owns a fixed list of jobs.
type Host struct {
	jobs     []job.Job
	names    []string
	logger   *slog.Logger
	clock    clock.Clock
	observer job.Observer
	tracer   trace.Tracer
	status   *tracker

	runMu     sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock sets the clock used for status timestamps.
func WithClock(c clock.Clock) Option {
	return func(h *Host) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithObserver sets the observer notified when each job starts and ends.
func WithObserver(o job.Observer) Option {
	return func(h *Host) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithTracer sets the tracer used for "job.run" spans. Defaults to the
// global provider.
func WithTracer(t trace.Tracer) Option {
	return func(h *Host) {
		if t != nil {
			h.tracer = t
		}
	}
}

// WithNames overrides the display names. names[i] names jobs[i]; an empty
// entry keeps the resolved default.
func WithNames(names ...string) Option {
	return func(h *Host) {
		for i, n := range names {
			if i < len(h.names) && n != "" {
				h.names[i] = n
			}
		}
	}
}

// New creates a host over jobs. The slice is copied; the order is kept for
// logs, status and error reporting.
func New(jobs []job.Job, opts ...Option) (*Host, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	h := &Host{
		jobs:     make([]job.Job, len(jobs)),
		names:    make([]string, len(jobs)),
		logger:   slog.New(slog.DiscardHandler),
		clock:    clock.System,
		observer: job.NopObserver,
		tracer:   otel.Tracer("github.com/flemzord/oddjob/internal/host"),
	}
	for i, j := range jobs {
		if j == nil {
			return nil, fmt.Errorf("host: job %d is nil", i)
		}
		h.jobs[i] = j
		h.names[i] = job.NameOf(j, job.TypeName(j))
	}
	for _, o := range opts {
		o(h)
	}
	h.status = newTracker(h.names)
	return h, nil
}

// Jobs returns the hosted jobs in registration order.
func (h *Host) Jobs() []job.Job {
	return append([]job.Job(nil), h.jobs...)
}

// Names returns the display names in registration order.
func (h *Host) Names() []string {
	return append([]string(nil), h.names...)
}

// Status returns a snapshot of every job's state.
func (h *Host) Status() Snapshot {
	return h.status.snapshot(h.clock.Now())
}

// Start runs every job concurrently with src's context and blocks until all
// of them have returned. The first job to fault requests cancellation on src.
// The result is nil when no job faulted (including when every job was
// cancelled), or an *AggregateError listing each fault in job order.
func (h *Host) Start(src *Source) error {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	h.status.reset(h.clock.Now())
	h.logger.Info("host: starting jobs", "count", len(h.jobs))

	errs := make([]error, len(h.jobs))
	var wg sync.WaitGroup
	for i := range h.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = h.supervise(src, i)
		}()
	}
	wg.Wait()

	var faults []error
	for _, err := range errs {
		if err != nil {
			faults = append(faults, err)
		}
	}
	if len(faults) == 0 {
		h.logger.Info("host: all jobs finished")
		return nil
	}
	h.logger.Error("host: jobs faulted", "count", len(faults))
	return &AggregateError{Errors: faults}
}

// supervise runs job i and returns its fault, if any.
func (h *Host) supervise(src *Source, i int) error {
	j, name := h.jobs[i], h.names[i]

	ctx, span := h.tracer.Start(src.Context(), "job.run", trace.WithAttributes(
		attribute.String("job.name", name),
	))
	defer span.End()

	started := h.clock.Now()
	h.status.start(i, started)
	h.observer.JobStarted(job.Event{Job: name, StartedAt: started})

	err := job.Safe(ctx, j)
	outcome := job.OutcomeOf(err)
	finished := h.clock.Now()

	state := StateCompleted
	switch outcome {
	case job.OutcomeCancelled:
		state = StateCancelled
		h.logger.Info("host: job was cancelled", "job", name)
		err = nil
	case job.OutcomeFaulted:
		state = StateFaulted
		h.logger.Error("host: job faulted", "job", name, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if src.CancelCause(fmt.Errorf("job %q faulted: %w", name, context.Canceled)) {
			h.logger.Info("host: cancellation requested", "cause", name)
		}
	default:
		h.logger.Info("host: job has completed", "job", name)
	}

	h.status.finish(i, state, err, finished)
	h.observer.JobFinished(job.Event{
		Job:        name,
		Outcome:    outcome,
		Err:        err,
		StartedAt:  started,
		FinishedAt: finished,
	})

	if err != nil {
		return &JobError{Job: name, Err: err}
	}
	return nil
}

// Run starts the host under a Source derived from ctx. Cancelling ctx
// requests cooperative cancellation of every job.
func (h *Host) Run(ctx context.Context) error {
	src := NewSource(ctx)
	defer src.Release()
	return h.Start(src)
}

// RunFor is Run with a wall-clock limit. When d elapses, cancellation is
// requested and the host still waits for every job to return. A
// non-positive d means no limit.
func (h *Host) RunFor(ctx context.Context, d time.Duration) error {
	src := NewSource(ctx)
	defer src.Release()
	if d > 0 {
		timer := time.AfterFunc(d, func() {
			src.CancelCause(fmt.Errorf("%w: timeout after %s", context.Canceled, d))
		})
		defer timer.Stop()
	}
	return h.Start(src)
}

// Close releases every hosted job that owns resources. Only the first call
// has an effect; later calls return the same result.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		var errs []error
		for i, j := range h.jobs {
			if err := job.Release(j); err != nil {
				errs = append(errs, fmt.Errorf("release %q: %w", h.names[i], err))
			}
		}
		h.closeErr = errors.Join(errs...)
	})
	return h.closeErr
}

func isCancellation(err error) bool { return job.IsCancellation(err) }
