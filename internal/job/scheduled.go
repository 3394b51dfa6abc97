package job

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/schedule"
)

const defaultScheduledName = "ScheduledJob"

// Scheduled turns a one-shot job into a recurring one. Each iteration waits
// until the schedule's next instant, then runs one job instance to
// completion. A failing firing is logged and absorbed: only cancellation of
// the context passed to Run ends the loop.
type Scheduled struct {
	name     string
	factory  Factory
	shared   Job
	schedule schedule.Schedule
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer

	firings   atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// ScheduledOption configures a Scheduled job.
type ScheduledOption func(*Scheduled)

// WithClock sets the time source. Defaults to clock.System.
func WithClock(c clock.Clock) ScheduledOption {
	return func(s *Scheduled) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) ScheduledOption {
	return func(s *Scheduled) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the observer notified around every firing.
func WithObserver(o Observer) ScheduledOption {
	return func(s *Scheduled) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithScheduledName sets the name the scheduled job reports to its host.
func WithScheduledName(name string) ScheduledOption {
	return func(s *Scheduled) {
		if name != "" {
			s.name = name
		}
	}
}

// NewScheduled wraps a factory. Every firing gets a fresh instance which is
// released as soon as that firing ends.
func NewScheduled(factory Factory, sched schedule.Schedule, opts ...ScheduledOption) *Scheduled {
	s := &Scheduled{
		name:     defaultScheduledName,
		factory:  factory,
		schedule: sched,
		clock:    clock.System,
		logger:   slog.New(slog.DiscardHandler),
		observer: NopObserver,
		tracer:   otel.Tracer("github.com/flemzord/oddjob/internal/job"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewScheduledInstance wraps a single instance reused by every firing.
// The instance is released once, by Close.
func NewScheduledInstance(j Job, sched schedule.Schedule, opts ...ScheduledOption) *Scheduled {
	s := NewScheduled(Static(j), sched, opts...)
	s.shared = j
	return s
}

// Name implements Namer.
func (s *Scheduled) Name() string { return s.name }

// Firings returns how many times the wrapped job has been started.
func (s *Scheduled) Firings() int64 { return s.firings.Load() }

// Run implements Job. It returns only when ctx is done.
//
// A schedule that returns the zero instant has no future firing. Instead of
// asking it again in a tight loop, Run waits for cancellation.
func (s *Scheduled) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := s.schedule.Next(s.clock.Now())
		if next.IsZero() {
			s.logger.Warn("schedule: no future firing, idling until cancelled", "job", s.name)
			<-ctx.Done()
			return ctx.Err()
		}

		now := s.clock.Now()
		if !next.After(now) {
			continue
		}

		delay := next.Sub(now)
		s.logger.Info("schedule: waiting", "job", s.name, "delay", delay, "until", next)

		if err := clock.Sleep(ctx, s.clock, delay); err != nil {
			return err
		}

		s.fire(ctx)
	}
}

// fire runs one instance to completion. It never returns the instance's error.
func (s *Scheduled) fire(ctx context.Context) {
	j, err := s.factory()
	if err != nil {
		s.logger.Error("schedule: creating job failed", "job", s.name, "error", err)
		return
	}
	if s.shared == nil {
		defer s.release(j)
	}

	name := NameOf(j, s.name)
	ctx, span := s.tracer.Start(ctx, "job.firing", trace.WithAttributes(
		attribute.String("job.name", name),
		attribute.String("job.schedule", s.name),
	))
	defer span.End()

	s.firings.Add(1)
	started := s.clock.Now()
	s.logger.Info("schedule: starting job", "job", name)
	s.observer.JobStarted(Event{Job: name, Firing: true, StartedAt: started})

	err = Safe(ctx, j)
	outcome := OutcomeOf(err)

	switch outcome {
	case OutcomeCancelled:
		s.logger.Info("schedule: job cancelled", "job", name)
	case OutcomeFaulted:
		s.logger.Error("schedule: job errored", "job", name, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		s.logger.Info("schedule: job completed", "job", name)
	}

	s.observer.JobFinished(Event{
		Job:        name,
		Firing:     true,
		Outcome:    outcome,
		Err:        err,
		StartedAt:  started,
		FinishedAt: s.clock.Now(),
	})
}

func (s *Scheduled) release(j Job) {
	if err := Release(j); err != nil {
		s.logger.Warn("schedule: releasing job failed", "job", NameOf(j, s.name), "error", err)
	}
}

// Close releases the shared instance, if any. Safe to call more than once.
func (s *Scheduled) Close() error {
	s.closeOnce.Do(func() {
		if s.shared != nil {
			s.closeErr = Release(s.shared)
		}
	})
	return s.closeErr
}
