// Package builder assembles a host from job registrations, optionally pairing
// each registration with a schedule.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/host"
	"github.com/flemzord/oddjob/internal/job"
	"github.com/flemzord/oddjob/internal/schedule"
)

type registration struct {
	factory  job.Factory
	instance job.Job
	name     string
	schedule schedule.Schedule
}

// Option configures a single registration.
type Option func(*registration)

// WithSchedule makes the registration recurring.
func WithSchedule(s schedule.Schedule) Option {
	return func(r *registration) { r.schedule = s }
}

// WithName sets the registration's display name.
func WithName(name string) Option {
	return func(r *registration) { r.name = name }
}

// Builder collects registrations. It is not safe for concurrent use.
type Builder struct {
	regs      []registration
	logger    *slog.Logger
	clock     clock.Clock
	observers job.Observers
	errs      []error
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		logger: slog.New(slog.DiscardHandler),
		clock:  clock.System,
	}
}

// Add registers a factory. Without a schedule, the factory is called once at
// Build time; with one, it is called on every firing.
func (b *Builder) Add(factory job.Factory, opts ...Option) *Builder {
	if factory == nil {
		b.errs = append(b.errs, fmt.Errorf("builder: registration %d: nil factory", len(b.regs)))
		return b
	}
	return b.add(registration{factory: factory}, opts)
}

// AddInstance registers an existing job. With a schedule, the same instance
// serves every firing.
func (b *Builder) AddInstance(j job.Job, opts ...Option) *Builder {
	if j == nil {
		b.errs = append(b.errs, fmt.Errorf("builder: registration %d: nil job", len(b.regs)))
		return b
	}
	return b.add(registration{instance: j}, opts)
}

// AddFunc registers a function as a named job.
func (b *Builder) AddFunc(name string, fn func(ctx context.Context) error, opts ...Option) *Builder {
	return b.AddInstance(job.Func(name, fn), opts...)
}

func (b *Builder) add(r registration, opts []Option) *Builder {
	for _, o := range opts {
		o(&r)
	}
	b.regs = append(b.regs, r)
	return b
}

// UseLogger sets the logger handed to the host and every scheduled job.
func (b *Builder) UseLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// UseClock sets the clock used by scheduled jobs and status timestamps.
func (b *Builder) UseClock(c clock.Clock) *Builder {
	if c != nil {
		b.clock = c
	}
	return b
}

// UseObserver adds an observer of job runs and firings.
func (b *Builder) UseObserver(o job.Observer) *Builder {
	if o != nil {
		b.observers = append(b.observers, o)
	}
	return b
}

// Build creates the host. Plain factories are invoked here; a failure
// releases every instance already created.
func (b *Builder) Build() (*host.Host, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	jobs := make([]job.Job, 0, len(b.regs))
	names := make([]string, 0, len(b.regs))
	for i, r := range b.regs {
		j, err := b.materialize(i, r)
		if err != nil {
			for _, made := range jobs {
				_ = job.Release(made)
			}
			return nil, fmt.Errorf("builder: registration %d: %w", i, err)
		}
		jobs = append(jobs, j)
		names = append(names, r.name)
	}

	return host.New(jobs,
		host.WithNames(names...),
		host.WithLogger(b.logger),
		host.WithClock(b.clock),
		host.WithObserver(b.observers),
	)
}

// materialize turns registration i into a job. An unnamed scheduled factory
// is named after its position so that several of them stay distinct.
func (b *Builder) materialize(i int, r registration) (job.Job, error) {
	if r.schedule == nil {
		if r.instance != nil {
			return r.instance, nil
		}
		return r.factory()
	}

	name := r.name
	if name == "" && r.instance != nil {
		name = job.NameOf(r.instance, job.TypeName(r.instance))
	}
	if name == "" {
		name = fmt.Sprintf("ScheduledJob[%d]", i)
	}
	logger := b.logger.With("job", name)
	opts := []job.ScheduledOption{
		job.WithClock(b.clock),
		job.WithLogger(logger),
		job.WithObserver(b.observers),
		job.WithScheduledName(name),
	}
	if r.instance != nil {
		return job.NewScheduledInstance(r.instance, r.schedule, opts...), nil
	}
	return job.NewScheduled(r.factory, r.schedule, opts...), nil
}

// Run builds the host, runs it until every job returns or ctx is cancelled,
// and releases it.
func (b *Builder) Run(ctx context.Context) (err error) {
	h, err := b.Build()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return h.Run(ctx)
}
