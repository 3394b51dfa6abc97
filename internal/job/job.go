// Package job defines the unit of work run by the host and the adapters that
// wrap it: named jobs, function jobs, forever loops and scheduled jobs.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Job is a unit of work. Run blocks until the work completes, fails, or ctx
// is cancelled. Implementations must observe ctx and return promptly once it
// is done; returning ctx.Err() signals a graceful stop rather than a fault.
type Job interface {
	Run(ctx context.Context) error
}

// Namer is implemented by jobs that declare a display name used in logs,
// metrics and the status endpoint.
type Namer interface {
	Name() string
}

// Factory produces a fresh job instance on every call.
type Factory func() (Job, error)

// Static returns a Factory that always yields j.
func Static(j Job) Factory {
	return func() (Job, error) { return j, nil }
}

// FactoryFunc adapts a constructor that cannot fail.
func FactoryFunc(fn func() Job) Factory {
	return func() (Job, error) { return fn(), nil }
}

// NameOf returns j's declared name, or fallback when j does not declare one.
func NameOf(j Job, fallback string) string {
	if n, ok := j.(Namer); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fallback
}

// TypeName returns the bare type name of j ("MyJob" for *pkg.MyJob).
// Registration uses it as the structural fallback for NameOf.
func TypeName(j Job) string {
	name := fmt.Sprintf("%T", j)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Release closes j if it owns resources (implements io.Closer).
func Release(j Job) error {
	if c, ok := j.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// IsCancellation reports whether err represents a graceful stop.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// named attaches a display name to a job.
type named struct {
	name string
	job  Job
}

// WithName returns a job that reports name and otherwise behaves like j,
// including forwarding Close.
func WithName(name string, j Job) Job {
	return &named{name: name, job: j}
}

func (n *named) Name() string                  { return n.name }
func (n *named) Run(ctx context.Context) error { return n.job.Run(ctx) }
func (n *named) Close() error                  { return Release(n.job) }

// Unwrap returns the wrapped job.
func (n *named) Unwrap() Job { return n.job }

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

// Func adapts fn to a named Job.
func Func(name string, fn func(ctx context.Context) error) Job {
	return &funcJob{name: name, fn: fn}
}

func (f *funcJob) Name() string                  { return f.name }
func (f *funcJob) Run(ctx context.Context) error { return f.fn(ctx) }
