// Package jobtest provides test doubles for the job package.
package jobtest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/oddjob/internal/job"
)

// MockJob is a configurable test double for job.Job. It also implements
// job.Namer and io.Closer and counts calls to both Run and Close.
type MockJob struct {
	NameVal  string
	RunFunc  func(ctx context.Context) error
	CloseErr error

	mu       sync.Mutex
	calls    int
	closes   int
	lastCall time.Time
	runTimes []time.Time
	now      func() time.Time
}

// Compile-time interface checks.
var (
	_ job.Job   = (*MockJob)(nil)
	_ job.Namer = (*MockJob)(nil)
)

// WithNow makes the mock timestamp runs with now instead of time.Now.
func (m *MockJob) WithNow(now func() time.Time) *MockJob {
	m.now = now
	return m
}

// Name implements job.Namer.
func (m *MockJob) Name() string { return m.NameVal }

// Run implements job.Job and records the call.
func (m *MockJob) Run(ctx context.Context) error {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	at := now()

	m.mu.Lock()
	m.calls++
	m.lastCall = at
	m.runTimes = append(m.runTimes, at)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// Close implements io.Closer and records the call.
func (m *MockJob) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	return m.CloseErr
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CloseCount returns the number of times Close was called.
func (m *MockJob) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// RunTimes returns the time of every Run call.
func (m *MockJob) RunTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst := make([]time.Time, len(m.runTimes))
	copy(dst, m.runTimes)
	return dst
}

// Blocking returns a RunFunc that waits for cancellation and returns ctx.Err().
func Blocking() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}

// Failing returns a RunFunc that fails with err after delay, or returns
// ctx.Err() if cancelled first.
func Failing(err error, delay time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if delay <= 0 {
			return err
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return err
		}
	}
}

// RecordingObserver is a job.Observer that keeps every event it receives.
type RecordingObserver struct {
	mu       sync.Mutex
	started  []job.Event
	finished []job.Event
}

// JobStarted implements job.Observer.
func (r *RecordingObserver) JobStarted(e job.Event) {
	r.mu.Lock()
	r.started = append(r.started, e)
	r.mu.Unlock()
}

// JobFinished implements job.Observer.
func (r *RecordingObserver) JobFinished(e job.Event) {
	r.mu.Lock()
	r.finished = append(r.finished, e)
	r.mu.Unlock()
}

// Started returns a copy of the JobStarted events.
func (r *RecordingObserver) Started() []job.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]job.Event(nil), r.started...)
}

// Finished returns a copy of the JobFinished events.
func (r *RecordingObserver) Finished() []job.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]job.Event(nil), r.finished...)
}
