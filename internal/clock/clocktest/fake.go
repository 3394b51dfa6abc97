// Package clocktest provides a controllable clock for tests.
package clocktest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/oddjob/internal/clock"
)

// Fake is a manually driven clock. Sleep advances virtual time instantly
// instead of blocking, so schedule loops run as fast as the test drives them.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// Compile-time interface checks.
var (
	_ clock.Clock   = (*Fake)(nil)
	_ clock.Sleeper = (*Fake)(nil)
)

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now implements clock.Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Sleep implements clock.Sleeper. It records d and advances the clock by it,
// unless ctx is already done.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	f.mu.Unlock()
	return nil
}

// Sleeps returns a copy of every duration passed to Sleep.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	dst := make([]time.Duration, len(f.sleeps))
	copy(dst, f.sleeps)
	return dst
}
