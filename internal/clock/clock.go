// Package clock abstracts the time source used by schedules and scheduled jobs
// so that temporal logic can be driven deterministically in tests.
package clock

import (
	"context"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Sleeper is implemented by clocks that control how waits elapse.
// Test doubles use it to advance virtual time instead of blocking.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the production clock. It reads the wall clock in UTC.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time { return f() }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// Sleep waits for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was cut short by cancellation. If c implements
// Sleeper, the wait is delegated to it.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if s, ok := c.(Sleeper); ok {
		return s.Sleep(ctx, d)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
