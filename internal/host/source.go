package host

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Source is a cancellation signal shared by the host and every job it runs.
// The transition to "requested" happens at most once; later requests are
// no-ops. Jobs always observe context.Canceled from a Source, even when the
// parent context ended through a deadline.
type Source struct {
	ctx       context.Context
	cancel    context.CancelCauseFunc
	stop      func() bool
	requested atomic.Bool
}

// NewSource returns a Source whose context carries parent's values. Parent
// cancellation is forwarded as a cancellation request.
func NewSource(parent context.Context) *Source {
	ctx, cancel := context.WithCancelCause(context.WithoutCancel(parent))
	s := &Source{ctx: ctx, cancel: cancel}
	s.stop = context.AfterFunc(parent, func() {
		s.CancelCause(fmt.Errorf("%w: %w", context.Canceled, context.Cause(parent)))
	})
	return s
}

// Context returns the context handed to jobs.
func (s *Source) Context() context.Context { return s.ctx }

// Done is shorthand for Context().Done().
func (s *Source) Done() <-chan struct{} { return s.ctx.Done() }

// Cancel requests cancellation. It reports whether this call performed the
// transition.
func (s *Source) Cancel() bool {
	return s.CancelCause(context.Canceled)
}

// CancelCause requests cancellation with cause. The cause should wrap
// context.Canceled so that observers of Cause treat the stop as cooperative.
func (s *Source) CancelCause(cause error) bool {
	if !s.requested.CompareAndSwap(false, true) {
		return false
	}
	s.cancel(cause)
	return true
}

// Requested reports whether cancellation has been requested.
func (s *Source) Requested() bool { return s.requested.Load() }

// Cause returns why the source was cancelled, or nil.
func (s *Source) Cause() error { return context.Cause(s.ctx) }

// Release detaches the source from its parent and frees its resources.
// It does not count as a cancellation request.
func (s *Source) Release() {
	s.stop()
	s.cancel(context.Canceled)
}
