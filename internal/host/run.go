package host

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/flemzord/oddjob/internal/job"
)

// RunJob hosts a single job for at most timeout, then releases it. completed
// reports whether the job returned on its own, before the timeout or ctx
// requested cancellation; err carries its fault, if any. A non-positive
// timeout waits for the job indefinitely.
func RunJob(ctx context.Context, j job.Job, timeout time.Duration, opts ...Option) (completed bool, err error) {
	h, err := New([]job.Job{j}, opts...)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	src := NewSource(ctx)
	defer src.Release()

	var interrupted atomic.Bool
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			if src.Cancel() {
				interrupted.Store(true)
			}
		})
		defer timer.Stop()
	}

	err = h.Start(src)
	return !interrupted.Load() && ctx.Err() == nil, err
}
