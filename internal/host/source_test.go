package host

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSource_CancelOnce(t *testing.T) {
	t.Parallel()

	src := NewSource(context.Background())
	defer src.Release()

	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if src.Cancel() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("transitions = %d, want 1", wins)
	}
	if !src.Requested() {
		t.Error("expected Requested")
	}
	<-src.Done()
}

func TestSource_ParentDeadlineSurfacesAsCancellation(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	src := NewSource(parent)
	defer src.Release()

	cancel()
	<-src.Done()

	if !errors.Is(src.Context().Err(), context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", src.Context().Err())
	}
	if !src.Requested() {
		t.Error("expected parent cancellation to count as a request")
	}
}

func TestSource_ReleaseIsNotARequest(t *testing.T) {
	t.Parallel()

	src := NewSource(context.Background())
	src.Release()
	if src.Requested() {
		t.Error("Release should not mark a request")
	}
}

func TestSource_CauseKept(t *testing.T) {
	t.Parallel()

	src := NewSource(context.Background())
	defer src.Release()

	cause := errors.Join(errors.New("job x faulted"), context.Canceled)
	src.CancelCause(cause)
	if !errors.Is(src.Cause(), context.Canceled) {
		t.Errorf("Cause = %v", src.Cause())
	}
}
