package job

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type plainJob struct{}

func (plainJob) Run(context.Context) error { return nil }

type namedJob struct{ name string }

func (j *namedJob) Name() string              { return j.name }
func (j *namedJob) Run(context.Context) error { return nil }

type closingJob struct {
	closes int
	err    error
}

func (j *closingJob) Run(context.Context) error { return nil }
func (j *closingJob) Close() error {
	j.closes++
	return j.err
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	if got := TypeName(plainJob{}); got != "plainJob" {
		t.Errorf("TypeName(value) = %q, want %q", got, "plainJob")
	}
	if got := TypeName(&namedJob{}); got != "namedJob" {
		t.Errorf("TypeName(pointer) = %q, want %q", got, "namedJob")
	}
}

func TestNameOf(t *testing.T) {
	t.Parallel()

	if got := NameOf(plainJob{}, "fallback"); got != "fallback" {
		t.Errorf("NameOf(no name) = %q, want fallback", got)
	}
	if got := NameOf(&namedJob{name: "HelloWorld"}, "fallback"); got != "HelloWorld" {
		t.Errorf("NameOf(named) = %q, want HelloWorld", got)
	}
	if got := NameOf(&namedJob{}, "fallback"); got != "fallback" {
		t.Errorf("NameOf(empty name) = %q, want fallback", got)
	}
}

func TestWithName_ForwardsRunAndClose(t *testing.T) {
	t.Parallel()

	inner := &closingJob{}
	j := WithName("renamed", inner)

	if got := NameOf(j, "x"); got != "renamed" {
		t.Errorf("name = %q, want renamed", got)
	}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := Release(j); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if inner.closes != 1 {
		t.Errorf("closes = %d, want 1", inner.closes)
	}
}

func TestRelease(t *testing.T) {
	t.Parallel()

	if err := Release(plainJob{}); err != nil {
		t.Errorf("Release(non-closer) = %v, want nil", err)
	}

	boom := errors.New("boom")
	c := &closingJob{err: boom}
	if err := Release(c); !errors.Is(err, boom) {
		t.Errorf("Release = %v, want boom", err)
	}
}

func TestFunc(t *testing.T) {
	t.Parallel()

	called := false
	j := Func("fn", func(context.Context) error {
		called = true
		return nil
	})
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called {
		t.Error("function not called")
	}
	if NameOf(j, "") != "fn" {
		t.Errorf("name = %q, want fn", NameOf(j, ""))
	}
}

func TestSafe_RecoversPanic(t *testing.T) {
	t.Parallel()

	j := Func("panicky", func(context.Context) error { panic("kaboom") })
	err := Safe(context.Background(), j)

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %v", err)
	}
	if pe.Value != "kaboom" {
		t.Errorf("Value = %v, want kaboom", pe.Value)
	}
	if !strings.Contains(pe.Stack, "goroutine") {
		t.Error("expected stack trace")
	}
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeCompleted},
		{context.Canceled, OutcomeCancelled},
		{errors.Join(errors.New("x"), context.Canceled), OutcomeCancelled},
		{context.DeadlineExceeded, OutcomeFaulted},
		{errors.New("boom"), OutcomeFaulted},
	}
	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type countingObserver struct{ started, finished int }

func (c *countingObserver) JobStarted(Event)  { c.started++ }
func (c *countingObserver) JobFinished(Event) { c.finished++ }

func TestObservers_FanOut(t *testing.T) {
	t.Parallel()

	a, b := &countingObserver{}, &countingObserver{}
	obs := Observers{a, nil, b}
	obs.JobStarted(Event{})
	obs.JobFinished(Event{})

	if a.started != 1 || b.started != 1 || a.finished != 1 || b.finished != 1 {
		t.Errorf("fan-out counts: a=%+v b=%+v", a, b)
	}
}
