package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/oddjob/internal/job"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func event(name string, offset time.Duration, outcome job.Outcome, err error) job.Event {
	return job.Event{
		Job:        name,
		Outcome:    outcome,
		Err:        err,
		StartedAt:  base.Add(offset),
		FinishedAt: base.Add(offset + time.Second),
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Record(ctx, event("a", 0, job.OutcomeCompleted, nil)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, event("b", time.Minute, job.OutcomeFaulted, errors.New("boom"))); err != nil {
		t.Fatal(err)
	}
	e := event("a", 2*time.Minute, job.OutcomeCancelled, nil)
	e.Firing = true
	if _, err := s.Record(ctx, e); err != nil {
		t.Fatal(err)
	}

	all, err := s.Recent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Job != "a" || !all[0].Firing || all[1].Job != "b" {
		t.Fatalf("Recent(all) = %+v", all)
	}
	if all[1].Error != "boom" || all[1].Outcome != job.OutcomeFaulted {
		t.Errorf("faulted run = %+v", all[1])
	}
	if all[0].Duration != time.Second || !all[0].StartedAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("timing = %+v", all[0])
	}

	onlyA, err := s.Recent(ctx, "a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 1 || onlyA[0].Outcome != job.OutcomeCancelled {
		t.Errorf("Recent(a, 1) = %+v", onlyA)
	}
}

func TestStore_Prune(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		if _, err := s.Record(ctx, event("x", time.Duration(i)*time.Hour, job.OutcomeCompleted, nil)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned = %d, want 2", n)
	}
	left, _ := s.Recent(ctx, "", 0)
	if len(left) != 3 {
		t.Errorf("left = %d, want 3", len(left))
	}
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, event("kept", 0, job.OutcomeCompleted, nil)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	runs, err := s.Recent(ctx, "kept", 10)
	if err != nil || len(runs) != 1 {
		t.Errorf("after reopen: %v, %v", runs, err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	r := NewRecorder(s, nil)
	r.JobStarted(event("rec", 0, "", nil))
	r.JobFinished(event("rec", 0, job.OutcomeCompleted, nil))

	runs, err := s.Recent(context.Background(), "rec", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
}
