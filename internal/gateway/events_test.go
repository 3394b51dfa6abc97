package gateway

import (
	"testing"

	"github.com/flemzord/oddjob/internal/job"
)

func TestHub_FanOut(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	hub.JobStarted(job.Event{Job: "x"})

	if msg := <-a; msg.Type != "started" || msg.Job != "x" {
		t.Errorf("a got %+v", msg)
	}
	if msg := <-b; msg.Type != "started" {
		t.Errorf("b got %+v", msg)
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("channel should be closed after cancel")
	}
	if hub.Subscribers() != 1 {
		t.Errorf("Subscribers = %d, want 1", hub.Subscribers())
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	for range subscriberBuffer + 10 {
		hub.JobFinished(job.Event{Job: "spam", Outcome: job.OutcomeCompleted})
	}
	if hub.Dropped() != 10 {
		t.Errorf("Dropped = %d, want 10", hub.Dropped())
	}
}
