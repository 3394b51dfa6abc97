package job

import "time"

// Outcome is the terminal state of one job run.
type Outcome string

// Run outcomes.
const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFaulted   Outcome = "faulted"
)

// OutcomeOf classifies the error returned by a run.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCompleted
	case IsCancellation(err):
		return OutcomeCancelled
	default:
		return OutcomeFaulted
	}
}

// Event describes a job run. Firing is true for a single execution of a job
// wrapped by a Scheduled job, and false for a job held directly by a host.
type Event struct {
	Job        string
	Firing     bool
	Outcome    Outcome // empty in JobStarted
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time // zero in JobStarted
}

// Duration returns how long the run took.
func (e Event) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Observer receives job lifecycle notifications. Implementations must be safe
// for concurrent use and must not block; they are observability only.
type Observer interface {
	JobStarted(e Event)
	JobFinished(e Event)
}

// Observers fans notifications out to every non-nil observer in order.
type Observers []Observer

// JobStarted implements Observer.
func (o Observers) JobStarted(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.JobStarted(e)
		}
	}
}

// JobFinished implements Observer.
func (o Observers) JobFinished(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.JobFinished(e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) JobStarted(Event)  {}
func (nopObserver) JobFinished(Event) {}

// NopObserver discards every notification.
var NopObserver Observer = nopObserver{}
