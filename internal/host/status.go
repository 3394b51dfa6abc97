package host

import (
	"sync"
	"time"
)

// State is the lifecycle state of a hosted job.
type State string

// Job states.
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFaulted   State = "faulted"
)

// JobStatus is a point-in-time view of one hosted job.
type JobStatus struct {
	Name       string        `json:"name"`
	State      State         `json:"state"`
	StartedAt  time.Time     `json:"started_at,omitzero"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
	Runtime    time.Duration `json:"runtime"`
	LastError  string        `json:"last_error,omitempty"`
}

// Snapshot is a point-in-time view of the host.
type Snapshot struct {
	StartedAt time.Time   `json:"started_at,omitzero"`
	Running   int         `json:"running"`
	Jobs      []JobStatus `json:"jobs"`
}

type tracker struct {
	mu      sync.Mutex
	started time.Time
	jobs    []JobStatus
}

func newTracker(names []string) *tracker {
	t := &tracker{jobs: make([]JobStatus, len(names))}
	for i, n := range names {
		t.jobs[i] = JobStatus{Name: n, State: StatePending}
	}
	return t
}

func (t *tracker) reset(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = now
	for i := range t.jobs {
		t.jobs[i] = JobStatus{Name: t.jobs[i].Name, State: StatePending}
	}
}

func (t *tracker) start(i int, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[i].State = StateRunning
	t.jobs[i].StartedAt = now
}

func (t *tracker) finish(i int, state State, err error, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := &t.jobs[i]
	st.State = state
	st.FinishedAt = now
	st.Runtime = now.Sub(st.StartedAt)
	if err != nil {
		st.LastError = err.Error()
	}
}

func (t *tracker) snapshot(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{StartedAt: t.started, Jobs: make([]JobStatus, len(t.jobs))}
	copy(snap.Jobs, t.jobs)
	for i := range snap.Jobs {
		if snap.Jobs[i].State == StateRunning {
			snap.Running++
			snap.Jobs[i].Runtime = now.Sub(snap.Jobs[i].StartedAt)
		}
	}
	return snap
}
