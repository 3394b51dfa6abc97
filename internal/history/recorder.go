package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/flemzord/oddjob/internal/job"
)

const recordTimeout = 5 * time.Second

// Recorder is a job.Observer writing one row per finished run. Write
// failures are logged and otherwise ignored.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

var _ job.Observer = (*Recorder)(nil)

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: store, logger: logger}
}

// JobStarted implements job.Observer.
func (r *Recorder) JobStarted(job.Event) {}

// JobFinished implements job.Observer.
func (r *Recorder) JobFinished(e job.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := r.store.Record(ctx, e); err != nil {
		r.logger.Warn("history: recording run failed", "job", e.Job, "error", err)
	}
}
