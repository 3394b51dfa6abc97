package host

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoJobs is returned when a host is built without any job.
var ErrNoJobs = errors.New("host: no jobs registered")

// JobError is a fault raised by one job.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %q: %v", e.Job, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// AggregateError collects every job fault of a run, in job order.
// Cancellations are never part of it.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return "host: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("host: %d jobs faulted: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// Faults flattens err into its individual job faults. A nil error or one that
// only represents cancellation yields nil.
func Faults(err error) []error {
	if err == nil {
		return nil
	}
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	if isCancellation(err) {
		return nil
	}
	return []error{err}
}
