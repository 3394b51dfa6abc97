package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/flemzord/oddjob/internal/job"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	t.Parallel()

	m := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m.JobStarted(job.Event{Job: "a", StartedAt: start})
	if got := testutil.ToFloat64(m.running.WithLabelValues("a")); got != 1 {
		t.Errorf("running = %v, want 1", got)
	}

	m.JobFinished(job.Event{Job: "a", Outcome: job.OutcomeCompleted, StartedAt: start, FinishedAt: start.Add(time.Second)})
	m.JobStarted(job.Event{Job: "a", Firing: true})
	m.JobFinished(job.Event{Job: "a", Firing: true, Outcome: job.OutcomeFaulted, Err: errors.New("x")})

	if got := testutil.ToFloat64(m.running.WithLabelValues("a")); got != 0 {
		t.Errorf("running = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("a", "completed", "false")); got != 1 {
		t.Errorf("completed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("a", "faulted", "true")); got != 1 {
		t.Errorf("faulted firings = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.JobStarted(job.Event{Job: "exposed"})
	m.JobFinished(job.Event{Job: "exposed", Outcome: job.OutcomeCancelled})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`oddjob_job_runs_total{firing="false",job="exposed",outcome="cancelled"} 1`,
		"oddjob_job_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
