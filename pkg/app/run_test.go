package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/history"
	"github.com/flemzord/oddjob/internal/host"

	_ "github.com/flemzord/oddjob/modules/jobs/message"
	_ "github.com/flemzord/oddjob/modules/jobs/ticker"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "oddjob.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func run(t *testing.T, ctx context.Context, path string) (*syncBuffer, error) {
	t.Helper()
	var logs syncBuffer
	err := Run(ctx, RunParams{ConfigPath: path, LogOutput: &logs, NoSignals: true})
	return &logs, err
}

func TestRun_InvalidConfigPath(t *testing.T) {
	t.Parallel()

	if _, err := run(t, context.Background(), "/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for invalid config path")
	}
}

func TestRun_InvalidConfigContent(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "not: valid: yaml: [")
	if _, err := run(t, context.Background(), path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "jobs:\n  - name: x\n    kind: job.message\n")
	_, err := run(t, context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("Run() error = %v, want version error", err)
	}
}

func TestRun_OneShotJobRecordsHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `version: "1"
data_dir: `+dir+`
jobs:
  - name: hello
    kind: job.message
    config:
      message: hi there
`)

	logs, err := run(t, context.Background(), path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := logs.String()
	for _, want := range []string{"app: running job", `msg="hi there"`, "host: job has completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}

	store, err := history.Open(context.Background(), filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	runs, err := store.Recent(context.Background(), "hello", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != "completed" {
		t.Errorf("runs = %+v, want one completed run", runs)
	}
}

func TestRun_FaultCancelsOthers(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `version: "1"
history: {disabled: true}
jobs:
  - name: background
    kind: job.ticker
    config: {interval: 10ms}
  - name: broken
    kind: job.fail
    config: {interval: 10ms, fail_after: 2}
`)

	_, err := run(t, context.Background(), path)
	var agg *host.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("Run() error = %v, want *host.AggregateError", err)
	}
	if len(agg.Errors) != 1 {
		t.Fatalf("faults = %d, want 1: %v", len(agg.Errors), agg.Errors)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", ExitCode(err))
	}

	var out bytes.Buffer
	ReportFaults(&out, err)
	if lines := strings.Count(out.String(), "\n"); lines != 1 {
		t.Errorf("ReportFaults wrote %d lines: %q", lines, out.String())
	}
	if !strings.Contains(out.String(), `"broken"`) {
		t.Errorf("report = %q, want job name", out.String())
	}
}

func TestRun_TimeoutIsNotAFault(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `version: "1"
timeout: 100ms
history: {disabled: true}
jobs:
  - name: background
    kind: job.ticker
    config: {interval: 10ms}
`)

	start := time.Now()
	logs, err := run(t, context.Background(), path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Run() returned after %v, before the timeout", elapsed)
	}
	if !strings.Contains(logs.String(), "app: timeout elapsed") {
		t.Errorf("logs missing timeout line:\n%s", logs.String())
	}
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `version: "1"
history: {disabled: true}
jobs:
  - name: background
    kind: job.ticker
    config: {interval: 10ms}
`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := run(t, ctx, path); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

// Not parallel: it shortens the package-level watcher interval.
func TestRun_WatchRestartsOnChange(t *testing.T) {
	old := watchPollInterval
	watchPollInterval = 20 * time.Millisecond
	t.Cleanup(func() { watchPollInterval = old })

	dir := t.TempDir()
	path := writeConfig(t, dir, `version: "1"
watch: true
history: {disabled: true}
jobs:
  - name: first
    kind: job.ticker
    config: {interval: 10ms}
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, RunParams{ConfigPath: path, LogOutput: &logs, NoSignals: true})
	}()

	waitForLog(t, &logs, "job=first")
	time.Sleep(50 * time.Millisecond)

	writeConfig(t, dir, `version: "1"
watch: true
history: {disabled: true}
jobs:
  - name: second-generation
    kind: job.ticker
    config: {interval: 10ms, message: tick}
`)

	waitForLog(t, &logs, "app: restarting jobs with new configuration")
	waitForLog(t, &logs, "job=second-generation")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func waitForLog(t *testing.T, logs *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(logs.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in logs:\n%s", want, logs.String())
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d", got)
	}
	if got := ExitCode(errors.New("boom")); got != 1 {
		t.Errorf("ExitCode(err) = %d", got)
	}
}

func TestReportFaults_CancellationWritesNothing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ReportFaults(&out, context.Canceled)
	ReportFaults(&out, nil)
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, nil)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("output = %q, want JSON record", out)
	}
}

func TestRun_SecretsAreRedacted(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `version: "1"
history: {disabled: true}
jobs:
  - name: leaky
    kind: job.message
    config:
      message: "token is s3cr3t-value"
  - name: holder
    kind: job.ticker
    schedule: every hour
    config:
      api_token: s3cr3t-value
timeout: 50ms
`)

	logs, err := run(t, context.Background(), path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(logs.String(), "s3cr3t-value") {
		t.Errorf("secret leaked into logs:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "token is ***REDACTED***") {
		t.Errorf("expected redacted message in logs:\n%s", logs.String())
	}
}
