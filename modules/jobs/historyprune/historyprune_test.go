package historyprune

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/history"
	"github.com/flemzord/oddjob/internal/job"
)

func appContext(t *testing.T) (*core.AppContext, *history.Store) {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
	appCtx.RegisterService(core.ServiceHistory, store)
	return appCtx, store
}

func record(t *testing.T, store *history.Store, name string, at time.Time) {
	t.Helper()
	_, err := store.Record(context.Background(), job.Event{
		Job:        name,
		Outcome:    job.OutcomeCompleted,
		StartedAt:  at,
		FinishedAt: at.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
}

func TestHistoryPrune_DeletesOldRuns(t *testing.T) {
	t.Parallel()

	appCtx, store := appContext(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	record(t, store, "old", now.Add(-48*time.Hour))
	record(t, store, "recent", now.Add(-time.Hour))

	m := &Module{config: Config{Retention: 24 * time.Hour}, clock: clock.Fixed(now)}
	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := store.Recent(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Job != "recent" {
		t.Errorf("remaining runs = %+v, want only recent", runs)
	}
}

func TestHistoryPrune_RetentionFromService(t *testing.T) {
	t.Parallel()

	appCtx, _ := appContext(t)
	appCtx.RegisterService(core.ServiceRetention, 7*24*time.Hour)

	mod, err := appCtx.LoadModule("job.history_prune", "prune", nil)
	if err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	if got := mod.(*Module).config.Retention; got != 7*24*time.Hour {
		t.Errorf("Retention = %v, want 168h", got)
	}
}

func TestHistoryPrune_DefaultRetention(t *testing.T) {
	t.Parallel()

	appCtx, _ := appContext(t)
	mod, err := appCtx.LoadModule("job.history_prune", "prune", nil)
	if err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	if got := mod.(*Module).config.Retention; got != defaultRetention {
		t.Errorf("Retention = %v, want %v", got, defaultRetention)
	}
}

func TestHistoryPrune_HistoryDisabled(t *testing.T) {
	t.Parallel()

	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), "")
	if _, err := appCtx.LoadModule("job.history_prune", "prune", nil); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("LoadModule() error = %v, want ErrHistoryDisabled", err)
	}
}

type failingPruner struct{ err error }

func (f failingPruner) Prune(context.Context, time.Time) (int64, error) { return 0, f.err }

func TestHistoryPrune_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	m := &Module{
		config: Config{Retention: time.Hour},
		store:  failingPruner{err: boom},
		clock:  clock.System,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := m.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}
