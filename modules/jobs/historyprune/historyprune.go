// Package historyprune provides the job.history_prune kind, which deletes
// run history older than the retention period. It is meant to be scheduled.
package historyprune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/history"
)

func init() {
	core.RegisterModule(&Module{})
}

var (
	_ core.JobModule    = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ pruner            = (*history.Store)(nil)
)

const defaultRetention = 30 * 24 * time.Hour

// ErrHistoryDisabled is returned at provisioning when no history store is
// available.
var ErrHistoryDisabled = errors.New("history_prune: run history is disabled")

type pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the job.history_prune settings.
type Config struct {
	// Retention overrides history.retention from the top-level config.
	Retention time.Duration `yaml:"retention"`
}

// Module prunes the shared history store.
type Module struct {
	config Config
	store  pruner
	clock  clock.Clock
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.history_prune",
		Summary: "Deletes run history older than the retention period.",
		New:     func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("history_prune: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	store, ok := core.ServiceAs[*history.Store](ctx, core.ServiceHistory)
	if !ok {
		return ErrHistoryDisabled
	}
	m.store = store

	if m.config.Retention == 0 {
		if r, ok := core.ServiceAs[time.Duration](ctx, core.ServiceRetention); ok && r > 0 {
			m.config.Retention = r
		} else {
			m.config.Retention = defaultRetention
		}
	}
	if m.clock == nil {
		m.clock = clock.System
	}
	m.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.Retention < 0 {
		return errors.New("history_prune: retention must not be negative")
	}
	return nil
}

// Run implements job.Job.
func (m *Module) Run(ctx context.Context) error {
	cutoff := m.clock.Now().Add(-m.config.Retention)
	n, err := m.store.Prune(ctx, cutoff)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("history_prune: %w", err)
	}
	m.logger.Info("history_prune: pruned runs", "deleted", n, "cutoff", cutoff)
	return nil
}
