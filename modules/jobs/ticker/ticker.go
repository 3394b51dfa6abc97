// Package ticker provides background job kinds that loop until cancelled:
// job.ticker logs at a fixed interval and job.fail does the same but faults
// after a number of ticks.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/clock"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/job"
)

func init() {
	core.RegisterModule(&Ticker{})
	core.RegisterModule(&Failing{})
}

var (
	_ core.JobModule    = (*Ticker)(nil)
	_ core.Configurable = (*Ticker)(nil)
	_ core.Provisioner  = (*Ticker)(nil)
	_ core.Validator    = (*Ticker)(nil)
	_ core.JobModule    = (*Failing)(nil)
)

const (
	defaultInterval = time.Second
	defaultMessage  = "tock"
)

// Config holds the settings shared by both kinds.
type Config struct {
	Interval time.Duration `yaml:"interval"`
	Message  string        `yaml:"message"`
	// FailAfter is only read by job.fail.
	FailAfter int `yaml:"fail_after"`
}

// Ticker logs Config.Message every Config.Interval until cancelled.
type Ticker struct {
	config Config
	logger *slog.Logger
	clock  clock.Clock
	ticks  int
}

// ModuleInfo implements core.Module.
func (t *Ticker) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.ticker",
		Summary: "Logs a line at a fixed interval until cancelled.",
		New:     func() core.Module { return &Ticker{} },
	}
}

// Configure implements core.Configurable.
func (t *Ticker) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("ticker: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (t *Ticker) Provision(ctx *core.AppContext) error {
	if t.config.Interval == 0 {
		t.config.Interval = defaultInterval
	}
	if t.config.Message == "" {
		t.config.Message = defaultMessage
	}
	if t.clock == nil {
		t.clock = clock.System
	}
	t.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (t *Ticker) Validate() error {
	if t.config.Interval < 0 {
		return errors.New("ticker: interval must not be negative")
	}
	return nil
}

// Run implements job.Job.
func (t *Ticker) Run(ctx context.Context) error {
	return t.loop(nil).Run(ctx)
}

// loop builds the Forever job. check, when set, runs after every tick and
// can end the loop with an error.
func (t *Ticker) loop(check func(ticks int) error) *job.Forever {
	return &job.Forever{
		Step: func(ctx context.Context) error {
			if err := clock.Sleep(ctx, t.clock, t.config.Interval); err != nil {
				return err
			}
			t.ticks++
			t.logger.Info(t.config.Message, "tick", t.ticks)
			if check != nil {
				return check(t.ticks)
			}
			return nil
		},
		OnCancel: func() {
			t.logger.Debug("ticker: stopping", "ticks", t.ticks)
		},
	}
}

// ErrTicksExhausted is returned by job.fail once it reached fail_after ticks.
var ErrTicksExhausted = errors.New("ticker: giving up")

// Failing ticks like Ticker, then faults after Config.FailAfter ticks.
type Failing struct {
	Ticker
}

// ModuleInfo implements core.Module.
func (f *Failing) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.fail",
		Summary: "Ticks like job.ticker, then fails after fail_after ticks.",
		New:     func() core.Module { return &Failing{} },
	}
}

// Provision implements core.Provisioner.
func (f *Failing) Provision(ctx *core.AppContext) error {
	if f.config.FailAfter == 0 {
		f.config.FailAfter = 3
	}
	return f.Ticker.Provision(ctx)
}

// Validate implements core.Validator.
func (f *Failing) Validate() error {
	if f.config.FailAfter < 0 {
		return errors.New("ticker: fail_after must not be negative")
	}
	return f.Ticker.Validate()
}

// Run implements job.Job.
func (f *Failing) Run(ctx context.Context) error {
	return f.loop(func(ticks int) error {
		if ticks >= f.config.FailAfter {
			return fmt.Errorf("%w after %d ticks", ErrTicksExhausted, ticks)
		}
		return nil
	}).Run(ctx)
}
