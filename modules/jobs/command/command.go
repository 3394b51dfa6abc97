// Package command provides the job.command kind, which runs an external
// program and faults when it exits unsuccessfully.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

var (
	_ core.JobModule    = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// maxOutput bounds how much of the program's output is logged.
const maxOutput = 4096

// Config holds the job.command settings.
type Config struct {
	// Command is the program followed by its arguments.
	Command Argv              `yaml:"command"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
	// Timeout bounds one execution. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// Argv is a program and its arguments. In YAML it is either a sequence or
// a single string split with shell quoting rules (no expansion).
type Argv []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Argv) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		args, err := shellquote.Split(node.Value)
		if err != nil {
			return fmt.Errorf("command: line %d: %w", node.Line, err)
		}
		*a = args
		return nil
	}
	var args []string
	if err := node.Decode(&args); err != nil {
		return err
	}
	*a = args
	return nil
}

// ErrTimeout is wrapped by the error returned when Config.Timeout elapses.
var ErrTimeout = errors.New("command: timed out")

// Module runs Config.Command.
type Module struct {
	config Config
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.command",
		Summary: "Runs an external command; a non-zero exit is a fault.",
		New:     func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("command: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if len(m.config.Command) == 0 || m.config.Command[0] == "" {
		return errors.New("command: command is required")
	}
	if m.config.Timeout < 0 {
		return errors.New("command: timeout must not be negative")
	}
	return nil
}

// Run implements job.Job.
func (m *Module) Run(ctx context.Context) error {
	runCtx := ctx
	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, m.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, m.config.Command[0], m.config.Command[1:]...)
	cmd.Dir = m.config.Dir
	if len(m.config.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range m.config.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && runCtx.Err() != nil {
		return fmt.Errorf("%w after %s", ErrTimeout, m.config.Timeout)
	}

	m.logger.Debug("command: finished",
		"command", m.config.Command[0],
		"duration", elapsed,
		"output", truncate(out.String()),
	)
	if err != nil {
		return fmt.Errorf("command: %s: %w", m.config.Command[0], err)
	}
	return nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxOutput {
		return s
	}
	return s[:maxOutput] + "..."
}
