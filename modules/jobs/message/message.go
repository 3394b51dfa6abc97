// Package message provides the job.message kind: it logs one message and
// completes.
package message

import (
	"context"
	"fmt"
	"log/slog"

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

const defaultMessage = "Thats it"

// Config holds the job.message settings.
type Config struct {
	Message string `yaml:"message"`
	Level   string `yaml:"level"`
}

// Module logs Config.Message at Config.Level.
type Module struct {
	config Config
	level  slog.Level
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.message",
		Summary: "Logs a message once and completes.",
		New:     func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("message: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	if m.config.Message == "" {
		m.config.Message = defaultMessage
	}
	if m.config.Level == "" {
		m.config.Level = "info"
	}
	m.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.level.UnmarshalText([]byte(m.config.Level)); err != nil {
		return fmt.Errorf("message: invalid level %q", m.config.Level)
	}
	return nil
}

// Run logs the message. It does nothing when already cancelled.
func (m *Module) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Log(ctx, m.level, m.config.Message)
	return nil
}
