package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/host"
)

// ErrRestart is the cancellation cause recorded when a new configuration
// was accepted. It wraps context.Canceled so jobs treat it as a normal stop.
var ErrRestart = fmt.Errorf("reload: configuration changed: %w", context.Canceled)

// Handler turns watcher events into host restarts.
type Handler struct {
	logger *slog.Logger

	mu      sync.Mutex
	src     *host.Source
	pending *config.Config
}

// NewHandler creates a reload handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Arm points the handler at the source of the current host generation and
// discards any configuration accepted for the previous one.
func (h *Handler) Arm(src *host.Source) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.src = src
	h.pending = nil
}

// Take returns the accepted configuration, if any, and clears it.
func (h *Handler) Take() (*config.Config, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cfg := h.pending
	h.pending = nil
	return cfg, cfg != nil
}

// HandleChange loads and validates the changed file. A rejected file leaves
// the running jobs untouched.
func (h *Handler) HandleChange(ev Event) {
	if ev.Type == EventRemoved {
		h.logger.Warn("reload: configuration file removed, keeping current jobs", "path", ev.ConfigPath)
		return
	}

	cfg, err := h.load(ev.ConfigPath)
	if err != nil {
		h.logger.Error("reload: new configuration rejected", "path", ev.ConfigPath, "error", err)
		return
	}

	h.mu.Lock()
	src := h.src
	h.pending = cfg
	h.mu.Unlock()

	if src == nil {
		return
	}
	h.logger.Info("reload: configuration changed, restarting jobs", "path", ev.ConfigPath)
	src.CancelCause(ErrRestart)
}

func (h *Handler) load(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsRestart reports whether the source was cancelled for a reload.
func IsRestart(src *host.Source) bool {
	return errors.Is(src.Cause(), ErrRestart)
}
