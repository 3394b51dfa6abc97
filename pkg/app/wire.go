package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/flemzord/oddjob/internal/builder"
	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/gateway"
	"github.com/flemzord/oddjob/internal/history"
	"github.com/flemzord/oddjob/internal/metrics"
	"github.com/flemzord/oddjob/internal/redact"
)

// services holds the process-wide observers and stores. They outlive a
// single host, so a configuration reload keeps metrics and the event
// stream continuous.
type services struct {
	metrics   *metrics.Metrics
	events    *gateway.Hub
	history   *history.Store // nil when disabled
	recorder  *history.Recorder
	retention time.Duration
}

// openServices creates the shared observers and, unless disabled, opens the
// run history database.
func openServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	s := &services{
		metrics:   metrics.New(),
		events:    gateway.NewHub(),
		retention: cfg.History.Retention,
	}
	if cfg.History.Disabled {
		logger.Info("app: run history disabled")
		return s, nil
	}

	path := config.HistoryPath(cfg)
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("app: opening run history: %w", err)
	}
	s.history = store
	s.recorder = history.NewRecorder(store, logger.With("component", "history"))
	logger.Debug("app: run history opened", "path", path)
	return s, nil
}

// publish registers the services on appCtx for job kinds to look up.
func (s *services) publish(appCtx *core.AppContext) {
	appCtx.RegisterService(core.ServiceMetrics, s.metrics)
	appCtx.RegisterService(core.ServiceEvents, s.events)
	if s.history != nil {
		appCtx.RegisterService(core.ServiceHistory, s.history)
	}
	if s.retention > 0 {
		appCtx.RegisterService(core.ServiceRetention, s.retention)
	}
}

// observe attaches every observer to b.
func (s *services) observe(b *builder.Builder) {
	b.UseObserver(s.metrics).UseObserver(s.events)
	if s.recorder != nil {
		b.UseObserver(s.recorder)
	}
}

func (s *services) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// NewLogger builds the process logger from the log section. Unknown values
// fall back to info level and text output; config.Validate rejects them
// earlier. When r is non-nil every record passes through it.
func NewLogger(w io.Writer, cfg config.LogConfig, r *redact.Redactor) *slog.Logger {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = slog.LevelInfo
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	if r != nil {
		h = redact.NewHandler(h, r)
	}
	return slog.New(h)
}

// configSecrets returns the secret values found in the gateway block and in
// every job's settings.
func configSecrets(cfg *config.Config) []string {
	secrets := redact.Collect(cfg.Gateway)
	for i := range cfg.Jobs {
		secrets = append(secrets, redact.Collect(&cfg.Jobs[i].Config)...)
	}
	return secrets
}
