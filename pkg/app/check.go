package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/flemzord/oddjob/internal/builder"
	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/core"
)

// CheckResult describes a configuration that passed Check.
type CheckResult struct {
	Path   string
	Config *config.Config
	// Jobs lists the host's job names in order.
	Jobs []string
}

// Check loads the configuration and instantiates every job without running
// any of them, so kind-specific settings are validated too. The run history
// database is opened (and created if missing) when history is enabled.
func Check(ctx context.Context, explicit string) (*CheckResult, error) {
	cfg, path, err := LoadConfig(explicit)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = svc.Close() }()

	appCtx := core.NewAppContext(logger, config.DataDir(cfg))
	svc.publish(appCtx)

	b := builder.New().UseLogger(logger)
	if err := appCtx.Register(b, config.JobSpecs(cfg)); err != nil {
		return nil, err
	}
	h, err := b.Build()
	if err != nil {
		return nil, err
	}
	names := h.Names()
	if err := h.Close(); err != nil {
		return nil, fmt.Errorf("app: releasing checked jobs: %w", err)
	}
	return &CheckResult{Path: path, Config: cfg, Jobs: names}, nil
}
