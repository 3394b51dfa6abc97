// Package app provides the process entry point shared by the oddjob commands:
// it turns a configuration file into a running job host.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/oddjob/internal/builder"
	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/host"
	"github.com/flemzord/oddjob/internal/redact"
	"github.com/flemzord/oddjob/internal/reload"
	"github.com/flemzord/oddjob/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// watchPollInterval is the config watcher period; zero uses its default.
var watchPollInterval time.Duration

// RunParams configures one invocation of Run.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, config.ResolvePath searches the standard locations.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogLevel overrides log.level from the file when non-empty.
	LogLevel string

	// Timeout overrides the configured timeout when positive.
	Timeout time.Duration

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer

	// NoSignals disables SIGINT/SIGTERM handling; the caller cancels ctx.
	NoSignals bool
}

// LoadConfig resolves, loads and validates the configuration file.
func LoadConfig(explicit string) (*config.Config, string, error) {
	path, err := config.ResolvePath(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Run loads the configuration and runs every configured job until all of
// them return, a job faults, the timeout elapses, or a shutdown signal is
// received. When the configuration enables watching, a valid change to the
// file cancels the running jobs and starts them again from the new file.
//
// The error is nil when no job faulted; otherwise it is a
// *host.AggregateError, or a setup error.
func Run(ctx context.Context, params RunParams) error {
	cfg, path, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return err
	}
	if params.LogLevel != "" {
		cfg.Log.Level = params.LogLevel
	}
	if params.Timeout > 0 {
		cfg.Timeout = params.Timeout
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	redactor := redact.New(configSecrets(cfg)...)
	logger := NewLogger(out, cfg.Log, redactor)

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
		Version:     params.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("app: telemetry shutdown failed", "error", err)
		}
	}()

	if !params.NoSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("app: closing run history failed", "error", err)
		}
	}()

	logger.Info("app: starting", "config", path, "version", params.Version)

	handler := reload.NewHandler(logger.With("component", "reload"))
	for {
		restart, err := runGeneration(ctx, cfg, path, svc, handler, logger)
		if err != nil || !restart {
			return err
		}
		next, ok := handler.Take()
		if !ok {
			return nil
		}
		cfg = next
		for _, secret := range configSecrets(cfg) {
			redactor.AddLiteral(secret)
		}
		if params.Timeout > 0 {
			cfg.Timeout = params.Timeout
		}
		logger.Info("app: restarting jobs with new configuration", "jobs", len(cfg.Jobs))
	}
}

// runGeneration builds a host from cfg, runs it and releases it. restart
// reports whether it ended because the reload handler accepted a new
// configuration.
func runGeneration(
	ctx context.Context,
	cfg *config.Config,
	path string,
	svc *services,
	handler *reload.Handler,
	logger *slog.Logger,
) (restart bool, err error) {
	appCtx := core.NewAppContext(logger, config.DataDir(cfg))
	svc.publish(appCtx)

	b := builder.New().UseLogger(logger)
	svc.observe(b)
	if err := appCtx.Register(b, config.JobSpecs(cfg)); err != nil {
		return false, err
	}
	if cfg.Watch {
		b.AddInstance(reload.NewWatcher(reload.WatcherConfig{
			ConfigPath:   path,
			PollInterval: watchPollInterval,
		}, handler.HandleChange))
	}

	h, err := b.Build()
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	appCtx.RegisterService(core.ServiceHost, h)

	src := host.NewSource(ctx)
	defer src.Release()
	handler.Arm(src)

	if cfg.Timeout > 0 {
		timer := time.AfterFunc(cfg.Timeout, func() {
			if src.CancelCause(fmt.Errorf("%w: timeout after %s", context.Canceled, cfg.Timeout)) {
				logger.Info("app: timeout elapsed, stopping jobs", "timeout", cfg.Timeout)
			}
		})
		defer timer.Stop()
	}

	for _, name := range h.Names() {
		logger.Info("app: running job", "job", name)
	}

	if err := h.Start(src); err != nil {
		return false, err
	}
	return reload.IsRestart(src) && ctx.Err() == nil, nil
}

// ExitCode maps the result of Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// ReportFaults writes one line per job fault in err. Cancellation alone
// writes nothing.
func ReportFaults(w io.Writer, err error) {
	for _, f := range host.Faults(err) {
		_, _ = fmt.Fprintln(w, f)
	}
}
