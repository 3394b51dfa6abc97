// Package gateway provides the gateway.http job kind: an HTTP server
// exposing health, job status, Prometheus metrics, run history and a live
// websocket stream of job events. It runs until the host cancels it.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/core"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Gateway is the HTTP gateway job.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	hub       *Hub
	startedAt time.Time

	// addr is the bound address once listening; read by tests.
	addr chan net.Addr
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "gateway.http",
		Summary: "HTTP status, metrics, run history and live job events",
		New:     func() core.Module { return &Gateway{} },
	}
}

// Name implements job.Namer.
func (g *Gateway) Name() string { return "gateway" }

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger

	if hub, ok := core.ServiceAs[*Hub](ctx, core.ServiceEvents); ok {
		g.hub = hub
	} else {
		g.hub = NewHub()
	}
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", g.config.Bind, err)
	}
	if g.config.RateLimit.RequestsPerSecond < 0 || g.config.RateLimit.Burst < 0 {
		return errors.New("gateway: rate_limit values must not be negative")
	}
	return nil
}

// Run implements job.Job. It listens on the configured address, serves
// until ctx is cancelled, then shuts down gracefully. A listen or serve
// failure is returned as a fault.
func (g *Gateway) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	if g.addr != nil {
		g.addr <- ln.Addr()
	}

	g.startedAt = time.Now()
	server := &http.Server{
		Handler:      g.buildRouter(ctx),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		g.logger.Info("gateway: listening", "addr", ln.Addr().String())
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway: shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		g.logger.Warn("gateway: shutdown incomplete", "error", err)
		_ = server.Close()
	}
	return ctx.Err()
}
