package core

import (
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/job"
)

// AppContext carries shared resources available to job kinds during
// provisioning and at runtime.
type AppContext struct {
	// Logger for the current job scope.
	Logger *slog.Logger

	// DataDir is the root directory for persistent data (run history).
	DataDir string

	parentLogger *slog.Logger
	services     *services
}

type services struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewAppContext creates an AppContext with the given base logger and data
// directory.
func NewAppContext(logger *slog.Logger, dataDir string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:       logger,
		DataDir:      dataDir,
		parentLogger: logger,
		services:     &services{m: make(map[string]any)},
	}
}

// ForJob returns a context scoped to one configured job, whose logger
// carries the job name and kind. Services are shared with the parent.
func (ctx *AppContext) ForJob(name string, id ModuleID) *AppContext {
	cp := *ctx
	cp.Logger = ctx.parentLogger.With("job", name, "kind", string(id))
	return &cp
}

// RegisterService publishes a shared value under name, replacing any
// previous one.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	defer ctx.services.mu.Unlock()
	ctx.services.m[name] = svc
}

// Service returns the value published under name.
func (ctx *AppContext) Service(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.m[name]
	return svc, ok
}

// ServiceAs returns the service published under name if it has type T.
func ServiceAs[T any](ctx *AppContext, name string) (T, bool) {
	var zero T
	svc, ok := ctx.Service(name)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// LoadModule instantiates and provisions one instance of kind id for the
// job called name. The lifecycle order is:
//
//	New() → Configure(node) → Provision() → Validate()
//
// Configure is skipped when node is nil. The result implements job.Job.
func (ctx *AppContext) LoadModule(id, name string, node *yaml.Node) (JobModule, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("unknown job kind: %s", id)
	}

	mod := info.New()
	jm, ok := mod.(JobModule)
	if !ok {
		return nil, fmt.Errorf("job kind %s: module does not implement job.Job", id)
	}

	if c, ok := mod.(Configurable); ok && node != nil {
		if err := c.Configure(node); err != nil {
			return nil, fmt.Errorf("configuring %s: %w", id, err)
		}
	}

	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(ctx.ForJob(name, info.ID)); err != nil {
			_ = job.Release(jm)
			return nil, fmt.Errorf("provisioning %s: %w", id, err)
		}
	}

	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			_ = job.Release(jm)
			return nil, fmt.Errorf("validating %s: %w", id, err)
		}
	}

	return jm, nil
}

// Factory checks that kind id can be loaded with node, then returns a
// job.Factory producing a fresh provisioned instance on every call. The
// probe instance is released before returning.
func (ctx *AppContext) Factory(id, name string, node *yaml.Node) (job.Factory, error) {
	probe, err := ctx.LoadModule(id, name, node)
	if err != nil {
		return nil, err
	}
	if err := job.Release(probe); err != nil {
		return nil, fmt.Errorf("releasing %s probe: %w", id, err)
	}
	return func() (job.Job, error) {
		return ctx.LoadModule(id, name, node)
	}, nil
}
