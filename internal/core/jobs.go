package core

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/builder"
	"github.com/flemzord/oddjob/internal/job"
	"github.com/flemzord/oddjob/internal/schedule"
)

// JobSpec is one configured job.
type JobSpec struct {
	Name     string
	Kind     string
	Schedule string
	Config   *yaml.Node
}

// Register loads every spec in order and adds it to b. A scheduled spec
// becomes a factory registration, so each firing gets a fresh instance;
// any other spec is instantiated once here. On failure the instances
// created so far are released.
func (ctx *AppContext) Register(b *builder.Builder, specs []JobSpec) error {
	var loaded []job.Job
	fail := func(err error) error {
		for _, j := range loaded {
			_ = job.Release(j)
		}
		return err
	}

	for _, spec := range specs {
		opts := []builder.Option{builder.WithName(spec.Name)}

		if spec.Schedule == "" {
			mod, err := ctx.LoadModule(spec.Kind, spec.Name, spec.Config)
			if err != nil {
				return fail(fmt.Errorf("loading job %s: %w", spec.Name, err))
			}
			loaded = append(loaded, mod)
			b.AddInstance(mod, opts...)
			ctx.Logger.Info("job loaded", "job", spec.Name, "kind", spec.Kind)
			continue
		}

		sched, err := schedule.Parse(spec.Schedule)
		if err != nil {
			return fail(fmt.Errorf("job %s: %w", spec.Name, err))
		}
		factory, err := ctx.Factory(spec.Kind, spec.Name, spec.Config)
		if err != nil {
			return fail(fmt.Errorf("loading job %s: %w", spec.Name, err))
		}
		b.Add(factory, append(opts, builder.WithSchedule(sched))...)
		ctx.Logger.Info("job loaded", "job", spec.Name, "kind", spec.Kind, "schedule", spec.Schedule)
	}
	return nil
}
