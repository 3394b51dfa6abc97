package job

import "context"

// Forever repeats Step until ctx is cancelled or Step fails.
// OnCancel, when set, is called once just before Run returns because of
// cancellation.
type Forever struct {
	JobName  string
	Step     func(ctx context.Context) error
	OnCancel func()
}

// Name implements Namer.
func (f *Forever) Name() string { return f.JobName }

// Run implements Job.
func (f *Forever) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			if f.OnCancel != nil {
				f.OnCancel()
			}
			return err
		}
		if err := f.Step(ctx); err != nil {
			if IsCancellation(err) && ctx.Err() != nil {
				continue
			}
			return err
		}
	}
}
