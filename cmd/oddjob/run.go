package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/oddjob/internal/host"
	"github.com/flemzord/oddjob/pkg/app"
)

func runCmd() *cobra.Command {
	var (
		logLevel string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured job until done, faulted or interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			err := app.Run(cmd.Context(), app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
				Commit:     commit,
				Date:       date,
				LogLevel:   logLevel,
				Timeout:    timeout,
				LogOutput:  cmd.ErrOrStderr(),
			})
			var agg *host.AggregateError
			if !errors.As(err, &agg) {
				return err
			}
			app.ReportFaults(cmd.ErrOrStderr(), err)
			return &exitError{code: app.ExitCode(err)}
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop all jobs after this duration")
	return cmd
}
