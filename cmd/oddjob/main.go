// Package main is the entry point for the oddjob CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/flemzord/oddjob/internal/gateway"
	_ "github.com/flemzord/oddjob/modules/jobs/command"
	_ "github.com/flemzord/oddjob/modules/jobs/historyprune"
	_ "github.com/flemzord/oddjob/modules/jobs/httpcheck"
	_ "github.com/flemzord/oddjob/modules/jobs/message"
	_ "github.com/flemzord/oddjob/modules/jobs/ticker"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitError carries a process exit code through cobra without printing a
// second message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	if err := rootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oddjob",
		Short:         "Run a fixed set of background and scheduled jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(
		versionCmd(),
		runCmd(),
		configCmd(),
		kindsCmd(),
		nextCmd(),
		initCmd(),
		serviceCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oddjob %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
