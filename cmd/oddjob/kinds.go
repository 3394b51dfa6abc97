package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/schedule"
)

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the compiled job kinds",
		Run: func(cmd *cobra.Command, _ []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, info := range core.GetModules() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", info.ID, info.Summary)
			}
			_ = tw.Flush()
		},
	}
}

func nextCmd() *cobra.Command {
	var (
		count int
		from  string
	)
	cmd := &cobra.Command{
		Use:   "next <schedule>",
		Short: "Print the next firing times of a schedule expression",
		Long: `Print the next firing times of a schedule expression.

Accepted forms: "every second|minute|hour|day", "daily at HH:MM[:SS]",
"@every <duration>", "@daily" and other descriptors, and 5- or 6-field
cron expressions. Times are UTC.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			sched, err := schedule.Parse(args[0])
			if err != nil {
				return err
			}
			start := time.Now().UTC()
			if from != "" {
				if start, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
			}
			for _, t := range schedule.Upcoming(sched, start, count) {
				fmt.Fprintln(cmd.OutOrStdout(), t.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of firing times to print")
	cmd.Flags().StringVar(&from, "from", "", "Start instant (RFC 3339), defaults to now")
	return cmd
}
