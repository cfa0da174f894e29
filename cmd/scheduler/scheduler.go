// Package scheduler implements the scheduler command: a long-running
// daemon that audits every configured site once per day.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/perf-auditor/cmd/common"
	internalscheduler "github.com/jonesrussell/north-cloud/perf-auditor/internal/scheduler"
)

// Command returns the scheduler command.
func Command() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the daily audit scheduler",
		Long: `Start the long-running scheduler. Every configured site is run
through the audit pipeline on the configured cron schedule, at most
once per day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			sched, err := internalscheduler.New(
				deps.Pipeline,
				deps.RunLog,
				deps.Config.Audit.Sites,
				deps.Config.Scheduler,
				deps.Logger,
			)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := sched.Start(ctx); err != nil {
				return err
			}

			if runNow {
				sched.RunDue(ctx)
			}

			// Block until interrupted.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}

			sched.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "run due sites immediately on startup")

	return cmd
}
