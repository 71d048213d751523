package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkm418/padel-intelligence/internal/app"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

func newWatchCmd(s *session) *cobra.Command {
	flags := &incrementalFlags{}
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run incremental syncs on an interval until interrupted",
		Long: `Run an incremental sync immediately and then once per interval. Without
DB_URL, match history is kept in memory for the lifetime of the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}
			return s.run(cmd, app.Options{InMemoryFallback: true}, func(ctx context.Context) error {
				every := interval
				if every <= 0 {
					every = s.cfg.SyncWatchInterval
				}
				s.logger.Info("watch started", "interval", every.String(), "store", s.runtime.Store)

				return s.runtime.Service.Watch(ctx, input, every, func(summary usecase.RunSummary, runErr error) {
					if runErr != nil {
						s.logger.Error("watch run failed", "run_id", summary.RunID, "error", runErr)
						return
					}
					if err := s.report(summary); err != nil {
						s.logger.Warn("print run summary failed", "error", err)
					}
				})
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between runs (default SYNC_WATCH_INTERVAL)")
	return cmd
}
