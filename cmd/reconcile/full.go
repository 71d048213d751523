package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mkm418/padel-intelligence/internal/app"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

func newFullCmd(s *session) *cobra.Command {
	var input usecase.FullRebuildInput

	cmd := &cobra.Command{
		Use:   "full",
		Short: "Rebuild every aggregate from the venue checkpoint corpus",
		Long: `Load every venue checkpoint file, fold all played matches into player and
relationship aggregates, write the export files and, when DB_URL is set,
replace the stored aggregates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, app.Options{}, func(ctx context.Context) error {
				summary, err := s.runtime.Service.FullRebuild(ctx, input)
				if err != nil {
					return err
				}
				return s.report(summary)
			})
		},
	}

	cmd.Flags().StringVar(&input.CheckpointDir, "checkpoint-dir", "", "venue checkpoint directory (default CHECKPOINT_DIR)")
	cmd.Flags().StringVar(&input.ExportDir, "export-dir", "", "export output directory (default EXPORT_DIR)")
	cmd.Flags().BoolVar(&input.DryRun, "dry-run", false, "compute and export without touching the store")
	return cmd
}
