package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mkm418/padel-intelligence/internal/app"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

type incrementalFlags struct {
	tenants []string
	since   string
	dryRun  bool
}

func (f *incrementalFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.tenants, "tenant", nil, "tenant id to sync, repeatable (default PLAYTOMIC_TENANT_IDS)")
	cmd.Flags().StringVar(&f.since, "since", "", "from-date override, "+usecase.SinceLayout)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "fetch and recompute without writing")
}

func (f *incrementalFlags) input() (usecase.IncrementalInput, error) {
	since, err := validateSince(f.since)
	if err != nil {
		return usecase.IncrementalInput{}, err
	}
	return usecase.IncrementalInput{
		TenantIDs: f.tenants,
		Since:     since,
		DryRun:    f.dryRun,
	}, nil
}

func newIncrementalCmd(s *session) *cobra.Command {
	flags := &incrementalFlags{}

	cmd := &cobra.Command{
		Use:   "incremental",
		Short: "Pull recent matches from the live API and recompute touched players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}
			return s.run(cmd, app.Options{}, func(ctx context.Context) error {
				summary, err := s.runtime.Service.IncrementalSync(ctx, input)
				if err != nil {
					return err
				}
				return s.report(summary)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}
