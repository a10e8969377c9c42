package root

import (
	"fmt"

	"github.com/dalemusser/sidequest/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *storeOptions) *cobra.Command {
	var withCatalog bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create indexes and load the onboarding questions (and demo quests)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, deps, logger, cleanup, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg.SeedCatalog = withCatalog
			if err := bootstrap.EnsureSchema(ctx, nil, cfg, deps, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s store\n", cfg.StoreBackend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "Also insert the demo quest catalog")
	return cmd
}
