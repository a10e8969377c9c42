package root

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd(opts *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the quest expiry sweep and stale quest cleanup once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, deps, _, cleanup, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := deps.Services.Runner.RunNow(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sweep complete")
			return nil
		},
	}
}
