package root

import (
	"encoding/json"

	metricsstore "github.com/dalemusser/sidequest/internal/app/store/metrics"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print user, quest and feedback counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, deps, _, cleanup, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(metricsstore.Fetch(ctx, deps.Backend))
		},
	}
}
