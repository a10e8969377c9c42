package root

import (
	"encoding/json"

	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/spf13/cobra"
)

func newRecommendCmd(opts *storeOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Print quest recommendations for a user as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, deps, _, cleanup, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			matches, err := deps.Services.Matching.RecommendQuests(ctx, args[0], top)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", matching.DefaultTopN, "Number of quests to return")
	return cmd
}
