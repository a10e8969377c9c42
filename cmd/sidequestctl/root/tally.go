package root

import (
	"encoding/json"
	"strings"

	onboardingstore "github.com/dalemusser/sidequest/internal/app/store/onboarding"
	"github.com/dalemusser/sidequest/internal/domain/onboarding"
	"github.com/spf13/cobra"
)

func newTallyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tally <answer>...",
		Short:   "Tally onboarding answers against the built-in question bank",
		Example: "  sidequestctl tally A B C A B D",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := onboardingstore.Bank()
			if err != nil {
				return err
			}
			answers := make([]string, len(args))
			for i, a := range args {
				answers[i] = strings.ToUpper(strings.TrimSpace(a))
			}
			traits, err := onboarding.Tally(bank, answers)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(traits)
		},
	}
}
