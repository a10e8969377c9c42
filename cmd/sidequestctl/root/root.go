package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// Execute runs sidequestctl and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &storeOptions{}
	cmd := &cobra.Command{
		Use:           "sidequestctl",
		Short:         "SideQuest operator tool",
		Long:          "sidequestctl seeds, sweeps and inspects a SideQuest document store without running the server.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	opts.bind(cmd)

	cmd.AddCommand(
		newSeedCmd(opts),
		newSweepCmd(opts),
		newRecommendCmd(opts),
		newStatsCmd(opts),
		newTallyCmd(),
		newKeygenCmd(),
	)
	return cmd
}
