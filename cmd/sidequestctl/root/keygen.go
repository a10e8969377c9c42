package root

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random SIDEQUEST_SESSION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if length < 32 {
				return errors.New("length must be at least 32 bytes")
			}
			key := securecookie.GenerateRandomKey(length)
			if key == nil {
				return errors.New("could not read random bytes")
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.RawURLEncoding.EncodeToString(key))
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "bytes", 48, "Key length in random bytes")
	return cmd
}
