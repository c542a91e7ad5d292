package commands

import (
	"errors"
	"fmt"

	"snapvault/pkg/storage"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <digest>",
	Short: "Print the contents of a stored blob",
	Long:  `Write the raw bytes of a blob to stdout. The digest may be abbreviated to any unique prefix of at least 4 characters.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		_, err := TV.Cat(cmd.Context(), args[0], out)
		switch {
		case errors.Is(err, storage.ErrPrefixTooShort):
			fmt.Fprintf(out, "Digest '%s' is too short (need at least %d characters).\n", args[0], storage.MinPrefixLen)
			return nil
		case errors.Is(err, storage.ErrAmbiguousHash):
			fmt.Fprintf(out, "Digest '%s' is ambiguous.\n", args[0])
			return nil
		case errors.Is(err, storage.ErrNotFound):
			fmt.Fprintf(out, "No object matches '%s'.\n", args[0])
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
