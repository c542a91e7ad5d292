package commands

import (
	"errors"
	"fmt"
	"strconv"

	"snapvault/pkg/commitlog"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:         "checkout <number>",
	Annotations: map[string]string{rawArgsAnnotation: "true"},
	Short:       "Restore working tree files from a commit",
	Long:        `Overwrite the working tree files recorded in the given commit with their
committed contents. Files the commit does not contain are left alone and the
index is not changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintln(out, "Specify commit number.")
			return nil
		}

		seq, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(out, "Invalid commit number.")
			return nil
		}

		_, err = TV.Checkout(cmd.Context(), seq)
		if errors.Is(err, commitlog.ErrInvalidCommit) {
			fmt.Fprintln(out, "Invalid commit number.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("checkout failed: %w", err)
		}

		fmt.Fprintf(out, "Checked out commit #%d.\n", seq)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}
