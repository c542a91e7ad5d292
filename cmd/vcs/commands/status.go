package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List staged files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		staged := TV.Status()
		if len(staged) == 0 {
			fmt.Fprintln(out, "No files staged.")
			return nil
		}
		fmt.Fprintln(out, "Staged files:")
		for _, p := range staged {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
