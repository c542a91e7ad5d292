package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path...>",
	Short: "Remove files from the index",
	Long:  `Unstage files. The files on disk and their stored contents are not touched.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, p := range args {
			if TV.Unstage(p) {
				fmt.Fprintf(out, "Unstaged '%s'.\n", p)
			} else {
				fmt.Fprintf(out, "'%s' is not staged.\n", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
