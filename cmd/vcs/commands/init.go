package commands

import (
	"errors"
	"fmt"
	"os"

	"snapvault/pkg/app"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty repository",
	Long:  `Create the repository directory (.vcs) with an empty object store, staging index and commit log.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		_, err = app.Init(wd)
		if errors.Is(err, app.ErrAlreadyInitialized) {
			fmt.Fprintln(out, "Repository already initialized.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Initialized empty VCS repository in %s/\n", app.RepoDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
