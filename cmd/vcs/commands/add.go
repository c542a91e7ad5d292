package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"snapvault/pkg/ingester"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Add file contents to the index",
	Long: `Store the current contents of each file and stage it for the next commit.
Directories are added recursively, skipping .vcs, .git and anything matched
by .vcsignore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintln(out, "Specify file to add.")
			return nil
		}

		results, err := TV.Add(cmd.Context(), args...)

		var pathErr *fs.PathError
		switch {
		case errors.Is(err, ingester.ErrPathNotFound) && errors.As(err, &pathErr):
			fmt.Fprintf(out, "File '%s' does not exist.\n", pathErr.Path)
			return nil
		case errors.Is(err, ingester.ErrOutsideWorkTree) && errors.As(err, &pathErr):
			fmt.Fprintf(out, "File '%s' is outside the repository.\n", pathErr.Path)
			return nil
		case errors.Is(err, ingester.ErrInRepoDir) && errors.As(err, &pathErr):
			fmt.Fprintf(out, "File '%s' belongs to the repository metadata.\n", pathErr.Path)
			return nil
		case err != nil:
			return err
		}

		for _, r := range results {
			fmt.Fprintf(out, "Added '%s'.\n", r.Path)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "⚠️  No files added.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
