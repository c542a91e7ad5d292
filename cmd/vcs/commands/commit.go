package commands

import (
	"errors"
	"fmt"
	"strings"

	"snapvault/pkg/commitlog"

	"github.com/spf13/cobra"
)

var commitMsg string

var commitCmd = &cobra.Command{
	Use:         "commit [message...]",
	Annotations: map[string]string{rawArgsAnnotation: "true"},
	Short:       "Record the staged files as a new commit",
	Long:        `Create a new commit holding every staged file, then clear the index.
The message is either given with -m or made of the remaining arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		msg := commitMsg
		if msg == "" {
			msg = strings.Join(args, " ")
		}
		if msg == "" {
			fmt.Fprintln(out, "Specify commit message.")
			return nil
		}

		_, err := TV.Commit(cmd.Context(), msg)
		if errors.Is(err, commitlog.ErrNoChanges) {
			fmt.Fprintln(out, "No changes to commit.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Committed changes: %s\n", msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "commit message")
}
