package commands

import (
	"errors"
	"fmt"
	"strconv"

	"snapvault/pkg/commitlog"
	"snapvault/pkg/exporter"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show the files recorded in a commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		seq, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(out, "Invalid commit number.")
			return nil
		}
		entry, err := TV.Show(seq)
		if errors.Is(err, commitlog.ErrInvalidCommit) {
			fmt.Fprintln(out, "Invalid commit number.")
			return nil
		}
		if err != nil {
			return err
		}

		head, ok := TV.Head()
		return exporter.PrintSnapshot(out, exporter.LogEntry{
			Seq:    entry.Seq,
			Record: entry.Record,
			IsHead: ok && head == seq,
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
