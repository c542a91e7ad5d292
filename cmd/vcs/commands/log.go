package commands

import (
	"slices"

	"snapvault/pkg/exporter"

	"github.com/spf13/cobra"
)

var (
	logGrep string
	logPath string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := TV.Search(cmd.Context(), logGrep, logPath)
		if err != nil {
			return err
		}

		head, hasHead := TV.Head()
		out := cmd.OutOrStdout()
		for _, e := range slices.Backward(entries) {
			exporter.PrintLogEntry(out, exporter.LogEntry{
				Seq:    e.Seq,
				Record: e.Record,
				IsHead: hasHead && e.Seq == head,
			})
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVar(&logGrep, "grep", "", "only commits whose message contains this text")
	logCmd.Flags().StringVar(&logPath, "path", "", "only commits whose snapshot contains this path")
}
