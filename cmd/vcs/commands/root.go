package commands

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"snapvault/pkg/app"
	"snapvault/pkg/config"
	"snapvault/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	// TV is the open repository shared by subcommands.
	TV *app.App
	// restoreLogger flushes the CLI logger and reinstalls the previous one.
	restoreLogger func()
)

var rootCmd = &cobra.Command{
	Use:   "vcs",
	Short: "A minimal local version control system",
	Long: `vcs stages file contents, records them as numbered commits and restores
the working tree to any earlier commit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE opens the repository before every subcommand
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsRepo(cmd) {
			return nil
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		TV, err = app.Open(cmd.Context(), wd)
		if errors.Is(err, app.ErrNotRepository) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to open repository: %w", err)
		}
		return nil
	},
}

// needsRepo is false for commands that work outside a repository: init
// (which creates one), help and shell completion.
func needsRepo(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "init", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

// Execute runs the CLI on the process arguments.
func Execute() error {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the CLI on args. The repository handle is closed, saving
// whatever changed, whether or not the command succeeded.
func ExecuteArgs(args []string) error {
	rootCmd.SetArgs(protectDashArgs(args))
	err := rootCmd.Execute()
	if TV != nil {
		err = errors.Join(err, TV.Close())
		TV = nil
	}
	if restoreLogger != nil {
		restoreLogger()
		restoreLogger = nil
	}
	return err
}

// rawArgsAnnotation marks commands whose positional arguments may start with
// a dash, such as "checkout -1" or "commit -wip".
const rawArgsAnnotation = "vcs.raw-args"

// protectDashArgs inserts "--" in front of the first argument of a marked
// command that looks like a flag the command does not define, so cobra
// passes it on as a positional argument instead of rejecting it.
func protectDashArgs(args []string) []string {
	cmd, _, err := rootCmd.Find(args)
	if err != nil || cmd.Annotations[rawArgsAnnotation] == "" {
		return args
	}
	start := slices.Index(args, cmd.Name())
	if start < 0 {
		return args
	}
	cmd.InitDefaultHelpFlag()

	for i := start + 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if len(arg) < 2 || arg[0] != '-' {
			continue
		}

		f, inline := lookupFlag(cmd, arg)
		if f == nil {
			return slices.Insert(slices.Clone(args), i, "--")
		}
		if !inline && f.NoOptDefVal == "" {
			i++ // the value is the next argument
		}
	}
	return args
}

// lookupFlag finds the flag arg names on cmd or its parents and reports
// whether arg carries its own value ("--message=x", "-mx").
func lookupFlag(cmd *cobra.Command, arg string) (*pflag.Flag, bool) {
	if long, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, inline := strings.Cut(long, "=")
		if f := cmd.Flags().Lookup(name); f != nil {
			return f, inline
		}
		return cmd.InheritedFlags().Lookup(name), inline
	}

	short, inline := arg[1:2], len(arg) > 2
	if f := cmd.Flags().ShorthandLookup(short); f != nil {
		return f, inline
	}
	return cmd.InheritedFlags().ShorthandLookup(short), inline
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .vcs/config.yaml, then $HOME/.vcs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig loads configuration, then installs the logger it asks for.
func initConfig() {
	used, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}

	restore, err := logging.Setup(viper.GetString("log.level"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Log setup error:", err)
		os.Exit(1)
	}
	restoreLogger = restore
	if used != "" {
		zap.L().Debug("using config file", zap.String("path", used))
	}
}
