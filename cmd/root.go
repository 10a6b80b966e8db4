package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command-line error kinds. Both are reported as a single line and exit status 1.
var (
	ErrArgCount = errors.New("wrong number of arguments")
	ErrBadFlag  = errors.New("bad flag")
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:          "bares",
	Short:        "Merge and plot BA-POMDP experiment results",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: invalid log level %q", ErrBadFlag, logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// minArgs rejects fewer than n positional arguments; usage names them.
func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: %s requires at least %d arguments (%s), got %d",
				ErrArgCount, cmd.Name(), n, usage, len(args))
		}
		return nil
	}
}

// exactArgs rejects anything but n positional arguments.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s requires exactly %d arguments (%s), got %d",
				ErrArgCount, cmd.Name(), n, usage, len(args))
		}
		return nil
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	logrus.SetOutput(os.Stderr)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrBadFlag, err)
	})
}
