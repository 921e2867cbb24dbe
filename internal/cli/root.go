// Package cli provides the command-line interface for mjconv.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjlog/mjconv/internal/cli/commands"
	"github.com/mjlog/mjconv/internal/cli/plugins"
	"github.com/mjlog/mjconv/pkg/converter"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitError    = 2
)

// Execute runs mjconv with the process arguments and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs mjconv with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = ExitOK

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// An unknown first word that is not a path may be a plugin.
	if len(args) > 0 && isPluginCandidate(rootCmd, args[0]) {
		if pluginPath, err := plugins.FindPlugin(args[0]); err == nil {
			return plugins.Execute(pluginPath, args[1:], stdout, stderr)
		}
	}

	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if err == nil {
		return commands.ExitCode
	}

	var usageErr *commands.UsageError
	if errors.As(err, &usageErr) {
		if cmd == rootCmd && len(args) == 1 && isPluginCandidate(rootCmd, args[0]) {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(args[0]))
		} else {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
		return ExitError
	}

	// SilenceErrors keeps cobra from printing; the error is printed here once.
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)

	var batchErr *converter.BatchError
	if errors.As(err, &batchErr) {
		return ExitFailures
	}
	return ExitError
}

// isPluginCandidate reports whether name could be a plugin command rather
// than a built-in command, a flag or an input path.
func isPluginCandidate(rootCmd *cobra.Command, name string) bool {
	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, `/\.`) {
		return false
	}
	if isBuiltinCommand(rootCmd, name) {
		return false
	}
	_, err := os.Stat(name)
	return errors.Is(err, os.ErrNotExist)
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command. The root command itself
// converts a directory; everything else is a subcommand.
func NewRootCommand() *cobra.Command {
	rootCmd := commands.NewConvertCommand()
	rootCmd.Long += `

COMMANDS:
  validate, detect, diagnose and version are built in. A directory with the
  same name as a command must be given as a path, such as ./validate.

PLUGINS:
  Any other command is looked up as a standalone binary named mjconv-<command>.

  Plugin locations (searched in order):
    1. Same directory as the mjconv binary
    2. ~/.mjconv/plugins/
    3. Anywhere in PATH`
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.Version = commands.Version
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &commands.UsageError{Err: err}
	})

	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
