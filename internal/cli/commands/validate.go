package commands

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mjlog/mjconv/pkg/config"
	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/logger"
	"github.com/mjlog/mjconv/pkg/mjai"
	"github.com/mjlog/mjconv/pkg/tenhou"
)

// ValidateOptions holds command-line options for the validate command.
type ValidateOptions struct {
	ConfigFile string
	Quiet      bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file|glob>...",
		Short: "Check that game logs convert without writing output",
		Long: `Validate tenhou.net/6 game logs without writing any output.

Each file is read, parsed and replayed into mjai events exactly as the
converter would. The event lines are then read back to check the stream
starts with start_game and ends with end_game, and the number of events
is printed.
Patterns may use ** to match across directories.

Example:
  mjconv validate logs/2024-01-01.json
  mjconv validate 'logs/**/*.json'

Exit codes:
  0 - Every file converts
  1 - One or more files would fail
  2 - Configuration error or no files matched`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only print failures and the summary")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	files, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched patterns: %v", args)
	}

	conv, err := newConverter(cfg, logger.NewNop())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, file := range files {
		events, err := checkFile(ctx, conv, file)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "[FAIL] %s\n       %v\n", file, err)
			continue
		}
		if !opts.Quiet {
			_, _ = fmt.Fprintf(out, "[OK]   %s (%d events)\n", file, events)
		}
	}

	_, _ = fmt.Fprintf(out, "\nValidated %d file(s): %d ok, %d failed\n", len(files), len(files)-failed, failed)

	if failed > 0 {
		ExitCode = 1
	}
	return nil
}

// checkFile converts file in memory and reads the event lines back, so a
// file passes only if its output would be a well-formed mjai stream.
func checkFile(ctx context.Context, conv *converter.Converter[*tenhou.Log, mjai.Event], file string) (int, error) {
	var buf bytes.Buffer
	n, err := conv.Encode(ctx, file, &buf)
	if err != nil {
		return 0, err
	}

	events, err := mjai.ReadLines(&buf)
	if err != nil {
		return 0, fmt.Errorf("reading back events of %s: %w", file, err)
	}
	if len(events) != n {
		return 0, fmt.Errorf("reading back events of %s: got %d lines, wrote %d", file, len(events), n)
	}
	if n == 0 || events[0].Type != mjai.TypeStartGame || events[n-1].Type != mjai.TypeEndGame {
		return 0, fmt.Errorf("events of %s do not run from %s to %s", file, mjai.TypeStartGame, mjai.TypeEndGame)
	}
	return n, nil
}

// expandPatterns expands each argument as a doublestar glob. An argument
// without glob syntax is kept as is so a missing file is reported as a
// failure rather than silently dropped.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, p := range patterns {
		if !hasGlobMeta(p) {
			files = append(files, p)
			continue
		}
		if !doublestar.ValidatePathPattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", p, err)
		}
		files = append(files, matches...)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasGlobMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
