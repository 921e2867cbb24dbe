package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjlog/mjconv/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	ListFormat bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect whether a file is a tenhou.net/6 log or mjai events",
		Long: `Inspect a file and report which game record format it holds.

A tenhou.net/6 log is a single JSON object with a "log" array. An mjai file
holds one JSON event per line. Anything else is reported as unknown, with the
reason the known formats did not match.

Example:
  mjconv detect logs/game1.json
  mjconv detect --sample 20 converted/game1.json
  mjconv detect --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.ListFormat {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ListFormat {
				printKnownFormats(cmd.OutOrStdout())
				return nil
			}
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample for line-based formats")
	cmd.Flags().BoolVar(&opts.ListFormat, "list", false, "List the formats that can be detected")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	file := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, file)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd.OutOrStdout(), result, file)
	case "text", "":
		outputDetectText(cmd.OutOrStdout(), result, file)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result detector.Result, file string) {
	_, _ = fmt.Fprintln(w, "=== Format Detection ===")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "File: %s\n", file)

	if !result.Recognized() {
		_, _ = fmt.Fprintln(w, "Format: unknown")
		_, _ = fmt.Fprintf(w, "Reason: %s\n", result.Reason)
		return
	}

	_, _ = fmt.Fprintf(w, "Format: %s\n", formatName(result.Format))
	if result.SampledLines > 0 {
		_, _ = fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
			result.Confidence*100, result.MatchedLines, result.SampledLines)
	}

	switch result.Format {
	case detector.FormatTenhou6:
		_, _ = fmt.Fprintln(w, "\nConvert it with: mjconv <input_directory> <output_directory>")
	case detector.FormatMjai:
		_, _ = fmt.Fprintln(w, "\nThis file is already mjai events and needs no conversion.")
	}
}

// DetectJSON is the JSON form of a detection result.
type DetectJSON struct {
	File         string  `json:"file"`
	Format       string  `json:"format"`
	Confidence   float64 `json:"confidence"`
	SampledLines int     `json:"sampled_lines,omitempty"`
	MatchedLines int     `json:"matched_lines,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

func outputDetectJSON(w io.Writer, result detector.Result, file string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(DetectJSON{
		File:         file,
		Format:       result.Format.String(),
		Confidence:   result.Confidence,
		SampledLines: result.SampledLines,
		MatchedLines: result.MatchedLines,
		Reason:       result.Reason,
	})
}

func printKnownFormats(w io.Writer) {
	for _, f := range detector.KnownFormats() {
		_, _ = fmt.Fprintf(w, "%-8s %s\n", f.Format, f.Name)
		_, _ = fmt.Fprintf(w, "         %s\n", f.Description)
		_, _ = fmt.Fprintf(w, "         e.g. %s\n", f.Example)
	}
}

func formatName(f detector.Format) string {
	for _, info := range detector.KnownFormats() {
		if info.Format == f {
			return info.Name
		}
	}
	return f.String()
}
