package output

import (
	"context"
	"fmt"
	"io"

	"github.com/mjlog/mjconv/pkg/converter"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "mjconv: %d files processed, %d errors\n",
		report.Summary.Processed,
		report.Summary.Failed)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.println("=== mjconv Conversion Report ===")
	ew.printf("Input:  %s\n", report.Metadata.InputDir)
	ew.printf("Output: %s\n", report.Metadata.OutputDir)
	ew.println()

	for _, file := range report.Files {
		if file.Status != converter.StatusFailed && !f.opts.Verbose {
			continue
		}
		f.formatFile(ew, file)
	}

	ew.println("---")
	ew.printf("Summary: %d files processed, %d errors, %d skipped, %d events written\n",
		report.Summary.Processed,
		report.Summary.Failed,
		report.Summary.Skipped,
		report.Summary.Events)

	if f.opts.Verbose {
		ew.printf("Run: %s\n", report.Metadata.RunID)
		ew.printf("Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return ew.err
}

func (f *TextFormatter) formatFile(ew *errWriter, file converter.FileResult) {
	switch file.Status {
	case converter.StatusFailed:
		ew.printf("[FAILED] %s\n", file.Path)
		ew.printf("  %s\n", file.Error)
	case converter.StatusSkipped:
		ew.printf("[SKIPPED] %s (subdirectory)\n", file.Path)
	default:
		ew.printf("[OK] %s -> %s (%d events)\n", file.Path, file.Output, file.Events)
	}
}

// errWriter remembers the first write error so formatting code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}

func (e *errWriter) println(args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintln(e.w, args...)
	}
}
