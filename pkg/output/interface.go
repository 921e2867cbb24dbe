package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders a batch report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose lists every file, not just the failed ones.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}
