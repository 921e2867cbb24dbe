package converter

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one directory entry.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// FileResult describes what happened to one directory entry.
type FileResult struct {
	Path   string `json:"path"`
	Output string `json:"output,omitempty"`
	Status Status `json:"status"`
	Events int    `json:"events,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a whole batch.
type Result struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Files     []FileResult  `json:"files"`
}

// HasFailures reports whether any file failed to convert.
func (r *Result) HasFailures() bool {
	return r.Failed > 0
}

func (r *Result) record(f FileResult) {
	switch f.Status {
	case StatusSuccess:
		r.Processed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
	r.Files = append(r.Files, f)
}

// WriteMode selects how output files are written.
type WriteMode string

const (
	// WriteAtomic writes to a temporary file and renames it over the output
	// once every event is written. A failed conversion leaves no output.
	WriteAtomic WriteMode = "atomic"
	// WriteTruncate writes the output in place. A failed conversion can leave
	// a partially written file.
	WriteTruncate WriteMode = "truncate"
)

// ParseWriteMode validates a write mode name.
func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case WriteAtomic, WriteTruncate:
		return m, nil
	default:
		return "", fmt.Errorf("invalid write mode %q (must be atomic or truncate)", s)
	}
}
