// Package output renders batch conversion results for people and machines.
package output

import (
	"time"

	"github.com/mjlog/mjconv/pkg/converter"
)

// Report is the complete batch output.
type Report struct {
	Summary  Summary                `json:"summary"`
	Files    []converter.FileResult `json:"files"`
	Metadata Metadata               `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// Events is the number of events written across all converted files.
	Events int `json:"events"`
}

// Metadata provides context about the batch run.
type Metadata struct {
	RunID      string        `json:"run_id"`
	ConfigFile string        `json:"config_file,omitempty"`
	InputDir   string        `json:"input_dir"`
	OutputDir  string        `json:"output_dir"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// NewReport creates a Report from a batch result.
func NewReport(result *converter.Result, inputDir, outputDir, configFile string) *Report {
	report := &Report{
		Files: result.Files,
		Metadata: Metadata{
			RunID:      result.RunID,
			ConfigFile: configFile,
			InputDir:   inputDir,
			OutputDir:  outputDir,
			StartedAt:  result.StartedAt,
			Duration:   result.Duration,
		},
		Summary: Summary{
			Processed: result.Processed,
			Failed:    result.Failed,
			Skipped:   result.Skipped,
		},
	}
	if report.Files == nil {
		report.Files = []converter.FileResult{}
	}

	for _, f := range result.Files {
		report.Summary.Events += f.Events
	}

	return report
}

// HasFailures returns true if any file failed to convert.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}
