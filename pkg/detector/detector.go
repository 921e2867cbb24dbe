// Package detector identifies the record format of game log files.
package detector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Result holds the outcome of analyzing one document.
type Result struct {
	Format       Format
	Confidence   float64 // 0.0 to 1.0
	SampledLines int     // Non-blank lines inspected in line mode
	MatchedLines int     // Sampled lines that were mjai events
	Reason       string  // Why the document was not recognized
}

// Detector inspects documents to identify their record format.
type Detector struct {
	fs         afero.Fs
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample in line mode (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithFs sets the filesystem DetectFromFile reads from.
func WithFs(fs afero.Fs) Option {
	return func(d *Detector) {
		if fs != nil {
			d.fs = fs
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		fs:         afero.NewOsFs(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile reads a file and detects its format.
func (d *Detector) DetectFromFile(_ context.Context, path string) (Result, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return Result{}, err
	}
	return d.Detect(data), nil
}

// Detect analyzes a whole document. A document that is one JSON value is
// judged by its shape; anything else is sampled line by line for mjai events.
func (d *Detector) Detect(data []byte) Result {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Result{Format: FormatUnknown, Reason: "document is empty"}
	}

	if gjson.ValidBytes(trimmed) {
		return detectDocument(gjson.ParseBytes(trimmed))
	}

	return d.detectLines(trimmed)
}

func detectDocument(root gjson.Result) Result {
	if !root.IsObject() {
		return Result{
			Format: FormatUnknown,
			Reason: fmt.Sprintf("top-level value is a JSON %s, not an object", kind(root)),
		}
	}

	if root.Get("log").IsArray() {
		return Result{Format: FormatTenhou6, Confidence: 1}
	}

	if root.Get("type").Type == gjson.String {
		return Result{Format: FormatMjai, Confidence: 1, SampledLines: 1, MatchedLines: 1}
	}

	return Result{Format: FormatUnknown, Reason: `JSON object has no "log" array`}
}

func (d *Detector) detectLines(data []byte) Result {
	result := Result{Format: FormatUnknown}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() && result.SampledLines < d.sampleSize {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		result.SampledLines++
		if isMjaiEvent(line) {
			result.MatchedLines++
		}
	}

	if result.SampledLines > 0 {
		result.Confidence = float64(result.MatchedLines) / float64(result.SampledLines)
	}

	switch {
	case scanner.Err() != nil:
		result.Reason = fmt.Sprintf("document is not valid JSON: %v", scanner.Err())
	case result.MatchedLines == 0:
		result.Reason = "document is not valid JSON"
	case result.MatchedLines < result.SampledLines:
		result.Reason = fmt.Sprintf("%d of %d sampled lines are mjai events", result.MatchedLines, result.SampledLines)
	default:
		result.Format = FormatMjai
	}

	return result
}

func isMjaiEvent(line []byte) bool {
	if !gjson.ValidBytes(line) {
		return false
	}
	ev := gjson.ParseBytes(line)
	return ev.IsObject() && ev.Get("type").Type == gjson.String
}

func kind(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

// Recognized reports whether a known format was detected.
func (r Result) Recognized() bool {
	return r.Format != FormatUnknown && r.Format != ""
}
