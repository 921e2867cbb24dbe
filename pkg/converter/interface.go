// Package converter runs the read, parse, transform and write pipeline for
// single record files and for flat directories of them.
package converter

import "context"

// Codec turns raw documents into records of type R and records into an
// ordered sequence of events of type E. Events are written with encoding/json.
type Codec[R, E any] interface {
	Parse(data []byte) (R, error)
	Transform(record R) ([]E, error)
}

// FileConverter converts one input file into one output file in outputDir.
type FileConverter interface {
	ConvertFile(ctx context.Context, inputPath, outputDir string) (*FileResult, error)
}
