package converter

import (
	"errors"
	"fmt"
)

// Precondition errors abort a batch before any file is processed.
var (
	ErrInputNotFound = errors.New("input directory does not exist")
	ErrInputNotDir   = errors.New("input path is not a directory")
	ErrOutputDir     = errors.New("failed to create output directory")
)

// Stage names the pipeline step a file failed in.
type Stage string

const (
	StageRead      Stage = "read"
	StageParse     Stage = "parse"
	StageTransform Stage = "transform"
	StageSerialize Stage = "serialize"
	StageWrite     Stage = "write"
)

// Stage sentinels, matched with errors.Is against a *FileError.
var (
	ErrRead      = errors.New("read error")
	ErrParse     = errors.New("parse error")
	ErrTransform = errors.New("transform error")
	ErrSerialize = errors.New("serialize error")
	ErrWrite     = errors.New("write error")
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// FileError is a per-file failure. It wraps both the stage sentinel and the
// underlying cause.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	switch e.Stage {
	case StageRead:
		return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
	case StageParse:
		return fmt.Sprintf("failed to parse log from file %s: %v", e.Path, e.Err)
	case StageTransform:
		return fmt.Sprintf("failed to convert %s into events: %v", e.Path, e.Err)
	case StageSerialize:
		return fmt.Sprintf("failed to serialize event from %s to JSON: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("failed to write output for %s: %v", e.Path, e.Err)
	}
}

func (e *FileError) Unwrap() []error {
	return []error{stageSentinel(e.Stage), e.Err}
}

func stageSentinel(s Stage) error {
	switch s {
	case StageRead:
		return ErrRead
	case StageParse:
		return ErrParse
	case StageTransform:
		return ErrTransform
	case StageSerialize:
		return ErrSerialize
	default:
		return ErrWrite
	}
}

func newFileError(path string, stage Stage, err error) *FileError {
	return &FileError{Path: path, Stage: stage, Err: err}
}

// BatchError reports that a batch finished with per-file failures. The
// individual messages were already logged and recorded in the Result.
type BatchError struct {
	Failed int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("some files failed to process (%d errors)", e.Failed)
}
