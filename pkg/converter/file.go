package converter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/mjlog/mjconv/pkg/logger"
)

// defaultOutputPerm is the mode of newly written output files.
const defaultOutputPerm os.FileMode = 0o644

// Converter converts single record files with a Codec.
type Converter[R, E any] struct {
	codec     Codec[R, E]
	fs        afero.Fs
	log       logger.Logger
	writeMode WriteMode
}

// NewConverter creates a file converter around codec.
func NewConverter[R, E any](codec Codec[R, E], opts ...Option) *Converter[R, E] {
	o := newOptions(opts)
	return &Converter[R, E]{
		codec:     codec,
		fs:        o.fs,
		log:       o.log,
		writeMode: o.writeMode,
	}
}

// ConvertFile reads inputPath, converts it and writes one JSON line per event
// to outputDir/<stem>.json. The returned FileResult is never nil; on failure
// the error is a *FileError.
func (c *Converter[R, E]) ConvertFile(_ context.Context, inputPath, outputDir string) (*FileResult, error) {
	res := &FileResult{Path: inputPath, Status: StatusFailed}

	events, err := c.load(inputPath)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}

	res.Output = OutputPath(outputDir, inputPath)
	if err := c.write(inputPath, res.Output, events); err != nil {
		res.Error = err.Error()
		return res, err
	}

	c.log.Debug("wrote events", "file", inputPath, "output", res.Output, "events", len(events))
	res.Status = StatusSuccess
	res.Events = len(events)
	return res, nil
}

// Encode runs the whole pipeline but writes the event lines to w instead of
// an output file. It returns the number of events written.
func (c *Converter[R, E]) Encode(_ context.Context, inputPath string, w io.Writer) (int, error) {
	events, err := c.load(inputPath)
	if err != nil {
		return 0, err
	}
	if err := writeLines(w, inputPath, events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func (c *Converter[R, E]) load(path string) ([]E, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, newFileError(path, StageRead, err)
	}
	if !utf8.Valid(data) {
		return nil, newFileError(path, StageRead, errInvalidUTF8)
	}

	record, err := c.codec.Parse(data)
	if err != nil {
		return nil, newFileError(path, StageParse, err)
	}

	events, err := c.codec.Transform(record)
	if err != nil {
		return nil, newFileError(path, StageTransform, err)
	}
	return events, nil
}

func (c *Converter[R, E]) write(inputPath, out string, events []E) error {
	if c.writeMode == WriteTruncate {
		return c.writeInPlace(inputPath, out, events)
	}
	return c.writeAtomic(inputPath, out, events)
}

// writeInPlace truncates out and streams events into it. On failure whatever
// was written before the failing event stays on disk.
func (c *Converter[R, E]) writeInPlace(inputPath, out string, events []E) (err error) {
	f, err := c.fs.Create(out)
	if err != nil {
		return newFileError(inputPath, StageWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newFileError(inputPath, StageWrite, cerr)
		}
	}()

	return writeLines(f, inputPath, events)
}

// writeAtomic writes to a temporary file next to out and renames it into
// place only after every event was written. The result keeps the mode of the
// file it replaces, or gets defaultOutputPerm.
func (c *Converter[R, E]) writeAtomic(inputPath, out string, events []E) error {
	perm := defaultOutputPerm
	if info, err := c.fs.Stat(out); err == nil && info.Mode().IsRegular() {
		perm = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(c.fs, filepath.Dir(out), "."+filepath.Base(out)+".tmp-*")
	if err != nil {
		return newFileError(inputPath, StageWrite, err)
	}
	tmpName := tmp.Name()

	err = writeLines(tmp, inputPath, events)
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = newFileError(inputPath, StageWrite, cerr)
	}
	// TempFile creates 0600 files.
	if err == nil {
		if cherr := c.fs.Chmod(tmpName, perm); cherr != nil {
			err = newFileError(inputPath, StageWrite, cherr)
		}
	}
	if err == nil {
		if rerr := c.fs.Rename(tmpName, out); rerr != nil {
			err = newFileError(inputPath, StageWrite, rerr)
		}
	}

	if err != nil {
		if rmErr := c.fs.Remove(tmpName); rmErr != nil {
			c.log.Warn("failed to remove temporary file", "path", tmpName, "error", rmErr)
		}
		return err
	}
	return nil
}

func writeLines[E any](w io.Writer, inputPath string, events []E) error {
	bw := bufio.NewWriter(w)

	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			// Keep the lines already produced, as a streaming writer would.
			if ferr := bw.Flush(); ferr != nil {
				err = errors.Join(err, ferr)
			}
			return newFileError(inputPath, StageSerialize, err)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return newFileError(inputPath, StageWrite, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return newFileError(inputPath, StageWrite, err)
	}
	return nil
}
