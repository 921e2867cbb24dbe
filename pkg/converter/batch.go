package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mjlog/mjconv/pkg/logger"
)

// Batch converts every eligible file of a flat directory, one at a time.
type Batch struct {
	conv FileConverter
	fs   afero.Fs
	log  logger.Logger
}

// NewBatch creates an orchestrator that hands each eligible file to conv.
func NewBatch(conv FileConverter, opts ...Option) *Batch {
	o := newOptions(opts)
	return &Batch{conv: conv, fs: o.fs, log: o.log}
}

// ConvertDirectory converts the immediate children of inputDir into
// outputDir. Entries are visited in name order. A failing file is logged,
// recorded and counted, and the batch moves on; if any file failed the
// returned error is a *BatchError alongside the complete Result.
//
// Only a missing or non-directory inputDir and an uncreatable outputDir abort
// the batch; in those cases no Result is returned.
func (b *Batch) ConvertDirectory(ctx context.Context, inputDir, outputDir string) (*Result, error) {
	info, err := b.fs.Stat(inputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, inputDir)
		}
		return nil, fmt.Errorf("failed to access input directory %s: %w", inputDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputNotDir, inputDir)
	}

	if err := b.fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOutputDir, outputDir, err)
	}

	entries, err := afero.ReadDir(b.fs, inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	result := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := b.log.With("run", result.RunID)
	log.Debug("starting batch", "input", inputDir, "output", outputDir, "entries", len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(result.StartedAt)
			return result, fmt.Errorf("batch interrupted: %w", err)
		}
		b.visit(ctx, log, result, filepath.Join(inputDir, entry.Name()), outputDir)
	}

	result.Duration = time.Since(result.StartedAt)
	log.Info("processing completed",
		"processed", result.Processed,
		"errors", result.Failed,
		"skipped", result.Skipped,
		"duration", result.Duration.Round(time.Millisecond))

	if result.HasFailures() {
		return result, &BatchError{Failed: result.Failed}
	}
	return result, nil
}

func (b *Batch) visit(ctx context.Context, log logger.Logger, result *Result, path, outputDir string) {
	// Stat follows symlinks, so a link to a directory is skipped like one.
	info, statErr := b.fs.Stat(path)
	if statErr == nil && info.IsDir() {
		log.Info("skipping subdirectory", "path", path)
		result.record(FileResult{Path: path, Status: StatusSkipped})
		return
	}

	if !IsEligible(path) {
		log.Debug("ignoring file with unsupported extension", "path", path)
		return
	}

	// The entry vanished or became unreadable after the listing.
	if statErr != nil {
		err := newFileError(path, StageRead, statErr)
		log.Error("failed to process file", "file", path, "error", err)
		result.record(FileResult{Path: path, Status: StatusFailed, Error: err.Error()})
		return
	}

	log.Info("processing file", "file", path)
	fr, err := b.conv.ConvertFile(ctx, path, outputDir)
	if fr == nil {
		fr = &FileResult{Path: path, Status: StatusSuccess}
	}
	if err != nil {
		fr.Status = StatusFailed
		fr.Error = err.Error()
		log.Error("failed to process file", "file", path, "error", err)
	}
	result.record(*fr)
}
