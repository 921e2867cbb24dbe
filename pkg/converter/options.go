package converter

import (
	"github.com/spf13/afero"

	"github.com/mjlog/mjconv/pkg/logger"
)

// Option configures a Converter or a Batch.
type Option func(*options)

type options struct {
	fs        afero.Fs
	log       logger.Logger
	writeMode WriteMode
}

func newOptions(opts []Option) options {
	o := options{
		fs:        afero.NewOsFs(),
		log:       logger.NewNop(),
		writeMode: WriteAtomic,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFs sets the filesystem used for all reads and writes.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithWriteMode sets how output files are written (default WriteAtomic).
func WithWriteMode(m WriteMode) Option {
	return func(o *options) {
		if m != "" {
			o.writeMode = m
		}
	}
}
