package repository

import (
	"os"

	"github.com/okian/dietcause/internal/domain/model"
)

type options struct {
	fileMode os.FileMode
	seed     model.Log
}

func defaultOptions() options {
	return options{fileMode: 0o644}
}

// Option applies a configuration option to a store backend.
type Option func(*options)

// WithFileMode sets the permissions of a CSV file written by the store.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithEntries preloads the memory backend. Other backends ignore it.
func WithEntries(entries model.Log) Option {
	return func(o *options) {
		o.seed = append(model.Log(nil), entries...)
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
