// Package repository defines the diary store interface and its backends.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/metrics"
)

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store persists the diary log.
type Store interface {
	// Append adds one entry at the end of the log. Ranges are not validated.
	Append(ctx context.Context, entry model.Entry) error

	// LoadAll returns every entry in storage order.
	// Returns ErrNotFound if the store has never been written.
	LoadAll(ctx context.Context) (model.Log, error)

	// Close releases backend resources.
	Close() error
}

// Open builds the store for the named backend. path is ignored by the
// memory backend.
func Open(ctx context.Context, backend, path string, opts ...Option) (Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendCSV, "":
		return NewCSVStore(path, opts...)
	case BackendSQLite:
		return OpenSQLite(ctx, path, opts...)
	case BackendMemory:
		return NewMemoryStore(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Count returns the number of stored entries; a store that was never
// written counts zero.
func Count(ctx context.Context, s Store) (int, error) {
	log, err := s.LoadAll(ctx)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(log), nil
}

// observe records latency and failures of one store operation.
func observe(backend, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(backend, op)
	}
}
