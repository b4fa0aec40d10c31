package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/dietcause/internal/domain/model"
)

// MemoryStore keeps the diary in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries model.Log
	written bool
}

// NewMemoryStore returns an empty store unless WithEntries preloads it.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	s := &MemoryStore{}
	if o.seed != nil {
		s.entries = o.seed
		s.written = true
	}
	return s
}

// Append adds one entry.
func (s *MemoryStore) Append(ctx context.Context, entry model.Entry) (err error) {
	start := time.Now()
	defer func() { observe(BackendMemory, "append", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	entry.Missing = slices.Clone(entry.Missing)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	s.written = true
	return nil
}

// LoadAll returns a copy of the log.
func (s *MemoryStore) LoadAll(ctx context.Context) (log model.Log, err error) {
	start := time.Now()
	defer func() { observe(BackendMemory, "load", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.written {
		return nil, ErrNotFound
	}
	return slices.Clone(s.entries), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
