package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/dietcause/internal/domain/model"
)

// CSVStore keeps the diary in one CSV file with a header row.
// Every operation reads or rewrites the whole file.
type CSVStore struct {
	mu   sync.Mutex
	path string
	mode os.FileMode
}

// NewCSVStore returns a store backed by the file at path. The file is
// created on the first Append.
func NewCSVStore(path string, opts ...Option) (*CSVStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: csv path is required", ErrNotConfigured)
	}
	o := applyOptions(opts)
	return &CSVStore{path: filepath.Clean(path), mode: o.fileMode}, nil
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// Append reads the existing rows, adds the entry and rewrites the file.
func (s *CSVStore) Append(ctx context.Context, entry model.Entry) (err error) {
	start := time.Now()
	defer func() { observe(BackendCSV, "append", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	switch {
	case errors.Is(err, ErrNotFound):
		records = [][]string{header()}
	case err != nil:
		return err
	}

	idx, err := columnIndex(records[0])
	if err != nil {
		return err
	}
	records = append(records, encodeEntry(entry, idx, len(records[0])))
	if err = ctx.Err(); err != nil {
		return err
	}
	return s.writeRecords(records)
}

// LoadAll parses every data row in file order.
func (s *CSVStore) LoadAll(ctx context.Context) (log model.Log, err error) {
	start := time.Now()
	defer func() { observe(BackendCSV, "load", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.readRecords()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	idx, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}
	log = make(model.Log, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := decodeEntry(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		log = append(log, e)
	}
	return log, nil
}

// Close is a no-op; the file is not held open between calls.
func (s *CSVStore) Close() error { return nil }

// readRecords returns the header plus data rows. A missing or empty file
// reports ErrNotFound.
func (s *CSVStore) readRecords() ([][]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// writeRecords replaces the file through a temp file and rename.
func (s *CSVStore) writeRecords(records [][]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod csv: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
