package repository

import "errors"

// Sentinel kinds for diary store errors.
var (
	ErrNotFound       = errors.New("diary store not found")
	ErrMalformed      = errors.New("malformed diary row")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrNotConfigured  = errors.New("store is not configured")
)
