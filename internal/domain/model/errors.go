package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidEntry     = errors.New("invalid entry")
	ErrUnknownTreatment = errors.New("unknown treatment")
	ErrUnknownColumn    = errors.New("unknown column")
)
