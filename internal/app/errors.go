package service

import "errors"

// Sentinel kinds returned by the analysis pipeline. Callers map them to
// user-visible warnings.
var (
	ErrNoData           = errors.New("no diary data yet")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrAnalysis         = errors.New("analysis failed")
)
