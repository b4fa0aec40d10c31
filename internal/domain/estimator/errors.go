package estimator

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInsufficientData    = errors.New("insufficient data for estimation")
	ErrDimension           = errors.New("dimension mismatch")
	ErrDegenerateTreatment = errors.New("treatment has no variation")
	ErrEstimation          = errors.New("estimation failed")
	ErrUnknownCovariance   = errors.New("unknown covariance estimator")
)
