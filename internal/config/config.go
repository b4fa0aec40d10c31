// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config holding the defaults.
// - Load(ctx) layers defaults, an optional YAML file and the environment.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/model"
)

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the diary store: csv, sqlite or memory.
	StoreBackend string `koanf:"store_backend"`

	// StorePath is the CSV file or SQLite database path.
	StorePath string `koanf:"store_path"`

	// DefaultTreatment is analysed when a request names none.
	DefaultTreatment string `koanf:"default_treatment"`

	// TailSize is the number of raw rows shown with every analysis.
	TailSize int `koanf:"tail_size"`

	// CIAlpha is the two-sided significance level of the effect interval.
	CIAlpha float64 `koanf:"ci_alpha"`

	// CICovariance selects the standard errors: hc1 (robust, normal
	// quantile) or classical (Student-t quantile).
	CICovariance string `koanf:"ci_covariance"`

	// BootstrapSamples switches to a bootstrap interval when > 0.
	BootstrapSamples int `koanf:"bootstrap_samples"`

	// BootstrapSize is the resample size; 0 resamples the whole frame.
	BootstrapSize int `koanf:"bootstrap_size"`

	// Seed drives bootstrap resampling.
	Seed int64 `koanf:"seed"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StoreBackend:     BackendCSV,
		StorePath:        "data/diary.csv",
		DefaultTreatment: string(model.TreatmentExercise),
		TailSize:         10,
		CIAlpha:          0.05,
		CICovariance:     string(estimator.CovarianceHC1),
		BootstrapSamples: 0,
		BootstrapSize:    0,
		Seed:             42,
	}
}
