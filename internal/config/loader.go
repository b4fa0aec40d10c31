package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/model"
)

// Environment variables read before koanf runs.
const (
	EnvPrefix     = "DIETCAUSE_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotenvFile = EnvPrefix + "DOTENV"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DIETCAUSE_CONFIG is set
//  3. env (prefix DIETCAUSE_), after DIETCAUSE_DOTENV is loaded into the
//     process environment when set. Variables already set win over the
//     dotenv file.
func Load(_ context.Context) (*Config, error) {
	base := New()

	if path := os.Getenv(EnvDotenvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrDotenv, path, err)
		}
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DIETCAUSE_STORE_PATH -> store_path (flat keys, underscores kept to
	// match the koanf tags).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TailSize <= 0:
		return fmt.Errorf("%w: tail_size must be positive", ErrInvalidConfig)
	case c.CIAlpha <= 0 || c.CIAlpha >= 1:
		return fmt.Errorf("%w: ci_alpha must be in (0, 1)", ErrInvalidConfig)
	case c.BootstrapSamples < 0 || c.BootstrapSize < 0:
		return fmt.Errorf("%w: bootstrap settings must not be negative", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case BackendCSV, BackendSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("%w: store_path must not be empty for %s", ErrInvalidConfig, c.StoreBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if _, err := estimator.ParseCovariance(c.CICovariance); err != nil {
		return fmt.Errorf("%w: ci_covariance: %w", ErrInvalidConfig, err)
	}
	if _, err := model.ParseTreatment(c.DefaultTreatment); err != nil {
		return fmt.Errorf("%w: default_treatment: %w", ErrInvalidConfig, err)
	}
	return nil
}
