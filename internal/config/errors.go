package config

import (
	"errors"
	"fmt"
)

// Sentinel errors; callers match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrDotenv wraps a failure to read the DIETCAUSE_DOTENV file. It also
	// matches ErrLoadConfig.
	ErrDotenv = fmt.Errorf("%w: dotenv", ErrLoadConfig)
)
