package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/dietcause/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "csv")
				convey.So(cfg.TailSize, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DIETCAUSE_ADDR", ":8080")
			_ = os.Setenv("DIETCAUSE_STORE_BACKEND", "sqlite")
			_ = os.Setenv("DIETCAUSE_STORE_PATH", "/tmp/diary.db")
			_ = os.Setenv("DIETCAUSE_TAIL_SIZE", "5")
			_ = os.Setenv("DIETCAUSE_CI_ALPHA", "0.1")
			_ = os.Setenv("DIETCAUSE_DEFAULT_TREATMENT", "sleep_hr")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/diary.db")
				convey.So(cfg.TailSize, convey.ShouldEqual, 5)
				convey.So(cfg.CIAlpha, convey.ShouldEqual, 0.1)
				convey.So(cfg.DefaultTreatment, convey.ShouldEqual, "sleep_hr")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
store_backend: memory
tail_size: 20
bootstrap_samples: 200
seed: 7
`
			tmpFile := createTempFile(t, "config.yaml", yamlContent)
			_ = os.Setenv("DIETCAUSE_CONFIG", tmpFile)
			_ = os.Setenv("DIETCAUSE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")          // Overridden by env
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory") // From file
				convey.So(cfg.TailSize, convey.ShouldEqual, 20)           // From file
				convey.So(cfg.BootstrapSamples, convey.ShouldEqual, 200)  // From file
				convey.So(cfg.Seed, convey.ShouldEqual, 7)                // From file
				convey.So(cfg.CIAlpha, convey.ShouldEqual, 0.05)          // Default
			})
		})

		convey.Convey("When loading a dotenv file", func() {
			tmpFile := createTempFile(t, ".env", "DIETCAUSE_LOG_LEVEL=debug\nDIETCAUSE_LOG_FORMAT=json\n")
			_ = os.Setenv("DIETCAUSE_DOTENV", tmpFile)
			_ = os.Setenv("DIETCAUSE_LOG_FORMAT", "text")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("DIETCAUSE_DOTENV", filepath.Join(t.TempDir(), "missing.env"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a dotenv load error", func() {
				convey.So(errors.Is(err, config.ErrDotenv), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DIETCAUSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the covariance is chosen through the environment", func() {
			_ = os.Setenv("DIETCAUSE_CI_COVARIANCE", "classical")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CICovariance, convey.ShouldEqual, "classical")
			})
		})

		convey.Convey("When the covariance is unknown", func() {
			_ = os.Setenv("DIETCAUSE_CI_COVARIANCE", "hc3")

			_, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the environment holds an invalid value", func() {
			_ = os.Setenv("DIETCAUSE_CI_ALPHA", "1.5")

			_, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"DIETCAUSE_CONFIG",
		"DIETCAUSE_DOTENV",
		"DIETCAUSE_LOG_LEVEL",
		"DIETCAUSE_LOG_FORMAT",
		"DIETCAUSE_ADDR",
		"DIETCAUSE_STORE_BACKEND",
		"DIETCAUSE_STORE_PATH",
		"DIETCAUSE_DEFAULT_TREATMENT",
		"DIETCAUSE_TAIL_SIZE",
		"DIETCAUSE_CI_ALPHA",
		"DIETCAUSE_CI_COVARIANCE",
		"DIETCAUSE_BOOTSTRAP_SAMPLES",
		"DIETCAUSE_BOOTSTRAP_SIZE",
		"DIETCAUSE_SEED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
