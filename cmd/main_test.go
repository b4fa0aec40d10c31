package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/dietcause/internal/config"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

func init() { //nolint:gochecknoinits // handlers resolve the global logger
	_ = logger.Init()
}

func memoryConfig() *config.Config {
	cfg := config.New()
	cfg.StoreBackend = config.BackendMemory
	cfg.StorePath = ""
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("DIETCAUSE_ADDR", ":8081")
			_ = os.Setenv("DIETCAUSE_STORE_BACKEND", "memory")
			defer func() {
				_ = os.Unsetenv("DIETCAUSE_ADDR")
				_ = os.Unsetenv("DIETCAUSE_STORE_BACKEND")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendMemory)
			})
		})

		convey.Convey("When testing service creation", func() {
			ctx := context.Background()

			convey.Convey("Then a memory backed service starts", func() {
				svc, err := newService(ctx, memoryConfig())
				convey.So(err, convey.ShouldBeNil)
				defer svc.Stop()
				convey.So(svc.TailSize(), convey.ShouldEqual, 10)
				convey.So(svc.DefaultTreatment(), convey.ShouldEqual, model.TreatmentExercise)
			})

			convey.Convey("And a CSV backed service writes under the configured path", func() {
				cfg := config.New()
				cfg.StorePath = filepath.Join(t.TempDir(), "diary.csv")
				svc, err := newService(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				defer svc.Stop()

				e := model.Entry{
					Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Gender: model.GenderFemale, Age: 30,
					WeightKg: 70, ExerciseMin: 20, SleepHr: 7, CalorieKcal: 2000,
				}
				convey.So(svc.Submit(ctx, e), convey.ShouldBeNil)
				_, err = os.Stat(cfg.StorePath)
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("And an unknown backend is rejected", func() {
				cfg := memoryConfig()
				cfg.StoreBackend = "parquet"
				svc, err := newService(ctx, cfg)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given the assembled handler", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, memoryConfig())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc))
		defer srv.Close()

		get := func(path string) (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
			if err != nil {
				return nil, err
			}
			return http.DefaultClient.Do(req)
		}

		convey.Convey("Then every surface is routed", func() {
			for _, path := range []string{"/healthz", "/stats", "/treatments", "/openapi.yaml", "/api-docs", "/"} {
				resp, err := get(path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then an empty diary reads as 404", func() {
			for _, path := range []string{"/entries", "/analysis"} {
				resp, err := get(path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
			}
		})

		convey.Convey("Then the request id is echoed", func() {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/treatments", nil)
			req.Header.Set("X-Request-ID", "abc-123")
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.Header.Get("X-Request-ID"), convey.ShouldEqual, "abc-123")
		})

		convey.Convey("Then the page carries the entry form", func() {
			resp, err := get("/")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(body), convey.ShouldContainSubstring, "<form")
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it returns once the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			ctx := context.Background()
			svc, err := newService(ctx, memoryConfig())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("DIETCAUSE_TAIL_SIZE", "0")
			defer func() { _ = os.Unsetenv("DIETCAUSE_TAIL_SIZE") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
