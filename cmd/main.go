package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/dietcause/internal/adapters/http/api"
	"github.com/okian/dietcause/internal/adapters/http/site"
	"github.com/okian/dietcause/internal/adapters/http/swagger"
	"github.com/okian/dietcause/internal/adapters/repository"
	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/config"
	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
	"github.com/okian/dietcause/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 15 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService opens the configured store and starts the diary service on it.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	store, err := repository.Open(ctx, cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return nil, err
	}

	learner := estimator.NewLRS(
		estimator.WithAlpha(cfg.CIAlpha),
		estimator.WithCovariance(estimator.Covariance(cfg.CICovariance)),
		estimator.WithBootstrap(cfg.BootstrapSamples, cfg.BootstrapSize),
		estimator.WithSeed(cfg.Seed),
	)

	svc := service.New(
		service.WithStore(store),
		service.WithLearner(learner),
		service.WithTailSize(cfg.TailSize),
		service.WithDefaultTreatment(model.Treatment(cfg.DefaultTreatment)),
		service.WithLogger(logger.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

// newHandler registers every route on a fresh mux and wraps it with
// request logging.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	api.NewServer(svc).Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux, svc)

	return api.RequestLogging(mux, logger.Named("http"))
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the diary row gauge.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics. GetStats already
// refreshes the row gauge; a store error is only logged.
func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	stats := svc.GetStats(ctx)
	if msg, ok := stats["storeError"].(string); ok {
		logger.Get().Warn(ctx, "store unavailable for stats", logger.String("error", msg))
	}
}
