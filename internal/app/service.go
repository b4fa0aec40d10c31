// Package service runs the diary pipeline: store, frame builder and
// effect estimator, on behalf of the HTTP API, the HTML page and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/dietcause/internal/adapters/repository"
	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/frame"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
	"github.com/okian/dietcause/pkg/metrics"
)

// Service implements the diary operations used by every input surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	learner estimator.Learner

	// Configuration
	tailSize         int
	defaultTreatment model.Treatment

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the diary store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLearner sets the effect estimator.
func WithLearner(learner estimator.Learner) Option {
	return func(s *Service) {
		if learner != nil {
			s.learner = learner
		}
	}
}

// WithTailSize sets how many raw rows accompany a report.
func WithTailSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.tailSize = n
		}
	}
}

// WithDefaultTreatment sets the treatment analysed when none is given.
func WithDefaultTreatment(t model.Treatment) Option {
	return func(s *Service) {
		if _, err := model.ParseTreatment(string(t)); err == nil {
			s.defaultTreatment = t
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithStore it keeps the diary in memory.
func New(opts ...Option) *Service {
	s := &Service{
		tailSize:         10,
		defaultTreatment: model.TreatmentExercise,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.learner == nil {
		s.learner = estimator.NewLRS()
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.started = true
	s.logger.Info(ctx, "diary service started",
		logger.Int("tailSize", s.tailSize),
		logger.String("defaultTreatment", s.defaultTreatment.String()),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "closing store failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "diary service stopped")
}

// DefaultTreatment returns the treatment used when a request names none.
func (s *Service) DefaultTreatment() model.Treatment {
	return s.defaultTreatment
}

// TailSize returns the default number of raw rows in a tail.
func (s *Service) TailSize() int {
	return s.tailSize
}

// Submit validates an entry and appends it to the diary.
func (s *Service) Submit(ctx context.Context, e model.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Missing = nil
	if err := s.store.Append(ctx, e); err != nil {
		s.log().Error(ctx, "append failed", logger.Error(err))
		return fmt.Errorf("append entry: %w", err)
	}
	metrics.RecordEntryAppended()
	s.log().Debug(ctx, "entry appended", logger.String("date", e.DateString()))
	return nil
}

// Tail returns the last n raw rows in storage order; n <= 0 uses the
// configured tail size.
func (s *Service) Tail(ctx context.Context, n int) (model.Log, error) {
	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.tailSize
	}
	return log.Tail(n), nil
}

// Analyze runs log -> frame -> estimate for one treatment. An empty
// treatment analyses the default one. On ErrInsufficientData and
// ErrAnalysis the returned Report still carries Tail and Treatment.
func (s *Service) Analyze(ctx context.Context, treatment model.Treatment) (Report, error) {
	start := time.Now()
	if treatment == "" {
		treatment = s.defaultTreatment
	}
	if _, err := model.ParseTreatment(string(treatment)); err != nil {
		return Report{}, err
	}
	report := Report{Treatment: treatment}

	outcome := metrics.OutcomeOK
	defer func() {
		metrics.RecordAnalysis(treatment.String(), outcome)
		metrics.RecordAnalysisLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	log, err := s.load(ctx)
	if err != nil {
		outcome = metrics.OutcomeNoData
		if !errors.Is(err, ErrNoData) {
			outcome = metrics.OutcomeError
		}
		return report, err
	}
	report.Tail = log.Tail(s.tailSize)

	f, err := frame.Build(log, treatment)
	if err != nil {
		if errors.Is(err, frame.ErrInsufficientData) {
			outcome = metrics.OutcomeInsufficient
			return report, fmt.Errorf("%w: %w", ErrInsufficientData, err)
		}
		outcome = metrics.OutcomeError
		return report, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	report.Median = f.Median
	report.Rows = f.Len()
	report.GroupMeans = f.GroupMeans()

	est, err := s.learner.EstimateATE(ctx, f.Features(), f.Treatments(), f.Outcomes())
	if err != nil {
		s.log().Warn(ctx, "estimation failed",
			logger.String("treatment", treatment.String()),
			logger.Int("rows", f.Len()),
			logger.Error(err),
		)
		if errors.Is(err, estimator.ErrInsufficientData) {
			outcome = metrics.OutcomeInsufficient
			return report, fmt.Errorf("%w: %w", ErrInsufficientData, err)
		}
		outcome = metrics.OutcomeError
		return report, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	report.Estimate = est
	metrics.UpdateLastEstimate(treatment.String(), est.Effect, f.Len())

	s.log().Debug(ctx, "analysis complete",
		logger.String("treatment", treatment.String()),
		logger.Int("rows", f.Len()),
		logger.Float64("effect", est.Effect),
		logger.Bool("degenerate", est.Degenerate),
	)
	return report, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":          s.started,
		"tailSize":         s.tailSize,
		"defaultTreatment": s.defaultTreatment.String(),
		"treatments":       slices.Clone(model.Treatments()),
	}
	if n, err := repository.Count(ctx, s.store); err == nil {
		stats["entries"] = n
		metrics.UpdateLogRows(n)
	} else {
		stats["storeError"] = err.Error()
	}
	return stats
}

func (s *Service) load(ctx context.Context) (model.Log, error) {
	log, err := s.store.LoadAll(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	if err != nil {
		s.log().Error(ctx, "load failed", logger.Error(err))
		return nil, fmt.Errorf("load diary: %w", err)
	}
	metrics.UpdateLogRows(len(log))
	return log, nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
