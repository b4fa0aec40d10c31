package diaryseed

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

// ErrVerification reports that the service did not recover the planted effect.
var ErrVerification = errors.New("planted effect not recovered")

// analyzeTreatments queries the analysis for every treatment.
func analyzeTreatments(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats) error {
	stats.Analyses = make(map[string]Analysis, len(model.Treatments()))
	for _, t := range model.Treatments() {
		a, err := fetchAnalysis(ctx, cfg, client, t.String())
		if err != nil {
			return err
		}
		stats.Analyses[t.String()] = a
		logger.Get().Info(ctx, "analysis",
			logger.String("treatment", t.String()),
			logger.Float64("effect", a.Effect),
			logger.Float64("lower", a.Lower),
			logger.Float64("upper", a.Upper),
			logger.Int("rows", a.Rows))
	}
	return nil
}

// verifyResults checks the exercise estimate against the planted effect.
func verifyResults(ctx context.Context, cfg *Config, stats *Stats) error {
	a, ok := stats.Analyses[model.TreatmentExercise.String()]
	if !ok {
		return fmt.Errorf("%w: no exercise analysis", ErrVerification)
	}
	var issues []string
	if cfg.Effect != 0 && math.Signbit(a.Effect) != math.Signbit(cfg.Effect) {
		issues = append(issues, fmt.Sprintf("effect %.3f has the wrong sign for planted %.3f", a.Effect, cfg.Effect))
	}
	if a.Lower > a.Effect || a.Upper < a.Effect {
		issues = append(issues, fmt.Sprintf("interval [%.3f, %.3f] does not contain %.3f", a.Lower, a.Upper, a.Effect))
	}
	// Rows already in the store before the run only add frame rows.
	if want := stats.EntriesSubmitted - stats.EntriesFailed - 1; a.Rows < want {
		issues = append(issues, fmt.Sprintf("frame has %d rows, want at least %d", a.Rows, want))
	}
	if len(issues) > 0 {
		for _, issue := range issues {
			logger.Get().Error(ctx, "verification issue", logger.String("issue", issue))
		}
		return fmt.Errorf("%w: %v", ErrVerification, issues)
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Float64("planted", cfg.Effect),
		logger.Float64("estimated", a.Effect))
	return nil
}
