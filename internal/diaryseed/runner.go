package diaryseed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dietcause/pkg/logger"
)

// Run executes the complete seeding run.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting diary seeding",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("days", cfg.Days),
		logger.Float64("effect", cfg.Effect),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("verbose", cfg.Verbose))

	client := newHTTPClient(cfg.Timeout, stats.RunID)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate entries
	entries := Generate(ctx, cfg)
	stats.EntriesGenerated = len(entries)

	// Step 3: Submit entries in order
	if err := submitEntries(ctx, cfg, client, entries, stats); err != nil {
		return stats, fmt.Errorf("entry submission failed: %w", err)
	}

	// Step 4: Analyze every treatment
	if err := analyzeTreatments(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("analysis failed: %w", err)
	}

	// Step 5: Verify the planted effect
	if err := verifyResults(ctx, cfg, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save entries to file
	if err := saveEntriesToFile(ctx, cfg, stats.RunID, entries); err != nil {
		logger.Get().Warn(ctx, "failed to save entries to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveEntriesToFile saves the generated entries to a JSON file.
func saveEntriesToFile(ctx context.Context, cfg *Config, runID string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries to save")
	}

	filename := cfg.OutputFile
	if filename == "" {
		filename = "generated_entries_" + runID + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "entries saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate float64
	if stats.EntriesSubmitted > 0 {
		successRate = float64(stats.EntriesSubmitted-stats.EntriesFailed) / float64(stats.EntriesSubmitted) * PercentageMultiplier
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("entriesGenerated", stats.EntriesGenerated),
		logger.Int("entriesSubmitted", stats.EntriesSubmitted),
		logger.Int("entriesFailed", stats.EntriesFailed),
		logger.Int("analyses", len(stats.Analyses)),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate))
}
