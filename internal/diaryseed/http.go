package diaryseed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/dietcause/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
	runID  string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration, runID string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		runID:  runID,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", c.runID)
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.runID)
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitEntries posts entries one at a time; the diary store expects a
// single writer.
func submitEntries(ctx context.Context, cfg *Config, client *HTTPClient, entries []Entry, stats *Stats) error {
	url := cfg.BaseURL + "/entries"
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.EntriesSubmitted++
		if err := submitSingleEntry(ctx, client, url, e); err != nil {
			stats.EntriesFailed++
			logger.Get().Warn(ctx, "entry rejected",
				logger.String("date", e.Date),
				logger.Error(err))
			continue
		}
		if cfg.Verbose {
			logger.Get().Debug(ctx, "entry stored",
				logger.Int("index", i),
				logger.String("date", e.Date),
				logger.Float64("weightKg", e.WeightKg))
		}
	}

	logger.Get().Info(ctx, "entry submission completed",
		logger.Int("submitted", stats.EntriesSubmitted),
		logger.Int("failed", stats.EntriesFailed))
	if stats.EntriesFailed > 0 {
		return fmt.Errorf("%d of %d entries rejected", stats.EntriesFailed, stats.EntriesSubmitted)
	}
	return nil
}

// submitSingleEntry posts one entry and checks for 201
func submitSingleEntry(ctx context.Context, client *HTTPClient, url string, e Entry) error {
	resp, err := client.Post(ctx, url, e)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusCreated {
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// fetchAnalysis queries GET /analysis for one treatment
func fetchAnalysis(ctx context.Context, cfg *Config, client *HTTPClient, treatment string) (Analysis, error) {
	resp, err := client.Get(ctx, cfg.BaseURL+"/analysis?treatment="+treatment)
	if err != nil {
		return Analysis{}, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return Analysis{}, err
	}
	if resp.StatusCode != StatusOK {
		return Analysis{}, fmt.Errorf("analysis %s: status %d: %s", treatment, resp.StatusCode, bytes.TrimSpace(body))
	}
	var a Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis %s: %w", treatment, err)
	}
	return a, nil
}
