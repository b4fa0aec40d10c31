package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/dietcause/internal/diaryseed"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays        = 90
	defaultEffect      = 0.3
	defaultSeed        = 42
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		days       = flag.Int("days", defaultDays, "Number of consecutive days to generate")
		start      = flag.String("start", "", "First date, YYYY-MM-DD (default: days before today)")
		effect     = flag.Float64("effect", defaultEffect, "Extra kg lost on exercise days")
		seed       = flag.Int64("seed", defaultSeed, "Generator seed")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated entries (default: generated_entries_RUNID.json)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		diaryseed.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	cfg := &diaryseed.Config{
		BaseURL:    *baseURL,
		Days:       *days,
		Effect:     *effect,
		Seed:       *seed,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if *start != "" {
		d, err := model.ParseDate(*start)
		if err != nil {
			_, _ = os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(2)
		}
		cfg.Start = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if _, err := diaryseed.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
