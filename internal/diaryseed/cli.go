package diaryseed

import (
	"os"
)

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`dietcause diary seeder
======================

Generates synthetic diary days with a planted exercise effect, submits them
to a running service, and checks that the analysis recovers the effect.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -days int
        Number of consecutive days to generate (default 90)
  -start string
        First date, YYYY-MM-DD (default: days before today)
  -effect float
        Extra kg lost on exercise days (default 0.3)
  -seed int
        Generator seed (default 42)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Output file for generated entries (default: generated_entries_RUNID.json)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed an empty server with the defaults
  go run ./cmd/seed

  # Smaller planted effect over a longer diary
  go run ./cmd/seed -days 180 -effect 0.1 -url http://localhost:8080
`)
}
