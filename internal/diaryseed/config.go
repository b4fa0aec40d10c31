package diaryseed

import "time"

// Config holds configuration for a seeding run
type Config struct {
	BaseURL    string        // Base URL of the service
	Days       int           // Number of consecutive days to generate
	Start      time.Time     // First generated date
	Effect     float64       // Planted extra kg lost on exercise days
	Seed       int64         // Generator seed
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated entries
	Verbose    bool          // Enable verbose logging
}

// Entry mirrors the POST /entries request body
type Entry struct {
	Date        string  `json:"date"`
	ExerciseMin int     `json:"exercise_min"`
	SleepHr     float64 `json:"sleep_hr"`
	CalorieKcal int     `json:"calorie_kcal"`
	WeightKg    float64 `json:"weight_kg"`
	Gender      int     `json:"gender"`
	Age         int     `json:"age"`
}

// Analysis mirrors the fields of GET /analysis the seeder checks
type Analysis struct {
	Treatment  string  `json:"treatment"`
	Effect     float64 `json:"effect"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Degenerate bool    `json:"degenerate"`
	Narrative  string  `json:"narrative"`
	Interval   string  `json:"interval"`
	Rows       int     `json:"rows"`
}

// Stats holds run statistics
type Stats struct {
	RunID            string
	EntriesGenerated int
	EntriesSubmitted int
	EntriesFailed    int
	Analyses         map[string]Analysis
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
