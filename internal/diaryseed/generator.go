package diaryseed

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

// Generate builds cfg.Days consecutive diary days. A fixed share of days
// are exercise days (30 to 90 min) that lose cfg.Effect kg more than rest
// days (0 min); calories and sleep add smaller effects plus Gaussian noise.
// Weights are recorded to 0.1 kg like a bathroom scale.
func Generate(ctx context.Context, cfg *Config) []Entry {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible synthetic data
	start := cfg.Start
	if start.IsZero() {
		start = time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -cfg.Days)
	}

	exercise := make([]bool, cfg.Days)
	for i := range int(float64(cfg.Days) * exerciseDayShare) {
		exercise[i] = true
	}
	rng.Shuffle(len(exercise), func(i, j int) { exercise[i], exercise[j] = exercise[j], exercise[i] })

	entries := make([]Entry, 0, cfg.Days)
	weight := startWeightKg
	for i := range cfg.Days {
		e := Entry{
			Date:        start.AddDate(0, 0, i).Format(model.DateLayout),
			SleepHr:     5.5 + 0.5*float64(rng.Intn(7)),
			CalorieKcal: 1600 + 50*rng.Intn(21),
			Gender:      model.GenderMale,
			Age:         seedAge,
		}
		if exercise[i] {
			e.ExerciseMin = 30 + 5*rng.Intn(13)
		}
		if i > 0 {
			loss := baseLossKg +
				calorieLossPerKc*float64(referenceKcal-e.CalorieKcal) +
				sleepLossPerHr*(e.SleepHr-referenceSleepHr) +
				noiseSDKg*rng.NormFloat64()
			if exercise[i] {
				loss += cfg.Effect
			}
			weight -= loss
		}
		e.WeightKg = math.Round(weight*10) / 10
		entries = append(entries, e)
	}

	logger.Get().Info(ctx, "entries generated",
		logger.Int("days", len(entries)),
		logger.Float64("plantedEffect", cfg.Effect),
		logger.Any("seed", cfg.Seed))
	return entries
}
