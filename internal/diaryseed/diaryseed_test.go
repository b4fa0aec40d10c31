package diaryseed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dietcause/internal/adapters/http/api"
	"github.com/okian/dietcause/internal/adapters/repository"
	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T, baseURL string) *Config {
	return &Config{
		BaseURL:    baseURL,
		Days:       90,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Effect:     0.3,
		Seed:       42,
		Timeout:    5 * time.Second,
		OutputFile: filepath.Join(t.TempDir(), "out", "entries.json"),
	}
}

func newServer() (*httptest.Server, repository.Store) {
	store := repository.NewMemoryStore()
	svc := service.New(service.WithStore(store))
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), store
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		ctx := context.Background()
		cfg := testConfig(t, "")

		entries := Generate(ctx, cfg)

		Convey("Then it produces consecutive valid days", func() {
			So(entries, ShouldHaveLength, 90)
			So(entries[0].Date, ShouldEqual, "2024-01-01")
			So(entries[89].Date, ShouldEqual, "2024-03-30")
			for _, e := range entries {
				d, err := model.ParseDate(e.Date)
				So(err, ShouldBeNil)
				entry := model.Entry{
					Date: d, ExerciseMin: e.ExerciseMin, SleepHr: e.SleepHr, CalorieKcal: e.CalorieKcal,
					WeightKg: e.WeightKg, Gender: e.Gender, Age: e.Age,
				}
				So(entry.Validate(), ShouldBeNil)
			}
		})

		Convey("Then fewer than half of the days are exercise days", func() {
			active := 0
			for _, e := range entries {
				if e.ExerciseMin > 0 {
					active++
				}
			}
			So(active, ShouldEqual, 36)
		})

		Convey("Then the same seed gives the same diary", func() {
			So(Generate(ctx, cfg), ShouldResemble, entries)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running diary service", t, func() {
		ctx := context.Background()
		srv, store := newServer()
		defer srv.Close()
		cfg := testConfig(t, srv.URL)

		Convey("When the seeder runs", func() {
			stats, err := Run(ctx, cfg)

			Convey("Then every entry is stored and the effect is recovered", func() {
				So(err, ShouldBeNil)
				So(stats.EntriesSubmitted, ShouldEqual, 90)
				So(stats.EntriesFailed, ShouldEqual, 0)
				So(stats.RunID, ShouldNotBeEmpty)
				n, err := repository.Count(ctx, store)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 90)

				exercise := stats.Analyses["exercise_min"]
				So(exercise.Rows, ShouldEqual, 89)
				So(exercise.Effect, ShouldBeGreaterThan, 0)
				So(stats.Analyses, ShouldHaveLength, 3)
			})

			Convey("Then the generated entries are saved", func() {
				raw, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var saved []Entry
				So(json.Unmarshal(raw, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 90)
			})
		})

		Convey("When the service is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given analysis results", t, func() {
		ctx := context.Background()
		cfg := &Config{Effect: 0.3}

		Convey("When the exercise effect has the wrong sign", func() {
			stats := &Stats{EntriesSubmitted: 10, Analyses: map[string]Analysis{
				"exercise_min": {Effect: -0.1, Lower: -0.2, Upper: 0.1, Rows: 9},
			}}
			err := verifyResults(ctx, cfg, stats)
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
		})

		Convey("When the exercise analysis is missing", func() {
			err := verifyResults(ctx, cfg, &Stats{})
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
		})

		Convey("When the estimate matches", func() {
			stats := &Stats{EntriesSubmitted: 10, Analyses: map[string]Analysis{
				"exercise_min": {Effect: 0.28, Lower: 0.1, Upper: 0.45, Rows: 9},
			}}
			So(verifyResults(ctx, cfg, stats), ShouldBeNil)
		})
	})
}
