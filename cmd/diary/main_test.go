package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dietcause/internal/adapters/repository"
	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seed writes n days where exercise days lose 0.3 kg more.
func seed(t *testing.T, path string, n int) {
	t.Helper()
	ctx := context.Background()
	store, err := repository.NewCSVStore(path)
	if err != nil {
		t.Fatal(err)
	}
	weight := 80.0
	for i := range n {
		high := 0
		if i > 0 && i%2 == 0 {
			high = 1
		}
		sleep := 6.5 + 0.5*float64(i%3)
		if i > 0 {
			weight -= 0.1 + 0.3*float64(high) + 0.05*(sleep-7)
		}
		e := model.Entry{
			Date:        day0.AddDate(0, 0, i),
			ExerciseMin: 10 + 50*high + i%4,
			SleepHr:     sleep,
			CalorieKcal: 2000 + 100*(i%5),
			WeightKg:    weight,
			Gender:      model.GenderMale,
			Age:         41,
		}
		if err := store.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	_ = store.Close()
}

func TestDiaryCommand(t *testing.T) {
	Convey("Given a diary file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "diary.csv")
		var out bytes.Buffer
		diary := func(args ...string) error {
			out.Reset()
			return run(ctx, append([]string{"-path", path}, args...), &out)
		}

		Convey("When it does not exist yet", func() {
			Convey("Then tail reports no data", func() {
				So(diary("tail"), ShouldBeNil)
				So(out.String(), ShouldEqual, "No data yet.\n")
			})

			Convey("Then analyze fails with no data", func() {
				So(errors.Is(diary("analyze"), service.ErrNoData), ShouldBeTrue)
			})
		})

		Convey("When a day is added", func() {
			err := diary("add", "-date", "2024-02-03", "-exercise", "30", "-sleep", "7.5",
				"-calories", "2100", "-weight", "71.2", "-gender", "male", "-age", "35")
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "Saved 2024-02-03.\n")

			Convey("Then tail prints it under the column header", func() {
				So(diary("tail", "-n", "5"), ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out.String()), "\n")
				So(lines, ShouldHaveLength, 2)
				So(strings.Fields(lines[0]), ShouldResemble,
					[]string{"date", "exercise_min", "sleep_hr", "calorie_kcal", "weight_kg", "gender", "age"})
				So(strings.Fields(lines[1]), ShouldResemble,
					[]string{"2024-02-03", "30", "7.5", "2100", "71.2", "male", "35"})
			})
		})

		Convey("When an invalid day is added", func() {
			err := diary("add", "-date", "2024-02-03", "-age", "5")
			So(errors.Is(err, model.ErrInvalidEntry), ShouldBeTrue)
		})

		Convey("When forty planted days are stored", func() {
			seed(t, path, 40)

			Convey("Then analyze prints the recovered effect", func() {
				So(diary("analyze", "-treatment", "exercise_min"), ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out.String()), "\n")
				So(lines[0], ShouldEqual, "Increasing exercise_min is estimated to reduce weight by 0.300 kg on average.")
				So(lines[1], ShouldStartWith, "Confidence interval: [")
				So(lines[2], ShouldStartWith, "low: ")
				So(lines[3], ShouldStartWith, "high: ")
				So(lines[4], ShouldStartWith, "Rows: 39")
			})

			Convey("Then an unknown treatment is rejected", func() {
				So(errors.Is(diary("analyze", "-treatment", "water_l"), model.ErrUnknownTreatment), ShouldBeTrue)
			})
		})

		Convey("When the command line is wrong", func() {
			So(errors.Is(diary(), ErrUsage), ShouldBeTrue)
			So(errors.Is(diary("export"), ErrUsage), ShouldBeTrue)
			So(errors.Is(diary("tail", "-n", "0"), ErrUsage), ShouldBeTrue)
		})
	})
}
