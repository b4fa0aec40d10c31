package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/dietcause/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func validEntry() model.Entry {
	return model.Entry{
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExerciseMin: 30,
		SleepHr:     7,
		CalorieKcal: 2000,
		WeightKg:    70.0,
		Gender:      model.GenderMale,
		Age:         30,
	}
}

func TestEntry_Validate(t *testing.T) {
	convey.Convey("Given a diary entry", t, func() {
		convey.Convey("When all fields are in range", func() {
			convey.So(validEntry().Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When age is below the lower bound", func() {
			e := validEntry()
			e.Age = 9
			err := e.Validate()

			convey.Convey("Then validation should fail with ErrInvalidEntry", func() {
				convey.So(errors.Is(err, model.ErrInvalidEntry), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "age must be in [10, 100]")
			})
		})

		convey.Convey("When several fields are negative", func() {
			e := validEntry()
			e.ExerciseMin = -1
			e.WeightKg = -0.1
			err := e.Validate()

			convey.Convey("Then every problem should be reported", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "exercise_min")
				convey.So(err.Error(), convey.ShouldContainSubstring, "weight_kg")
			})
		})

		convey.Convey("When the date is missing", func() {
			e := validEntry()
			e.Date = time.Time{}
			convey.So(e.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When gender is not a binary code", func() {
			e := validEntry()
			e.Gender = 2
			convey.So(errors.Is(e.Validate(), model.ErrInvalidEntry), convey.ShouldBeTrue)
		})
	})
}

func TestEntry_Value(t *testing.T) {
	convey.Convey("Given an entry", t, func() {
		e := validEntry()

		convey.Convey("Then every feature column should be readable", func() {
			for _, c := range model.FeatureColumns() {
				_, err := e.Value(c)
				convey.So(err, convey.ShouldBeNil)
			}
			v, _ := e.Value(model.ColCalorieKcal)
			convey.So(v, convey.ShouldEqual, 2000.0)
		})

		convey.Convey("Then the date column should not be numeric", func() {
			_, err := e.Value(model.ColDate)
			convey.So(errors.Is(err, model.ErrUnknownColumn), convey.ShouldBeTrue)
		})

		convey.Convey("When a column is marked missing", func() {
			e.Missing = []model.Column{model.ColSleepHr}

			convey.Convey("Then the entry should be incomplete", func() {
				convey.So(e.Complete(), convey.ShouldBeFalse)
				convey.So(e.Has(model.ColSleepHr), convey.ShouldBeFalse)
				convey.So(e.Has(model.ColAge), convey.ShouldBeTrue)
			})
		})
	})
}

func TestParsers(t *testing.T) {
	convey.Convey("Given the input parsers", t, func() {
		convey.Convey("When parsing dates", func() {
			d, err := model.ParseDate(" 2024-02-29 ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d.Day(), convey.ShouldEqual, 29)

			_, err = model.ParseDate("29/02/2024")
			convey.So(errors.Is(err, model.ErrInvalidEntry), convey.ShouldBeTrue)
		})

		convey.Convey("When parsing genders", func() {
			g, err := model.ParseGender("Male")
			convey.So(err, convey.ShouldBeNil)
			convey.So(g, convey.ShouldEqual, model.GenderMale)

			g, err = model.ParseGender("0")
			convey.So(err, convey.ShouldBeNil)
			convey.So(g, convey.ShouldEqual, model.GenderFemale)

			_, err = model.ParseGender("other")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When parsing treatments", func() {
			for _, tr := range model.Treatments() {
				got, err := model.ParseTreatment(tr.String())
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, tr)
			}

			_, err := model.ParseTreatment("weight_kg")
			convey.So(errors.Is(err, model.ErrUnknownTreatment), convey.ShouldBeTrue)
		})
	})
}

func TestLog_Tail(t *testing.T) {
	convey.Convey("Given a log of five entries", t, func() {
		var log model.Log
		for i := 0; i < 5; i++ {
			e := validEntry()
			e.ExerciseMin = i
			log = append(log, e)
		}

		convey.Convey("Then Tail(2) should return the last two in storage order", func() {
			tail := log.Tail(2)
			convey.So(len(tail), convey.ShouldEqual, 2)
			convey.So(tail[0].ExerciseMin, convey.ShouldEqual, 3)
			convey.So(tail[1].ExerciseMin, convey.ShouldEqual, 4)
		})

		convey.Convey("Then Tail larger than the log should return everything", func() {
			convey.So(len(log.Tail(10)), convey.ShouldEqual, 5)
		})

		convey.Convey("Then Tail(0) should be empty", func() {
			convey.So(len(log.Tail(0)), convey.ShouldEqual, 0)
		})
	})
}
