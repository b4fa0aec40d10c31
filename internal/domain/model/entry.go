// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used on every surface.
const DateLayout = "2006-01-02"

// Gender encodings as persisted.
const (
	GenderFemale = 0
	GenderMale   = 1
)

// Age bounds accepted by the input surfaces.
const (
	MinAge = 10
	MaxAge = 100
)

// Column names a persisted diary column.
type Column string

// Persisted columns.
const (
	ColDate        Column = "date"
	ColExerciseMin Column = "exercise_min"
	ColSleepHr     Column = "sleep_hr"
	ColCalorieKcal Column = "calorie_kcal"
	ColWeightKg    Column = "weight_kg"
	ColGender      Column = "gender"
	ColAge         Column = "age"
)

// Columns returns the fixed persisted column order.
func Columns() []Column {
	return []Column{ColDate, ColExerciseMin, ColSleepHr, ColCalorieKcal, ColWeightKg, ColGender, ColAge}
}

// FeatureColumns returns the confounder/feature columns in matrix order.
// The column under study stays in this set.
func FeatureColumns() []Column {
	return []Column{ColGender, ColAge, ColExerciseMin, ColSleepHr, ColCalorieKcal}
}

// Entry is one logged day.
type Entry struct {
	Date        time.Time `json:"date"`
	ExerciseMin int       `json:"exercise_min"`
	SleepHr     float64   `json:"sleep_hr"`
	CalorieKcal int       `json:"calorie_kcal"`
	WeightKg    float64   `json:"weight_kg"`
	Gender      int       `json:"gender"`
	Age         int       `json:"age"`

	// Missing lists columns that were blank when the row was read back.
	// Entries built by the input surfaces never carry missing columns.
	Missing []Column `json:"missing,omitempty"`
}

// Has reports whether the column held a value when loaded.
func (e Entry) Has(c Column) bool {
	return !slices.Contains(e.Missing, c)
}

// Complete reports whether every column held a value.
func (e Entry) Complete() bool {
	return len(e.Missing) == 0
}

// Value returns the numeric value of a feature column.
func (e Entry) Value(c Column) (float64, error) {
	switch c {
	case ColExerciseMin:
		return float64(e.ExerciseMin), nil
	case ColSleepHr:
		return e.SleepHr, nil
	case ColCalorieKcal:
		return float64(e.CalorieKcal), nil
	case ColWeightKg:
		return e.WeightKg, nil
	case ColGender:
		return float64(e.Gender), nil
	case ColAge:
		return float64(e.Age), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
	}
}

// DateString formats the entry date for display and storage.
func (e Entry) DateString() string {
	return e.Date.Format(DateLayout)
}

// Validate checks the range constraints the input surfaces enforce.
// Stores never call it.
func (e Entry) Validate() error {
	var problems []string
	if e.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if e.ExerciseMin < 0 {
		problems = append(problems, "exercise_min must be >= 0")
	}
	if e.SleepHr < 0 {
		problems = append(problems, "sleep_hr must be >= 0")
	}
	if e.CalorieKcal < 0 {
		problems = append(problems, "calorie_kcal must be >= 0")
	}
	if e.WeightKg < 0 {
		problems = append(problems, "weight_kg must be >= 0")
	}
	if e.Gender != GenderFemale && e.Gender != GenderMale {
		problems = append(problems, "gender must be 0 or 1")
	}
	if e.Age < MinAge || e.Age > MaxAge {
		problems = append(problems, fmt.Sprintf("age must be in [%d, %d]", MinAge, MaxAge))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(problems, "; "))
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidEntry, s)
	}
	return d, nil
}

// ParseGender accepts "male"/"female" or the persisted "1"/"0".
func ParseGender(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1":
		return GenderMale, nil
	case "female", "f", "0":
		return GenderFemale, nil
	default:
		return 0, fmt.Errorf("%w: gender %q", ErrInvalidEntry, s)
	}
}

// GenderLabel renders the persisted encoding.
func GenderLabel(g int) string {
	if g == GenderMale {
		return "male"
	}
	return "female"
}

// Log is the diary in insertion order.
type Log []Entry

// Tail returns the last n entries in storage order.
func (l Log) Tail(n int) Log {
	if n <= 0 {
		return Log{}
	}
	if n >= len(l) {
		return slices.Clone(l)
	}
	return slices.Clone(l[len(l)-n:])
}
