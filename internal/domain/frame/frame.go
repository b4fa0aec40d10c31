// Package frame derives the analysis-ready table from a raw diary log.
//
// The pipeline is pure: the same log and treatment always give the same
// frame. Nothing is cached between calls.
package frame

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/okian/dietcause/internal/domain/model"
)

// ErrInsufficientData is returned when no row survives the derivation.
var ErrInsufficientData = errors.New("insufficient data")

// Group labels for the binarized treatment.
const (
	LabelLow  = "low"
	LabelHigh = "high"
)

// Row is one analysis row.
type Row struct {
	Date        time.Time `json:"date"`
	Gender      int       `json:"gender"`
	Age         int       `json:"age"`
	ExerciseMin int       `json:"exercise_min"`
	SleepHr     float64   `json:"sleep_hr"`
	CalorieKcal int       `json:"calorie_kcal"`
	T           int       `json:"T"`
	WeightDiff  float64   `json:"weight_diff"`
}

// Frame is the derived table for one treatment.
type Frame struct {
	Treatment model.Treatment `json:"treatment"`
	Median    float64         `json:"median"`
	Rows      []Row           `json:"rows"`
}

// GroupMean is the mean outcome of one treatment group.
type GroupMean struct {
	T     int     `json:"T"`
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Build sorts the log by date, derives weight_diff, drops the undefined
// rows and binarizes the treatment at the median of the surviving rows.
//
// T is 1 only when the value is strictly greater than the median; values
// equal to the median fall in the low group.
func Build(log model.Log, treatment model.Treatment) (Frame, error) {
	if _, err := model.ParseTreatment(string(treatment)); err != nil {
		return Frame{}, err
	}

	sorted := sortByDate(log)

	rows := make([]Row, 0, max(len(sorted)-1, 0))
	values := make([]float64, 0, cap(rows))
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if !prev.Has(model.ColWeightKg) || !cur.Complete() {
			continue
		}
		v, err := cur.Value(treatment.Column())
		if err != nil {
			return Frame{}, err
		}
		rows = append(rows, Row{
			Date:        cur.Date,
			Gender:      cur.Gender,
			Age:         cur.Age,
			ExerciseMin: cur.ExerciseMin,
			SleepHr:     cur.SleepHr,
			CalorieKcal: cur.CalorieKcal,
			WeightDiff:  prev.WeightKg - cur.WeightKg,
		})
		values = append(values, v)
	}
	if len(rows) == 0 {
		return Frame{}, fmt.Errorf("%w: %d logged rows leave no day-over-day change", ErrInsufficientData, len(log))
	}

	m := Median(values)
	for i := range rows {
		if values[i] > m {
			rows[i].T = 1
		}
	}

	return Frame{Treatment: treatment, Median: m, Rows: rows}, nil
}

// sortByDate returns a date-ascending copy. Ties keep insertion order and
// rows without a date go last.
func sortByDate(log model.Log) model.Log {
	sorted := slices.Clone(log)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case !a.Has(model.ColDate):
			return false
		case !b.Has(model.ColDate):
			return true
		}
		return a.Date.Before(b.Date)
	})
	return sorted
}

// Median returns the middle value, averaging the two middle values for an
// even count. It returns 0 for no values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	s := slices.Clone(values)
	slices.Sort(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.Rows) }

// Features returns the confounder matrix in model.FeatureColumns order.
func (f Frame) Features() [][]float64 {
	x := make([][]float64, len(f.Rows))
	for i, r := range f.Rows {
		x[i] = []float64{
			float64(r.Gender),
			float64(r.Age),
			float64(r.ExerciseMin),
			r.SleepHr,
			float64(r.CalorieKcal),
		}
	}
	return x
}

// Treatments returns the binary treatment vector.
func (f Frame) Treatments() []float64 {
	t := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		t[i] = float64(r.T)
	}
	return t
}

// Outcomes returns the weight_diff vector.
func (f Frame) Outcomes() []float64 {
	y := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		y[i] = r.WeightDiff
	}
	return y
}

// GroupMeans returns the mean weight_diff of the low and high groups, in
// that order. A group without rows reports count 0 and mean 0.
func (f Frame) GroupMeans() []GroupMean {
	groups := []GroupMean{
		{T: 0, Label: LabelLow},
		{T: 1, Label: LabelHigh},
	}
	sums := [2]float64{}
	for _, r := range f.Rows {
		sums[r.T] += r.WeightDiff
		groups[r.T].Count++
	}
	for i := range groups {
		if groups[i].Count > 0 {
			groups[i].Mean = sums[i] / float64(groups[i].Count)
		}
	}
	return groups
}
