package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/dietcause/internal/domain/model"
)

// header returns the persisted column names.
func header() []string {
	cols := model.Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

// columnIndex maps each known column to its position in a header row.
func columnIndex(head []string) (map[model.Column]int, error) {
	idx := make(map[model.Column]int, len(head))
	for i, name := range head {
		idx[model.Column(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, c := range model.Columns() {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: header lacks column %q", ErrMalformed, c)
		}
	}
	return idx, nil
}

// encodeEntry renders an entry in the column order of head.
func encodeEntry(e model.Entry, idx map[model.Column]int, width int) []string {
	rec := make([]string, width)
	for _, c := range model.Columns() {
		rec[idx[c]] = formatCell(e, c)
	}
	return rec
}

func formatCell(e model.Entry, c model.Column) string {
	if !e.Has(c) {
		return ""
	}
	switch c {
	case model.ColDate:
		return e.DateString()
	case model.ColExerciseMin:
		return strconv.Itoa(e.ExerciseMin)
	case model.ColSleepHr:
		return strconv.FormatFloat(e.SleepHr, 'f', -1, 64)
	case model.ColCalorieKcal:
		return strconv.Itoa(e.CalorieKcal)
	case model.ColWeightKg:
		return strconv.FormatFloat(e.WeightKg, 'f', -1, 64)
	case model.ColGender:
		return strconv.Itoa(e.Gender)
	case model.ColAge:
		return strconv.Itoa(e.Age)
	default:
		return ""
	}
}

// decodeEntry parses one data row. Blank cells become Missing columns.
func decodeEntry(rec []string, idx map[model.Column]int) (model.Entry, error) {
	var e model.Entry
	for _, c := range model.Columns() {
		i := idx[c]
		raw := ""
		if i < len(rec) {
			raw = strings.TrimSpace(rec[i])
		}
		if raw == "" {
			e.Missing = append(e.Missing, c)
			continue
		}
		if err := setCell(&e, c, raw); err != nil {
			return model.Entry{}, err
		}
	}
	return e, nil
}

func setCell(e *model.Entry, c model.Column, raw string) error {
	var err error
	switch c {
	case model.ColDate:
		e.Date, err = model.ParseDate(raw)
	case model.ColExerciseMin:
		e.ExerciseMin, err = parseInt(raw)
	case model.ColSleepHr:
		e.SleepHr, err = strconv.ParseFloat(raw, 64)
	case model.ColCalorieKcal:
		e.CalorieKcal, err = parseInt(raw)
	case model.ColWeightKg:
		e.WeightKg, err = strconv.ParseFloat(raw, 64)
	case model.ColGender:
		e.Gender, err = parseInt(raw)
	case model.ColAge:
		e.Age, err = parseInt(raw)
	}
	if err != nil {
		return fmt.Errorf("%w: column %s value %q: %w", ErrMalformed, c, raw, err)
	}
	return nil
}

// parseInt accepts "30" and integral floats such as "30.0" left by spreadsheets.
func parseInt(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}
