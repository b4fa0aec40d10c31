package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/dietcause/internal/domain/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS diary_entries (
  seq          INTEGER PRIMARY KEY AUTOINCREMENT,
  date         TEXT,
  exercise_min INTEGER,
  sleep_hr     REAL,
  calorie_kcal INTEGER,
  weight_kg    REAL,
  gender       INTEGER,
  age          INTEGER
)`

// SQLiteStore keeps the diary in a SQLite table. seq preserves insertion
// order.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// schema. ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string, _ ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrNotConfigured)
	}
	dsn := path
	if path != ":memory:" {
		cleanPath := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(cleanPath), err)
		}
		dsn = cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; also keeps ":memory:" on a single connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append inserts one row.
func (s *SQLiteStore) Append(ctx context.Context, entry model.Entry) (err error) {
	start := time.Now()
	defer func() { observe(BackendSQLite, "append", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO diary_entries (
		   date, exercise_min, sleep_hr, calorie_kcal, weight_kg, gender, age
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullable(entry, model.ColDate, entry.DateString()),
		nullable(entry, model.ColExerciseMin, entry.ExerciseMin),
		nullable(entry, model.ColSleepHr, entry.SleepHr),
		nullable(entry, model.ColCalorieKcal, entry.CalorieKcal),
		nullable(entry, model.ColWeightKg, entry.WeightKg),
		nullable(entry, model.ColGender, entry.Gender),
		nullable(entry, model.ColAge, entry.Age),
	)
	if err != nil {
		return fmt.Errorf("insert diary entry: %w", err)
	}
	return nil
}

// LoadAll returns rows ordered by seq. An empty table reports ErrNotFound.
func (s *SQLiteStore) LoadAll(ctx context.Context) (log model.Log, err error) {
	start := time.Now()
	defer func() { observe(BackendSQLite, "load", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT date, exercise_min, sleep_hr, calorie_kcal, weight_kg, gender, age
		 FROM diary_entries
		 ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("query diary entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r sqliteRow
		if err := rows.Scan(&r.date, &r.exercise, &r.sleep, &r.calories, &r.weight, &r.gender, &r.age); err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		log = append(log, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary entries: %w", err)
	}
	if len(log) == 0 {
		return nil, ErrNotFound
	}
	return log, nil
}

func nullable(e model.Entry, c model.Column, v any) any {
	if !e.Has(c) {
		return nil
	}
	return v
}

// sqliteRow holds one scanned row; NULL cells become Missing columns.
type sqliteRow struct {
	date                            sql.NullString
	exercise, calories, gender, age sql.NullInt64
	sleep, weight                   sql.NullFloat64
}

func (r sqliteRow) entry() (model.Entry, error) {
	var e model.Entry
	for _, c := range model.Columns() {
		valid := true
		switch c {
		case model.ColDate:
			if valid = r.date.Valid; valid {
				d, err := model.ParseDate(r.date.String)
				if err != nil {
					return model.Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
				}
				e.Date = d
			}
		case model.ColExerciseMin:
			valid, e.ExerciseMin = r.exercise.Valid, int(r.exercise.Int64)
		case model.ColSleepHr:
			valid, e.SleepHr = r.sleep.Valid, r.sleep.Float64
		case model.ColCalorieKcal:
			valid, e.CalorieKcal = r.calories.Valid, int(r.calories.Int64)
		case model.ColWeightKg:
			valid, e.WeightKg = r.weight.Valid, r.weight.Float64
		case model.ColGender:
			valid, e.Gender = r.gender.Valid, int(r.gender.Int64)
		case model.ColAge:
			valid, e.Age = r.age.Valid, int(r.age.Int64)
		}
		if !valid {
			e.Missing = append(e.Missing, c)
		}
	}
	return e, nil
}
