// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EntryDependencies
	AnalysisDependencies
	StatsProvider
}

// Server wires HTTP routes for the diary API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	entriesHandler    *EntriesHandler
	analysisHandler   *AnalysisHandler
	treatmentsHandler *TreatmentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		entriesHandler:    NewEntriesHandler(deps),
		analysisHandler:   NewAnalysisHandler(deps),
		treatmentsHandler: NewTreatmentsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/entries", MetricsMiddleware(s.entriesHandler.HandleEntries, "entries"))
	mux.HandleFunc("/analysis", MetricsMiddleware(s.analysisHandler.HandleGetAnalysis, "analysis"))
	mux.HandleFunc("/treatments", MetricsMiddleware(s.treatmentsHandler.HandleGetTreatments, "treatments"))
}

// entryView is the wire shape of a diary row.
type entryView struct {
	Date        string         `json:"date"`
	ExerciseMin int            `json:"exercise_min"`
	SleepHr     float64        `json:"sleep_hr"`
	CalorieKcal int            `json:"calorie_kcal"`
	WeightKg    float64        `json:"weight_kg"`
	Gender      int            `json:"gender"`
	Age         int            `json:"age"`
	Missing     []model.Column `json:"missing,omitempty"`
}

func viewEntry(e model.Entry) entryView {
	v := entryView{
		ExerciseMin: e.ExerciseMin,
		SleepHr:     e.SleepHr,
		CalorieKcal: e.CalorieKcal,
		WeightKg:    e.WeightKg,
		Gender:      e.Gender,
		Age:         e.Age,
		Missing:     e.Missing,
	}
	if e.Has(model.ColDate) {
		v.Date = e.DateString()
	}
	return v
}

func viewLog(log model.Log) []entryView {
	out := make([]entryView, 0, len(log))
	for _, e := range log {
		out = append(out, viewEntry(e))
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps err through statusFor. Unrecognised failures are
// tagged ErrInternal.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if !errors.Is(err, ErrInternal) && code == "internal_error" {
		err = WrapKind(op, ErrInternal, err)
	} else {
		err = Wrap(op, err)
	}
	writeError(w, status, code, err)
}

// round3 keeps the JSON numbers aligned with the narrative sentences.
func round3(v float64) float64 { return service.Round3(v) }
