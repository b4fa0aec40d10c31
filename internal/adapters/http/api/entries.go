package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/dietcause/internal/domain/model"
)

// maxEntryBody bounds a POST /entries payload.
const maxEntryBody = 1 << 16

// EntryDependencies defines the diary read/write operations.
type EntryDependencies interface {
	Submit(ctx context.Context, e model.Entry) error
	Tail(ctx context.Context, n int) (model.Log, error)
	TailSize() int
}

// EntriesHandler handles diary entry requests.
type EntriesHandler struct {
	deps EntryDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// entryRequest mirrors the OpenAPI schema for POST /entries. Pointers
// distinguish a missing field from a zero value.
type entryRequest struct {
	Date        string      `json:"date"`
	ExerciseMin *int        `json:"exercise_min"`
	SleepHr     *float64    `json:"sleep_hr"`
	CalorieKcal *int        `json:"calorie_kcal"`
	WeightKg    *float64    `json:"weight_kg"`
	Gender      genderField `json:"gender"`
	Age         *int        `json:"age"`
}

// genderField accepts 0/1 or "female"/"male".
type genderField struct {
	set   bool
	value int
}

// A JSON null leaves the field unset; the string "null" is an invalid value.
func (g *genderField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	v, err := model.ParseGender(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	g.set, g.value = true, v
	return nil
}

func (e entryRequest) entry() (model.Entry, error) {
	switch {
	case strings.TrimSpace(e.Date) == "":
		return model.Entry{}, errors.New("missing date")
	case e.ExerciseMin == nil:
		return model.Entry{}, errors.New("missing exercise_min")
	case e.SleepHr == nil:
		return model.Entry{}, errors.New("missing sleep_hr")
	case e.CalorieKcal == nil:
		return model.Entry{}, errors.New("missing calorie_kcal")
	case e.WeightKg == nil:
		return model.Entry{}, errors.New("missing weight_kg")
	case !e.Gender.set:
		return model.Entry{}, errors.New("missing gender")
	case e.Age == nil:
		return model.Entry{}, errors.New("missing age")
	}
	date, err := model.ParseDate(e.Date)
	if err != nil {
		return model.Entry{}, err
	}
	entry := model.Entry{
		Date:        date,
		ExerciseMin: *e.ExerciseMin,
		SleepHr:     *e.SleepHr,
		CalorieKcal: *e.CalorieKcal,
		WeightKg:    *e.WeightKg,
		Gender:      e.Gender.value,
		Age:         *e.Age,
	}
	return entry, entry.Validate()
}

// HandleEntries routes POST and GET /entries.
func (h *EntriesHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.HandlePostEntry(w, r)
	case http.MethodGet:
		h.HandleGetEntries(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandlePostEntry handles POST /entries requests.
func (h *EntriesHandler) HandlePostEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entry"
	var req entryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := req.entry()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Submit(r.Context(), entry); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewEntry(entry))
}

// HandleGetEntries handles GET /entries?limit=N requests.
func (h *EntriesHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_entries"
	n := h.deps.TailSize()
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer, got %q", limitStr)))
			return
		}
		n = v
	}
	tail, err := h.deps.Tail(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, viewLog(tail))
}
