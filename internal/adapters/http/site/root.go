// Package site renders the diary page: entry form, recent rows, the
// treatment selector, the effect narrative and the low/high chart.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
	"github.com/okian/dietcause/pkg/logger"
)

// Error constants
var (
	ErrRender    = errors.New("diary page render failed")
	ErrFormInput = errors.New("invalid form input")
)

// maxFormBody bounds a POST / payload.
const maxFormBody = 1 << 16

// Dependencies required by the diary page.
type Dependencies interface {
	Submit(ctx context.Context, e model.Entry) error
	Analyze(ctx context.Context, t model.Treatment) (service.Report, error)
	DefaultTreatment() model.Treatment
}

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Register attaches the diary page and its stylesheet to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewRootHandler(deps)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", h.HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct {
	deps   Dependencies
	logger logger.Logger
	now    func() time.Time
}

// NewRootHandler creates a new root handler
func NewRootHandler(deps Dependencies) *RootHandler {
	return &RootHandler{
		deps:   deps,
		logger: logger.Get().Named("site"),
		now:    time.Now,
	}
}

type formView struct {
	Date        string
	ExerciseMin string
	SleepHr     string
	CalorieKcal string
	WeightKg    string
	Gender      string
	Age         string
}

type rowView struct {
	Date        string
	ExerciseMin string
	SleepHr     string
	CalorieKcal string
	WeightKg    string
	Gender      string
	Age         string
}

type optionView struct {
	Value    model.Treatment
	Selected bool
}

type resultView struct {
	Narrative  string
	Interval   string
	Degenerate bool
}

type pageView struct {
	Treatment  model.Treatment
	Treatments []optionView
	Form       formView
	Flash      string
	FormError  string
	NoData     bool
	Warning    string
	Tail       []rowView
	Result     *resultView
	Chart      *chartView
	MinAge     int
	MaxAge     int
}

// HandleRoot handles GET and POST / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *RootHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	treatment := h.treatment(r.URL.Query().Get("treatment"))
	page := h.page(r.Context(), treatment, h.defaultForm())
	if r.URL.Query().Get("saved") == "1" {
		page.Flash = "Saved."
	}
	h.render(w, r, http.StatusOK, page)
}

// handlePost appends the submitted entry and redirects back; invalid
// input re-renders the page with the submitted values.
func (h *RootHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	treatment := h.treatment(r.PostForm.Get("treatment"))
	form := formView{
		Date:        r.PostForm.Get("date"),
		ExerciseMin: r.PostForm.Get("exercise_min"),
		SleepHr:     r.PostForm.Get("sleep_hr"),
		CalorieKcal: r.PostForm.Get("calorie_kcal"),
		WeightKg:    r.PostForm.Get("weight_kg"),
		Gender:      r.PostForm.Get("gender"),
		Age:         r.PostForm.Get("age"),
	}

	entry, err := form.entry()
	if err == nil {
		err = h.deps.Submit(r.Context(), entry)
	}
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, ErrFormInput) && !errors.Is(err, model.ErrInvalidEntry) {
			status = http.StatusInternalServerError
			h.logger.Error(r.Context(), "save entry failed", logger.Error(err))
		}
		page := h.page(r.Context(), treatment, form)
		page.FormError = err.Error()
		h.render(w, r, status, page)
		return
	}

	q := url.Values{"saved": {"1"}, "treatment": {treatment.String()}}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func (h *RootHandler) treatment(raw string) model.Treatment {
	if t, err := model.ParseTreatment(raw); err == nil {
		return t
	}
	return h.deps.DefaultTreatment()
}

func (h *RootHandler) defaultForm() formView {
	return formView{
		Date:        h.now().Format(model.DateLayout),
		ExerciseMin: "0",
		SleepHr:     "0",
		CalorieKcal: "0",
		WeightKg:    "0",
		Gender:      "male",
		Age:         strconv.Itoa(model.MinAge),
	}
}

// page runs the analysis and maps pipeline errors to warnings.
func (h *RootHandler) page(ctx context.Context, treatment model.Treatment, form formView) pageView {
	page := pageView{
		Treatment: treatment,
		Form:      form,
		MinAge:    model.MinAge,
		MaxAge:    model.MaxAge,
	}
	for _, t := range model.Treatments() {
		page.Treatments = append(page.Treatments, optionView{Value: t, Selected: t == treatment})
	}

	report, err := h.deps.Analyze(ctx, treatment)
	page.Tail = rows(report.Tail)
	switch {
	case err == nil:
		page.Result = &resultView{
			Narrative:  report.Narrative(),
			Interval:   report.IntervalSentence(),
			Degenerate: report.Estimate.Degenerate,
		}
		page.Chart = newChart(report.ChartTitle(), report.GroupMeans)
	case errors.Is(err, service.ErrNoData):
		page.NoData = true
	case errors.Is(err, service.ErrInsufficientData):
		page.Warning = "Not enough data for the analysis yet. Keep logging for a few more days."
	case errors.Is(err, service.ErrAnalysis):
		page.Warning = "The analysis failed: " + err.Error()
		page.Chart = newChart(report.ChartTitle(), report.GroupMeans)
	default:
		h.logger.Error(ctx, "analysis failed", logger.Error(err))
		page.Warning = "The diary could not be read: " + err.Error()
	}
	return page
}

func (h *RootHandler) render(w http.ResponseWriter, r *http.Request, status int, page pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.Error(r.Context(), "render failed", logger.Error(fmt.Errorf("%w: %w", ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

func (f formView) entry() (model.Entry, error) {
	date, err := model.ParseDate(f.Date)
	if err != nil {
		return model.Entry{}, err
	}
	gender, err := model.ParseGender(f.Gender)
	if err != nil {
		return model.Entry{}, err
	}
	var e model.Entry
	e.Date, e.Gender = date, gender
	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"exercise_min", f.ExerciseMin, &e.ExerciseMin},
		{"calorie_kcal", f.CalorieKcal, &e.CalorieKcal},
		{"age", f.Age, &e.Age},
	}
	for _, in := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(in.raw))
		if err != nil {
			return model.Entry{}, fmt.Errorf("%w: %s must be a whole number", ErrFormInput, in.name)
		}
		*in.dst = v
	}
	floats := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"sleep_hr", f.SleepHr, &e.SleepHr},
		{"weight_kg", f.WeightKg, &e.WeightKg},
	}
	for _, in := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(in.raw), 64)
		if err != nil {
			return model.Entry{}, fmt.Errorf("%w: %s must be a number", ErrFormInput, in.name)
		}
		*in.dst = v
	}
	return e, e.Validate()
}

func rows(log model.Log) []rowView {
	out := make([]rowView, 0, len(log))
	for _, e := range log {
		out = append(out, rowView{
			Date:        cell(e, model.ColDate, e.DateString),
			ExerciseMin: cell(e, model.ColExerciseMin, func() string { return strconv.Itoa(e.ExerciseMin) }),
			SleepHr:     cell(e, model.ColSleepHr, func() string { return strconv.FormatFloat(e.SleepHr, 'f', -1, 64) }),
			CalorieKcal: cell(e, model.ColCalorieKcal, func() string { return strconv.Itoa(e.CalorieKcal) }),
			WeightKg:    cell(e, model.ColWeightKg, func() string { return strconv.FormatFloat(e.WeightKg, 'f', -1, 64) }),
			Gender:      cell(e, model.ColGender, func() string { return strconv.Itoa(e.Gender) }),
			Age:         cell(e, model.ColAge, func() string { return strconv.Itoa(e.Age) }),
		})
	}
	return out
}

func cell(e model.Entry, c model.Column, format func() string) string {
	if !e.Has(c) {
		return ""
	}
	return format()
}
