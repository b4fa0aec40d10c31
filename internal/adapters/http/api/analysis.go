package api

import (
	"context"
	"net/http"

	service "github.com/okian/dietcause/internal/app"
	"github.com/okian/dietcause/internal/domain/model"
)

// AnalysisDependencies defines the analysis pipeline.
type AnalysisDependencies interface {
	Analyze(ctx context.Context, t model.Treatment) (service.Report, error)
	DefaultTreatment() model.Treatment
}

// AnalysisHandler handles analysis requests.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

type groupView struct {
	Label string  `json:"label"`
	T     int     `json:"T"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type analysisResponse struct {
	Treatment  model.Treatment `json:"treatment"`
	Effect     float64         `json:"effect"`
	Lower      float64         `json:"lower"`
	Upper      float64         `json:"upper"`
	Degenerate bool            `json:"degenerate"`
	Narrative  string          `json:"narrative"`
	Interval   string          `json:"interval"`
	Median     float64         `json:"median"`
	Rows       int             `json:"rows"`
	Groups     []groupView     `json:"groups"`
	Tail       []entryView     `json:"tail"`
}

func newAnalysisResponse(r service.Report) analysisResponse {
	resp := analysisResponse{
		Treatment:  r.Treatment,
		Effect:     round3(r.Estimate.Effect),
		Lower:      round3(r.Estimate.Lower),
		Upper:      round3(r.Estimate.Upper),
		Degenerate: r.Estimate.Degenerate,
		Narrative:  r.Narrative(),
		Interval:   r.IntervalSentence(),
		Median:     r.Median,
		Rows:       r.Rows,
		Groups:     make([]groupView, 0, len(r.GroupMeans)),
		Tail:       viewLog(r.Tail),
	}
	for _, g := range r.GroupMeans {
		resp.Groups = append(resp.Groups, groupView{Label: g.Label, T: g.T, Mean: round3(g.Mean), Count: g.Count})
	}
	return resp
}

// HandleGetAnalysis handles GET /analysis?treatment=... requests.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analysis"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	treatment := h.deps.DefaultTreatment()
	if raw := r.URL.Query().Get("treatment"); raw != "" {
		t, err := model.ParseTreatment(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		treatment = t
	}
	report, err := h.deps.Analyze(r.Context(), treatment)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(report))
}
