package api

import (
	"net/http"

	"github.com/okian/dietcause/internal/domain/model"
)

// TreatmentsHandler lists the treatments the analysis accepts.
type TreatmentsHandler struct {
	deps AnalysisDependencies
}

// NewTreatmentsHandler creates a new treatments handler.
func NewTreatmentsHandler(deps AnalysisDependencies) *TreatmentsHandler {
	return &TreatmentsHandler{deps: deps}
}

type treatmentsResponse struct {
	Treatments []model.Treatment `json:"treatments"`
	Default    model.Treatment   `json:"default"`
}

// HandleGetTreatments handles GET /treatments requests.
func (h *TreatmentsHandler) HandleGetTreatments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, treatmentsResponse{
		Treatments: model.Treatments(),
		Default:    h.deps.DefaultTreatment(),
	})
}
