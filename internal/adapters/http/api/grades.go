package api

import (
	"context"
	"net/http"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
)

// GradesDependencies is the stateless scoring surface.
type GradesDependencies interface {
	CalculateTotalScore(ctx context.Context, raw grading.RawMetrics) grading.ScoreBundle
	CalculateInitialGrade(ctx context.Context, b grading.Bootstrap) grading.ScoreBundle
	EvaluateBadges(ctx context.Context, creatorID string, override *badge.History) badge.Set
}

// GradesHandler serves scoring without persistence and the static tables.
type GradesHandler struct {
	deps GradesDependencies
}

// NewGradesHandler creates a new grades handler.
func NewGradesHandler(deps GradesDependencies) *GradesHandler {
	return &GradesHandler{deps: deps}
}

// scoreRequest is a metrics document with optional badge aggregates.
type scoreRequest struct {
	grading.RawMetrics
	History *badge.History `json:"history,omitempty"`
}

type scoreResponse struct {
	grading.ScoreBundle
	Recommended bool                    `json:"recommended"`
	Breakdown   []grading.CategoryScore `json:"breakdown"`
	Badges      badge.Set               `json:"badges,omitempty"`
}

// HandleScore handles POST /grades/score requests.
func (h *GradesHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	b := h.deps.CalculateTotalScore(r.Context(), req.RawMetrics)
	resp := scoreResponse{ScoreBundle: b, Recommended: b.Recommended(), Breakdown: b.Breakdown()}
	if req.History != nil {
		resp.Badges = h.deps.EvaluateBadges(r.Context(), req.CreatorID, req.History)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleInitial handles POST /grades/initial requests.
func (h *GradesHandler) HandleInitial(w http.ResponseWriter, r *http.Request) {
	const op = "api.initial"
	var req grading.Bootstrap
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CalculateInitialGrade(r.Context(), req))
}

// HandleLevels handles GET /grades/levels requests.
func (h *GradesHandler) HandleLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, grading.Levels())
}

// HandleBadges handles GET /badges requests.
func (h *GradesHandler) HandleBadges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, badge.Catalog())
}
