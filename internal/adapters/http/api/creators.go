package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// CreatorsDependencies grades and reads stored creators.
type CreatorsDependencies interface {
	GradeCreator(ctx context.Context, creatorID string, raw grading.RawMetrics, history *badge.History) (service.GradeOutcome, error)
	GradeRecord(ctx context.Context, creatorID string) (model.GradeRecord, error)
}

// CreatorsHandler serves the per-creator grade resource.
type CreatorsHandler struct {
	deps CreatorsDependencies
}

// NewCreatorsHandler creates a new creators handler.
func NewCreatorsHandler(deps CreatorsDependencies) *CreatorsHandler {
	return &CreatorsHandler{deps: deps}
}

// HandleGrade handles POST /creators/{id}/grade requests. The grade is
// computed, badges evaluated and both persisted.
func (h *CreatorsHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.grade_creator"
	id := r.PathValue("id")

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.GradeCreator(r.Context(), id, req.RawMetrics, req.History)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleGetGrade handles GET /creators/{id}/grade requests.
func (h *CreatorsHandler) HandleGetGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_grade"
	rec, err := h.deps.GradeRecord(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}
