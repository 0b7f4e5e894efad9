package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/model"
)

const defaultFeaturedLimit = 10

// FeaturedDependencies reads the featured creator registry.
type FeaturedDependencies interface {
	CheckIfFeaturedCreator(ctx context.Context, userID, region string) *model.FeaturedInfo
	TopFeatured(ctx context.Context, n int) ([]model.FeaturedCreator, error)
	RegisterFeaturedCreator(ctx context.Context, p model.CreatorProfile, region string) (model.FeaturedCreator, error)
}

// registerRequest is a source profile plus the region it is featured in.
type registerRequest struct {
	model.CreatorProfile
	Region string `json:"region,omitempty"`
}

// FeaturedHandler serves featured lookups and the recommended list.
type FeaturedHandler struct {
	deps     FeaturedDependencies
	maxLimit int
}

// NewFeaturedHandler creates a new featured handler.
func NewFeaturedHandler(deps FeaturedDependencies, maxLimit int) *FeaturedHandler {
	return &FeaturedHandler{deps: deps, maxLimit: maxLimit}
}

// HandleCheck handles GET /featured/{userID}?region= requests.
func (h *FeaturedHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.featured"
	info := h.deps.CheckIfFeaturedCreator(r.Context(), r.PathValue("userID"), r.URL.Query().Get("region"))
	if info == nil {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, errors.New("creator is not featured")))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleRegister handles POST /featured requests. The creator is registered
// as a manual featured record with an initial grade from its CAPI scores.
func (h *FeaturedHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.featured_register"
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	f, err := h.deps.RegisterFeaturedCreator(r.Context(), req.CreatorProfile, req.Region)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusCreated, f)
	}
}

// HandleTop handles GET /featured?limit=N requests. Limits above the
// configured maximum are capped.
func (h *FeaturedHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.featured_top"
	n := min(defaultFeaturedLimit, h.maxLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = min(v, h.maxLimit)
	}

	creators, err := h.deps.TopFeatured(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, creators)
}
