package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cnec/gradeengine/internal/adapters/mq/queue"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// RecomputeDependencies submits asynchronous recompute requests.
type RecomputeDependencies interface {
	Enqueue(ctx context.Context, r model.RecomputeRequest) (service.EnqueueResult, error)
}

// RecomputeHandler accepts recompute requests for the worker pool.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

// HandleRecompute handles POST /recompute requests.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	var req model.RecomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Enqueue(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	case res.Duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RequestID: res.RequestID, Duplicate: true})
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: res.RequestID})
	}
}
