// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// DefaultMaxFeaturedLimit caps GET /featured when no limit option is given.
const DefaultMaxFeaturedLimit = 100

// Service is the grading surface the handlers depend on.
type Service interface {
	CalculateTotalScore(ctx context.Context, raw grading.RawMetrics) grading.ScoreBundle
	CalculateInitialGrade(ctx context.Context, b grading.Bootstrap) grading.ScoreBundle
	EvaluateBadges(ctx context.Context, creatorID string, override *badge.History) badge.Set
	GradeCreator(ctx context.Context, creatorID string, raw grading.RawMetrics, history *badge.History) (service.GradeOutcome, error)
	GradeRecord(ctx context.Context, creatorID string) (model.GradeRecord, error)
	Enqueue(ctx context.Context, r model.RecomputeRequest) (service.EnqueueResult, error)
	CheckIfFeaturedCreator(ctx context.Context, userID, region string) *model.FeaturedInfo
	TopFeatured(ctx context.Context, n int) ([]model.FeaturedCreator, error)
	RegisterFeaturedCreator(ctx context.Context, p model.CreatorProfile, region string) (model.FeaturedCreator, error)
	GetStats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the grading API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	gradesHandler    *GradesHandler
	creatorsHandler  *CreatorsHandler
	recomputeHandler *RecomputeHandler
	featuredHandler  *FeaturedHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxFeaturedLimit int
}

// WithMaxFeaturedLimit caps the limit accepted by GET /featured.
func WithMaxFeaturedLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxFeaturedLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service, opts ...Option) *Server {
	o := serverOptions{maxFeaturedLimit: DefaultMaxFeaturedLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(svc),
		gradesHandler:    NewGradesHandler(svc),
		creatorsHandler:  NewCreatorsHandler(svc),
		recomputeHandler: NewRecomputeHandler(svc),
		featuredHandler:  NewFeaturedHandler(svc, o.maxFeaturedLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /grades/score", MetricsMiddleware(s.gradesHandler.HandleScore, "grades_score"))
	mux.HandleFunc("POST /grades/initial", MetricsMiddleware(s.gradesHandler.HandleInitial, "grades_initial"))
	mux.HandleFunc("GET /grades/levels", MetricsMiddleware(s.gradesHandler.HandleLevels, "grades_levels"))
	mux.HandleFunc("GET /badges", MetricsMiddleware(s.gradesHandler.HandleBadges, "badges"))

	mux.HandleFunc("POST /creators/{id}/grade", MetricsMiddleware(s.creatorsHandler.HandleGrade, "creator_grade"))
	mux.HandleFunc("GET /creators/{id}/grade", MetricsMiddleware(s.creatorsHandler.HandleGetGrade, "creator_grade"))

	mux.HandleFunc("POST /recompute", MetricsMiddleware(s.recomputeHandler.HandleRecompute, "recompute"))

	mux.HandleFunc("GET /featured", MetricsMiddleware(s.featuredHandler.HandleTop, "featured_top"))
	mux.HandleFunc("POST /featured", MetricsMiddleware(s.featuredHandler.HandleRegister, "featured_register"))
	mux.HandleFunc("GET /featured/{userID}", MetricsMiddleware(s.featuredHandler.HandleCheck, "featured"))
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

// decodeJSON reads r's body into v and rejects trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
