// Package service wires the grading engine to persistence and the recompute pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cnec/gradeengine/internal/adapters/mq/queue"
	"github.com/cnec/gradeengine/internal/adapters/mq/worker"
	"github.com/cnec/gradeengine/internal/adapters/repository"
	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/dedupe"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
	"github.com/cnec/gradeengine/pkg/logger"
	"github.com/cnec/gradeengine/pkg/metrics"
)

// Service exposes the grading entry points.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	aggregates badge.AggregateProvider
	deduper    dedupe.Deduper
	queue      *queue.InMemoryQueue
	pool       *worker.Pool

	workerCount      int
	queueSize        int
	dedupeSize       int
	batchConcurrency int
	defaultRegion    string
	shutdownTimeout  time.Duration

	started bool
	logger  logger.Logger
}

// New constructs a Service. Without WithStore it grades into a fresh MemoryStore.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        10_000,
		dedupeSize:       50_000,
		batchConcurrency: runtime.NumCPU() * 4,
		defaultRegion:    "korea",
		shutdownTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("grading")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(context.Background())
	}
	if s.aggregates == nil {
		s.aggregates = s.store
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start launches the recompute queue and worker pool. It is a no-op when already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, worker.WithLogger(s.logger.Named("worker")))
	// Workers outlive the start request; Stop drains them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "grading service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop closes the recompute queue and waits for the workers to drain it.
// Enqueue is refused as soon as Stop begins; stats stay readable during the drain.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool := s.pool
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "grading service stopped")
	return nil
}

// Close stops the service and closes its store.
func (s *Service) Close(ctx context.Context) error {
	stopErr := s.Stop(ctx)
	return errors.Join(stopErr, s.store.Close())
}

// CalculateTotalScore scores raw metrics. It never fails.
func (s *Service) CalculateTotalScore(ctx context.Context, raw grading.RawMetrics) grading.ScoreBundle {
	start := time.Now()
	b := grading.CalculateTotalScore(raw)
	metrics.RecordGrading(int(b.GradeLevel), msSince(start))

	s.logger.Debug(ctx, "scored creator",
		logger.String("creator_id", raw.CreatorID),
		logger.Float64("total_score", b.TotalScore),
		logger.String("grade", b.GradeName),
	)
	return b
}

// CalculateInitialGrade estimates a cold-start grade.
func (s *Service) CalculateInitialGrade(ctx context.Context, b grading.Bootstrap) grading.ScoreBundle {
	bundle := grading.CalculateInitialGrade(b)
	metrics.RecordInitialGrade(b.HasSignal())
	s.logger.Debug(ctx, "estimated initial grade",
		logger.Bool("bootstrapped", b.HasSignal()),
		logger.Float64("total_score", bundle.TotalScore),
	)
	return bundle
}

// EvaluateBadges evaluates the catalog for creatorID. A non-nil override is
// used instead of the stored aggregates. A provider failure yields an empty set.
func (s *Service) EvaluateBadges(ctx context.Context, creatorID string, override *badge.History) badge.Set {
	var h badge.History
	if override != nil {
		h = *override
	} else {
		var err error
		h, err = s.aggregates.Aggregates(ctx, creatorID)
		if err != nil {
			metrics.RecordErrorByComponent("badge", "aggregates")
			s.logger.Warn(ctx, "badge aggregates unavailable",
				logger.String("creator_id", creatorID), logger.Error(err))
			return badge.Set{}
		}
	}

	set := badge.Evaluate(h)
	for _, id := range set.IDs() {
		metrics.RecordBadgeAward(string(id))
	}
	return set
}

// SaveResult reports the outcome of SaveCreatorGrade.
type SaveResult struct {
	Success bool
	Err     error
}

// SaveCreatorGrade writes the summary and then the history of a grade. Only
// a summary failure fails the save; a history failure is logged and counted.
// Neither write is retried.
func (s *Service) SaveCreatorGrade(ctx context.Context, creatorID string, b grading.ScoreBundle, badges badge.Set) SaveResult {
	if err := s.store.UpsertGradeSummary(ctx, creatorID, b, badges); err != nil {
		s.logger.Error(ctx, "grade summary write failed",
			logger.String("creator_id", creatorID), logger.Error(err))
		metrics.RecordErrorByComponent("persistence", "summary_write")
		return SaveResult{Success: false, Err: fmt.Errorf("save grade of %s: %w", creatorID, err)}
	}

	if err := s.store.UpsertGradeHistory(ctx, creatorID, b); err != nil {
		s.logger.Warn(ctx, "grade history write failed",
			logger.String("creator_id", creatorID), logger.Error(err))
		metrics.RecordErrorByComponent("persistence", "history_write")
	}
	return SaveResult{Success: true}
}

// CheckIfFeaturedCreator returns the featured status of a platform user, or
// nil when the user is not featured or the lookup fails. A featured creator
// is featured in every region; region only labels the lookup in logs.
func (s *Service) CheckIfFeaturedCreator(ctx context.Context, userID, region string) *model.FeaturedInfo {
	info, err := s.store.LookupFeatured(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordFeaturedLookup("miss")
		return nil
	case err != nil:
		metrics.RecordFeaturedLookup("error")
		s.logger.Error(ctx, "featured lookup failed",
			logger.String("user_id", userID), logger.String("region", region), logger.Error(err))
		return nil
	}
	metrics.RecordFeaturedLookup("hit")
	return &info
}

// GradeOutcome is the result of grading one creator.
type GradeOutcome struct {
	CreatorID string              `json:"creator_id"`
	Grade     grading.ScoreBundle `json:"grade"`
	Badges    badge.Set           `json:"badges"`
	Saved     bool                `json:"saved"`
	Error     string              `json:"error,omitempty"`
}

// GradeCreator scores raw, evaluates badges and persists both. The returned
// error is the summary write failure, if any.
func (s *Service) GradeCreator(ctx context.Context, creatorID string, raw grading.RawMetrics, history *badge.History) (GradeOutcome, error) {
	if creatorID == "" {
		return GradeOutcome{}, fmt.Errorf("%w: creator id is required", ErrInvalidRequest)
	}
	raw.CreatorID = creatorID

	out := GradeOutcome{
		CreatorID: creatorID,
		Grade:     s.CalculateTotalScore(ctx, raw),
		Badges:    s.EvaluateBadges(ctx, creatorID, history),
	}
	res := s.SaveCreatorGrade(ctx, creatorID, out.Grade, out.Badges)
	out.Saved = res.Success
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out, res.Err
}

// Recompute grades the creator of r. It lets the worker pool drive the service.
func (s *Service) Recompute(ctx context.Context, r model.RecomputeRequest) error { //nolint:gocritic // value from the queue
	_, err := s.GradeCreator(ctx, r.CreatorID, r.Metrics, r.History)
	return err
}

// RecomputeBatch grades every request concurrently. Outcomes keep the order
// of reqs; the order of persistence side effects across creators is undefined.
func (s *Service) RecomputeBatch(ctx context.Context, reqs []model.RecomputeRequest) []GradeOutcome {
	out := make([]GradeOutcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i := range reqs {
		g.Go(func() error {
			r := reqs[i]
			outcome, err := s.GradeCreator(ctx, r.CreatorID, r.Metrics, r.History)
			if err != nil && outcome.CreatorID == "" {
				outcome = GradeOutcome{CreatorID: r.CreatorID, Error: err.Error()}
			}
			out[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info(ctx, "batch recompute finished", logger.Int("creators", len(reqs)))
	return out
}

// EnqueueResult reports how an async recompute request was handled.
type EnqueueResult struct {
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

// Enqueue submits r for asynchronous recompute. A missing request id is
// generated. A request id seen before is reported as a duplicate and not queued.
// A full queue returns an error wrapping queue.ErrFull.
func (s *Service) Enqueue(ctx context.Context, r model.RecomputeRequest) (EnqueueResult, error) { //nolint:gocritic // passed on by value
	if r.CreatorID == "" {
		metrics.RecordRecomputeRequest("invalid")
		return EnqueueResult{}, fmt.Errorf("%w: creator id is required", ErrInvalidRequest)
	}
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		metrics.RecordRecomputeRequest("rejected")
		return EnqueueResult{}, ErrNotStarted
	}

	res := EnqueueResult{RequestID: r.RequestID}
	if s.deduper.SeenAndRecord(ctx, r.RequestID) {
		metrics.RecordRecomputeRequest("duplicate")
		res.Duplicate = true
		return res, nil
	}

	if err := s.queue.Enqueue(ctx, r); err != nil {
		s.deduper.Unrecord(ctx, r.RequestID)
		metrics.RecordRecomputeRequest("rejected")
		s.logger.Warn(ctx, "recompute request rejected",
			logger.String("request_id", r.RequestID), logger.Error(err))
		return EnqueueResult{}, fmt.Errorf("enqueue %s: %w", r.RequestID, err)
	}
	metrics.RecordRecomputeRequest("accepted")
	return res, nil
}

// RegisterFeaturedCreator registers a platform creator as featured in region
// with an initial grade estimated from its bootstrap signals.
func (s *Service) RegisterFeaturedCreator(ctx context.Context, p model.CreatorProfile, region string) (model.FeaturedCreator, error) { //nolint:gocritic // read-only input
	if p.SourceUserID() == "" {
		return model.FeaturedCreator{}, fmt.Errorf("%w: profile has no user id", ErrInvalidRequest)
	}
	if region == "" {
		region = s.defaultRegion
	}

	initial := s.CalculateInitialGrade(ctx, p.Bootstrap())
	f, err := s.store.RegisterFeatured(ctx, p.Featured(region, initial))
	if err != nil {
		s.logger.Error(ctx, "featured registration failed",
			logger.String("user_id", p.SourceUserID()), logger.Error(err))
		return model.FeaturedCreator{}, fmt.Errorf("register %s: %w", p.SourceUserID(), err)
	}
	s.logger.Info(ctx, "featured creator registered",
		logger.String("id", f.ID),
		logger.String("user_id", f.SourceUserID),
		logger.String("grade", f.GradeName),
	)
	return f, nil
}

// GradeRecord returns the stored grade of a creator.
func (s *Service) GradeRecord(ctx context.Context, creatorID string) (model.GradeRecord, error) {
	return s.store.GradeRecord(ctx, creatorID)
}

// TopFeatured returns up to n recommended creators.
func (s *Service) TopFeatured(ctx context.Context, n int) ([]model.FeaturedCreator, error) {
	return s.store.TopN(ctx, n)
}

// PutAggregates stores badge aggregates for a creator.
func (s *Service) PutAggregates(ctx context.Context, creatorID string, h badge.History) error {
	return s.store.PutAggregates(ctx, creatorID, h)
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started        bool  `json:"started"`
	WorkerCount    int   `json:"worker_count"`
	QueueCapacity  int   `json:"queue_capacity"`
	QueueLength    int   `json:"queue_length"`
	DedupeEntries  int64 `json:"dedupe_entries"`
	StoredCreators int   `json:"stored_creators"`
	Processed      int64 `json:"processed"`
	Failed         int64 `json:"failed"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:        s.started,
		WorkerCount:    s.workerCount,
		QueueCapacity:  s.queueSize,
		DedupeEntries:  s.deduper.Size(),
		StoredCreators: s.store.Count(ctx),
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len()
		metrics.UpdateQueueSize(st.QueueLength)
	}
	if s.pool != nil {
		st.Processed = s.pool.Counters().Processed()
		st.Failed = s.pool.Counters().Failed()
	}
	metrics.UpdateStoredCreators(st.StoredCreators)
	return st
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
