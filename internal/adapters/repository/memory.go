package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
	"github.com/cnec/gradeengine/pkg/metrics"
)

type historyRow struct {
	bundle       grading.ScoreBundle
	calculatedAt time.Time
}

// MemoryStore keeps every record in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	featured   map[string]model.FeaturedCreator // by id
	bySource   map[string]string                // source user id -> id
	history    map[string]historyRow
	aggregates map[string]badge.History

	opts   options
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryStore creates an empty store. The metrics updater runs until ctx
// is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &MemoryStore{
		featured:   make(map[string]model.FeaturedCreator),
		bySource:   make(map[string]string),
		history:    make(map[string]historyRow),
		aggregates: make(map[string]badge.History),
		opts:       o,
		done:       make(chan struct{}),
	}
	ctx, s.cancel = context.WithCancel(ctx)
	go s.runMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) runMetricsUpdater(ctx context.Context) {
	defer close(s.done)
	if s.opts.metricsUpdateInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.opts.metricsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateStoredCreators(s.Count(ctx))
		}
	}
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *MemoryStore) UpsertGradeSummary(ctx context.Context, creatorID string, b grading.ScoreBundle, badges badge.Set) (err error) {
	start := time.Now()
	defer func() { metrics.RecordPersistence("summary", msSince(start), err) }()

	if s.opts.summaryErr != nil {
		return fmt.Errorf("%w: %w", ErrSummaryWrite, s.opts.summaryErr)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSummaryWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now()
	id, ok := s.resolveLocked(creatorID)
	f := s.featured[id]
	if !ok {
		id = creatorID
		f = model.FeaturedCreator{
			ID:           creatorID,
			SourceUserID: creatorID,
			FeaturedType: model.FeaturedTypeAuto,
			Active:       true,
			CreatedAt:    now,
		}
		s.bySource[creatorID] = creatorID
	}
	f.ApplyGrade(b, badges.Clone())
	f.UpdatedAt = now
	s.featured[id] = f
	return nil
}

// resolveLocked maps a creator id onto the id of its featured record. The
// record id wins; otherwise the id is taken as a source user id.
func (s *MemoryStore) resolveLocked(creatorID string) (string, bool) {
	if _, ok := s.featured[creatorID]; ok {
		return creatorID, true
	}
	id, ok := s.bySource[creatorID]
	return id, ok
}

func (s *MemoryStore) UpsertGradeHistory(ctx context.Context, creatorID string, b grading.ScoreBundle) (err error) {
	start := time.Now()
	defer func() { metrics.RecordPersistence("history", msSince(start), err) }()

	if s.opts.historyErr != nil {
		return fmt.Errorf("%w: %w", ErrHistoryWrite, s.opts.historyErr)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[creatorID] = historyRow{bundle: b, calculatedAt: s.opts.now()}
	return nil
}

func (s *MemoryStore) LookupFeatured(_ context.Context, sourceUserID string) (model.FeaturedInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySource[sourceUserID]
	if !ok {
		return model.FeaturedInfo{}, ErrNotFound
	}
	f := s.featured[id]
	if !f.Active {
		return model.FeaturedInfo{}, ErrNotFound
	}
	return f.Info(), nil
}

func (s *MemoryStore) RegisterFeatured(_ context.Context, f model.FeaturedCreator) (model.FeaturedCreator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySource[f.SourceUserID]; ok {
		return model.FeaturedCreator{}, fmt.Errorf("%w: %s", ErrAlreadyExists, f.SourceUserID)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if _, ok := s.featured[f.ID]; ok {
		return model.FeaturedCreator{}, fmt.Errorf("%w: %s", ErrAlreadyExists, f.ID)
	}
	now := s.opts.now()
	f.CreatedAt, f.UpdatedAt = now, now
	f = cloneFeatured(f)
	s.featured[f.ID] = f
	s.bySource[f.SourceUserID] = f.ID
	return cloneFeatured(f), nil
}

func (s *MemoryStore) GradeRecord(_ context.Context, creatorID string) (model.GradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.resolveLocked(creatorID)
	if !ok {
		return model.GradeRecord{}, ErrNotFound
	}
	h, hasHistory := s.history[creatorID]
	return gradeRecord(creatorID, s.featured[id], h.bundle, h.calculatedAt, hasHistory), nil
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]model.FeaturedCreator, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	out := make([]model.FeaturedCreator, 0, len(s.featured))
	for _, f := range s.featured {
		if f.Active && f.Recommended {
			out = append(out, cloneFeatured(f))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.featured)
}

func (s *MemoryStore) PutAggregates(_ context.Context, creatorID string, h badge.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates[creatorID] = h
	return nil
}

// Aggregates returns the stored aggregates, or a zero History for unknown creators.
func (s *MemoryStore) Aggregates(_ context.Context, creatorID string) (badge.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregates[creatorID], nil
}

// gradeRecord joins a summary with the history row written under creatorID.
// Without history the sub-scores are zero and the summary timestamp is used.
func gradeRecord(creatorID string, f model.FeaturedCreator, h grading.ScoreBundle, calculatedAt time.Time, hasHistory bool) model.GradeRecord {
	level := f.GradeLevel
	if !level.Valid() {
		level = grading.LevelFresh
	}
	bundle := grading.ScoreBundle{TotalScore: f.TotalScore}
	if hasHistory {
		bundle = h
	} else {
		calculatedAt = f.UpdatedAt
	}
	bundle.TotalScore = f.TotalScore
	bundle.GradeLevel = level
	bundle.GradeInfo = grading.Info(level)
	bundle.GradeName = bundle.GradeInfo.Name

	return model.GradeRecord{
		CreatorID:        creatorID,
		Grade:            bundle,
		Badges:           f.Badges.Clone(),
		Recommended:      f.Recommended,
		LastCalculatedAt: calculatedAt,
	}
}

func cloneFeatured(f model.FeaturedCreator) model.FeaturedCreator {
	f.Badges = f.Badges.Clone()
	if f.ActiveRegions != nil {
		f.ActiveRegions = append([]string(nil), f.ActiveRegions...)
	}
	return f
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

var _ Store = (*MemoryStore)(nil)
