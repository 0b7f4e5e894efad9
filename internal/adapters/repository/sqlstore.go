package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
	"github.com/cnec/gradeengine/pkg/metrics"
)

const featuredColumns = `id, source_user_id, name, email, phone, profile_image_url, bio,
	instagram_handle, instagram_followers, youtube_handle, youtube_subscribers,
	tiktok_handle, tiktok_followers, source_country, primary_country, active_regions,
	featured_type, is_active, cnec_grade_level, cnec_grade_name, cnec_total_score,
	is_cnec_recommended, badges, created_at, updated_at`

// SQLStore persists records in SQLite.
type SQLStore struct {
	db     *sql.DB
	opts   options
	cancel context.CancelFunc
	done   chan struct{}
}

// OpenSQLStore opens the SQLite database at dsn, migrates it and returns a store that owns it.
func OpenSQLStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	// One connection serializes writers and keeps in-memory databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLStore(ctx, db, opts...), nil
}

// NewSQLStore wraps an already migrated database. The store closes db on Close.
func NewSQLStore(ctx context.Context, db *sql.DB, opts ...Option) *SQLStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &SQLStore{db: db, opts: o, done: make(chan struct{})}
	ctx, s.cancel = context.WithCancel(ctx)
	go s.runMetricsUpdater(ctx)
	return s
}

func (s *SQLStore) runMetricsUpdater(ctx context.Context) {
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

// Close stops the metrics updater and closes the database.
func (s *SQLStore) Close() error {
	s.cancel()
	<-s.done
	return s.db.Close()
}

func (s *SQLStore) UpsertGradeSummary(ctx context.Context, creatorID string, b grading.ScoreBundle, badges badge.Set) (err error) {
	start := time.Now()
	defer func() { metrics.RecordPersistence("summary", msSince(start), err) }()

	encoded, err := json.Marshal(badges.Clone())
	if err != nil {
		return fmt.Errorf("%w: encode badges: %w", ErrSummaryWrite, err)
	}
	now := formatTime(s.opts.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSummaryWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := resolveCreator(ctx, tx, creatorID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO featured_creators (
				id, source_user_id, featured_type, is_active,
				cnec_grade_level, cnec_grade_name, cnec_total_score, is_cnec_recommended,
				badges, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)`,
			creatorID, creatorID, model.FeaturedTypeAuto,
			int(b.GradeLevel), b.GradeName, b.TotalScore, b.Recommended(),
			string(encoded), now, now,
		)
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE featured_creators SET
				cnec_grade_level = ?, cnec_grade_name = ?, cnec_total_score = ?,
				is_cnec_recommended = ?, badges = ?, updated_at = ?
			WHERE id = ?`,
			int(b.GradeLevel), b.GradeName, b.TotalScore, b.Recommended(),
			string(encoded), now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSummaryWrite, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrSummaryWrite, err)
	}
	return nil
}

// resolveCreator maps a creator id onto the id of its featured record. The
// record id wins; otherwise the id is taken as a source user id.
func resolveCreator(ctx context.Context, q rowQuerier, creatorID string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM featured_creators
		WHERE id = ? OR source_user_id = ?
		ORDER BY id = ? DESC
		LIMIT 1`, creatorID, creatorID, creatorID).Scan(&id)
	return id, err
}

func (s *SQLStore) UpsertGradeHistory(ctx context.Context, creatorID string, b grading.ScoreBundle) (err error) {
	start := time.Now()
	defer func() { metrics.RecordPersistence("history", msSince(start), err) }()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO creator_grades (
			creator_id, grade_level, grade_name, total_score,
			brand_trust_score, content_quality_score, professionalism_score,
			growth_score, contribution_score, last_calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(creator_id) DO UPDATE SET
			grade_level = excluded.grade_level,
			grade_name = excluded.grade_name,
			total_score = excluded.total_score,
			brand_trust_score = excluded.brand_trust_score,
			content_quality_score = excluded.content_quality_score,
			professionalism_score = excluded.professionalism_score,
			growth_score = excluded.growth_score,
			contribution_score = excluded.contribution_score,
			last_calculated_at = excluded.last_calculated_at`,
		creatorID, int(b.GradeLevel), b.GradeName, b.TotalScore,
		b.BrandTrustScore, b.ContentQualityScore, b.ProfessionalismScore,
		b.GrowthScore, b.ContributionScore, formatTime(s.opts.now()),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryWrite, err)
	}
	return nil
}

func (s *SQLStore) LookupFeatured(ctx context.Context, sourceUserID string) (model.FeaturedInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+featuredColumns+` FROM featured_creators WHERE source_user_id = ? AND is_active = 1`,
		sourceUserID)
	f, err := scanFeatured(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FeaturedInfo{}, ErrNotFound
	}
	if err != nil {
		return model.FeaturedInfo{}, fmt.Errorf("lookup featured %s: %w", sourceUserID, err)
	}
	return f.Info(), nil
}

func (s *SQLStore) RegisterFeatured(ctx context.Context, f model.FeaturedCreator) (model.FeaturedCreator, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Badges == nil {
		f.Badges = badge.Set{}
	}
	if f.ActiveRegions == nil {
		f.ActiveRegions = []string{}
	}
	now := s.opts.now()
	f.CreatedAt, f.UpdatedAt = now, now

	regions, err := json.Marshal(f.ActiveRegions)
	if err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("encode regions: %w", err)
	}
	badges, err := json.Marshal(f.Badges)
	if err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("encode badges: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("begin register: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM featured_creators WHERE id = ? OR source_user_id = ?`,
		f.ID, f.SourceUserID).Scan(&existing); err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("check existing: %w", err)
	}
	if existing > 0 {
		return model.FeaturedCreator{}, fmt.Errorf("%w: %s", ErrAlreadyExists, f.SourceUserID)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO featured_creators (`+featuredColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SourceUserID, f.Name, f.Email, f.Phone, f.ProfileImage, f.Bio,
		f.InstagramHandle, f.InstagramFollowers, f.YoutubeHandle, f.YoutubeSubscribers,
		f.TiktokHandle, f.TiktokFollowers, f.SourceCountry, f.PrimaryCountry, string(regions),
		f.FeaturedType, f.Active, int(f.GradeLevel), f.GradeName, f.TotalScore,
		f.Recommended, string(badges), formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("insert featured %s: %w", f.SourceUserID, err)
	}
	if err := tx.Commit(); err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("commit register: %w", err)
	}
	return f, nil
}

func (s *SQLStore) GradeRecord(ctx context.Context, creatorID string) (model.GradeRecord, error) {
	id, err := resolveCreator(ctx, s.db, creatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GradeRecord{}, ErrNotFound
	}
	if err != nil {
		return model.GradeRecord{}, fmt.Errorf("resolve creator %s: %w", creatorID, err)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+featuredColumns+` FROM featured_creators WHERE id = ?`, id)
	f, err := scanFeatured(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GradeRecord{}, ErrNotFound
	}
	if err != nil {
		return model.GradeRecord{}, fmt.Errorf("load summary %s: %w", creatorID, err)
	}

	var (
		h            grading.ScoreBundle
		level        int
		calculatedAt string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT grade_level, grade_name, total_score, brand_trust_score, content_quality_score,
			professionalism_score, growth_score, contribution_score, last_calculated_at
		FROM creator_grades WHERE creator_id = ?`, creatorID).Scan(
		&level, &h.GradeName, &h.TotalScore, &h.BrandTrustScore, &h.ContentQualityScore,
		&h.ProfessionalismScore, &h.GrowthScore, &h.ContributionScore, &calculatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return gradeRecord(creatorID, f, grading.ScoreBundle{}, time.Time{}, false), nil
	case err != nil:
		return model.GradeRecord{}, fmt.Errorf("load history %s: %w", creatorID, err)
	}
	h.GradeLevel = grading.Level(level)
	at, err := parseTime(calculatedAt)
	if err != nil {
		return model.GradeRecord{}, err
	}
	return gradeRecord(creatorID, f, h, at, true), nil
}

func (s *SQLStore) TopN(ctx context.Context, n int) ([]model.FeaturedCreator, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+featuredColumns+` FROM featured_creators
		WHERE is_active = 1 AND is_cnec_recommended = 1
		ORDER BY cnec_total_score DESC, id ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query top featured: %w", err)
	}
	defer rows.Close()

	out := make([]model.FeaturedCreator, 0, n)
	for rows.Next() {
		f, err := scanFeatured(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM featured_creators`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return n
}

func (s *SQLStore) PutAggregates(ctx context.Context, creatorID string, h badge.History) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO creator_aggregates (
			creator_id, color_campaigns, skincare_campaigns, nail_campaigns, hair_campaigns,
			short_form_view_percentile, detailed_reviews, recollaboration_rate,
			avg_response_hours, response_count, on_time_rate, deliveries,
			follower_growth_percentile, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(creator_id) DO UPDATE SET
			color_campaigns = excluded.color_campaigns,
			skincare_campaigns = excluded.skincare_campaigns,
			nail_campaigns = excluded.nail_campaigns,
			hair_campaigns = excluded.hair_campaigns,
			short_form_view_percentile = excluded.short_form_view_percentile,
			detailed_reviews = excluded.detailed_reviews,
			recollaboration_rate = excluded.recollaboration_rate,
			avg_response_hours = excluded.avg_response_hours,
			response_count = excluded.response_count,
			on_time_rate = excluded.on_time_rate,
			deliveries = excluded.deliveries,
			follower_growth_percentile = excluded.follower_growth_percentile,
			updated_at = excluded.updated_at`,
		creatorID, h.ColorCampaigns, h.SkincareCampaigns, h.NailCampaigns, h.HairCampaigns,
		h.ShortFormViewPercentile, h.DetailedReviews, h.RecollaborationRate,
		h.AvgResponseHours, h.ResponseCount, h.OnTimeRate, h.Deliveries,
		h.FollowerGrowthPercentile, formatTime(s.opts.now()),
	)
	if err != nil {
		return fmt.Errorf("put aggregates %s: %w", creatorID, err)
	}
	return nil
}

func (s *SQLStore) Aggregates(ctx context.Context, creatorID string) (badge.History, error) {
	var h badge.History
	err := s.db.QueryRowContext(ctx, `
		SELECT color_campaigns, skincare_campaigns, nail_campaigns, hair_campaigns,
			short_form_view_percentile, detailed_reviews, recollaboration_rate,
			avg_response_hours, response_count, on_time_rate, deliveries,
			follower_growth_percentile
		FROM creator_aggregates WHERE creator_id = ?`, creatorID).Scan(
		&h.ColorCampaigns, &h.SkincareCampaigns, &h.NailCampaigns, &h.HairCampaigns,
		&h.ShortFormViewPercentile, &h.DetailedReviews, &h.RecollaborationRate,
		&h.AvgResponseHours, &h.ResponseCount, &h.OnTimeRate, &h.Deliveries,
		&h.FollowerGrowthPercentile,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return badge.History{}, nil
	}
	if err != nil {
		return badge.History{}, fmt.Errorf("load aggregates %s: %w", creatorID, err)
	}
	return h, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanFeatured(sc scanner) (model.FeaturedCreator, error) {
	var (
		f                    model.FeaturedCreator
		level                int
		regions, badges      string
		createdAt, updatedAt string
	)
	err := sc.Scan(
		&f.ID, &f.SourceUserID, &f.Name, &f.Email, &f.Phone, &f.ProfileImage, &f.Bio,
		&f.InstagramHandle, &f.InstagramFollowers, &f.YoutubeHandle, &f.YoutubeSubscribers,
		&f.TiktokHandle, &f.TiktokFollowers, &f.SourceCountry, &f.PrimaryCountry, &regions,
		&f.FeaturedType, &f.Active, &level, &f.GradeName, &f.TotalScore,
		&f.Recommended, &badges, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.FeaturedCreator{}, err
	}
	f.GradeLevel = grading.Level(level)

	if err := json.Unmarshal([]byte(regions), &f.ActiveRegions); err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("decode regions of %s: %w", f.ID, err)
	}
	if err := json.Unmarshal([]byte(badges), &f.Badges); err != nil {
		return model.FeaturedCreator{}, fmt.Errorf("decode badges of %s: %w", f.ID, err)
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.FeaturedCreator{}, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.FeaturedCreator{}, err
	}
	return f, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

var _ Store = (*SQLStore)(nil)
