// Package repository persists grade summaries, grade history and badge aggregates.
package repository

import (
	"context"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// Store is the grade persistence adapter.
//
// The summary and history writes are separate calls with no transaction
// between them; callers decide how to treat a failure of each.
type Store interface {
	// UpsertGradeSummary overwrites the featured-creator summary of creatorID,
	// creating an active auto record when none exists. creatorID is matched
	// against record ids first and then against source user ids. Last write wins.
	UpsertGradeSummary(ctx context.Context, creatorID string, b grading.ScoreBundle, badges badge.Set) error

	// UpsertGradeHistory overwrites the single current history row of creatorID.
	UpsertGradeHistory(ctx context.Context, creatorID string, b grading.ScoreBundle) error

	// LookupFeatured finds the active featured record of a platform user.
	// Returns ErrNotFound when there is none.
	LookupFeatured(ctx context.Context, sourceUserID string) (model.FeaturedInfo, error)

	// RegisterFeatured inserts a new featured record and returns it with its
	// id and timestamps set. Returns ErrAlreadyExists for a known source user.
	RegisterFeatured(ctx context.Context, f model.FeaturedCreator) (model.FeaturedCreator, error)

	// GradeRecord returns the stored grade of creatorID or ErrNotFound.
	// creatorID resolves the same way as in UpsertGradeSummary.
	GradeRecord(ctx context.Context, creatorID string) (model.GradeRecord, error)

	// TopN returns up to n active recommended creators by total score desc, then id.
	TopN(ctx context.Context, n int) ([]model.FeaturedCreator, error)

	// Count returns the number of featured records.
	Count(ctx context.Context) int

	// PutAggregates replaces the badge aggregates of creatorID.
	PutAggregates(ctx context.Context, creatorID string, h badge.History) error

	badge.AggregateProvider

	Close() error
}
