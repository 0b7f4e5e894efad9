// Package model contains the records passed between the grading layers.
package model

import (
	"time"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
)

// RecomputeRequest asks for one creator's grade to be recomputed and stored.
type RecomputeRequest struct {
	RequestID string             `json:"request_id,omitempty" yaml:"request_id,omitempty"` // idempotency key
	CreatorID string             `json:"creator_id" yaml:"creator_id"`
	Metrics   grading.RawMetrics `json:"metrics" yaml:"metrics"`
	// History overrides the stored badge aggregates when set.
	History     *badge.History `json:"history,omitempty" yaml:"history,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at,omitempty" yaml:"submitted_at,omitempty"`
}

// GradeRecord is the stored grade of a creator: the latest bundle and badges.
type GradeRecord struct {
	CreatorID        string              `json:"creator_id"`
	Grade            grading.ScoreBundle `json:"grade"`
	Badges           badge.Set           `json:"badges"`
	Recommended      bool                `json:"recommended"`
	LastCalculatedAt time.Time           `json:"last_calculated_at"`
}
