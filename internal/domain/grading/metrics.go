// Package grading computes creator sub-scores, total scores and grade levels.
//
// Every function in this package is pure: no I/O, no shared mutable state,
// and no error returns. Missing or invalid inputs are defaulted by Normalize.
package grading

import "math"

// DefaultResponseTimeHours is used when a creator has no measured response time.
const DefaultResponseTimeHours = 24

// RawMetrics is a partial view of a creator's activity as assembled from
// historical records. Nil fields are defaulted by Normalize.
type RawMetrics struct {
	CreatorID string `json:"creator_id,omitempty" yaml:"creator_id,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`

	// Brand trust inputs. Rating is on a 0-5 scale, rates are percentages.
	AvgBrandRating          *float64 `json:"avg_brand_rating,omitempty" yaml:"avg_brand_rating,omitempty"`
	RecollaborationRate     *float64 `json:"recollaboration_rate,omitempty" yaml:"recollaboration_rate,omitempty"`
	GuidelineComplianceRate *float64 `json:"guideline_compliance_rate,omitempty" yaml:"guideline_compliance_rate,omitempty"`

	// Content quality inputs.
	AvgQualityScore   *float64 `json:"avg_quality_score,omitempty" yaml:"avg_quality_score,omitempty"`
	AvgEngagementRate *float64 `json:"avg_engagement_rate,omitempty" yaml:"avg_engagement_rate,omitempty"`
	AvgBrandFeedback  *float64 `json:"avg_brand_feedback,omitempty" yaml:"avg_brand_feedback,omitempty"`

	// Professionalism inputs. Response time is in hours.
	OnTimeRate      *float64 `json:"on_time_rate,omitempty" yaml:"on_time_rate,omitempty"`
	AvgResponseTime *float64 `json:"avg_response_time,omitempty" yaml:"avg_response_time,omitempty"`
	AvgRevisions    *float64 `json:"avg_revisions,omitempty" yaml:"avg_revisions,omitempty"`

	// Growth inputs; both may be negative.
	FollowerGrowthRate *float64 `json:"follower_growth_rate,omitempty" yaml:"follower_growth_rate,omitempty"`
	EngagementChange   *float64 `json:"engagement_change,omitempty" yaml:"engagement_change,omitempty"`

	// Contribution inputs.
	MonthsActive           *float64 `json:"months_active,omitempty" yaml:"months_active,omitempty"`
	CommunityActivityCount *int     `json:"community_activity_count,omitempty" yaml:"community_activity_count,omitempty"`

	// Gating inputs.
	CompletedCampaigns *int  `json:"completed_campaigns,omitempty" yaml:"completed_campaigns,omitempty"`
	IsManualMuse       *bool `json:"is_manual_muse,omitempty" yaml:"is_manual_muse,omitempty"`
}

// Metrics is the total form of RawMetrics: every field holds a value.
type Metrics struct {
	CreatorID string
	Region    string

	AvgBrandRating          float64
	RecollaborationRate     float64
	GuidelineComplianceRate float64

	AvgQualityScore   float64
	AvgEngagementRate float64
	AvgBrandFeedback  float64

	OnTimeRate      float64
	AvgResponseTime float64
	AvgRevisions    float64

	FollowerGrowthRate float64
	EngagementChange   float64

	MonthsActive           float64
	CommunityActivityCount int

	CompletedCampaigns int
	IsManualMuse       bool
}

// Ptr returns a pointer to v. It keeps RawMetrics literals short.
func Ptr[T any](v T) *T {
	return &v
}

// Normalize fills every absent field of raw with its default. NaN and
// infinite values count as absent.
func Normalize(raw RawMetrics) Metrics {
	return Metrics{
		CreatorID: raw.CreatorID,
		Region:    raw.Region,

		AvgBrandRating:          floatOr(raw.AvgBrandRating, 0),
		RecollaborationRate:     floatOr(raw.RecollaborationRate, 0),
		GuidelineComplianceRate: floatOr(raw.GuidelineComplianceRate, 0),

		AvgQualityScore:   floatOr(raw.AvgQualityScore, 0),
		AvgEngagementRate: floatOr(raw.AvgEngagementRate, 0),
		AvgBrandFeedback:  floatOr(raw.AvgBrandFeedback, 0),

		OnTimeRate:      floatOr(raw.OnTimeRate, 0),
		AvgResponseTime: floatOr(raw.AvgResponseTime, DefaultResponseTimeHours),
		AvgRevisions:    floatOr(raw.AvgRevisions, 0),

		FollowerGrowthRate: floatOr(raw.FollowerGrowthRate, 0),
		EngagementChange:   floatOr(raw.EngagementChange, 0),

		MonthsActive:           floatOr(raw.MonthsActive, 0),
		CommunityActivityCount: intOr(raw.CommunityActivityCount, 0),

		CompletedCampaigns: intOr(raw.CompletedCampaigns, 0),
		IsManualMuse:       raw.IsManualMuse != nil && *raw.IsManualMuse,
	}
}

func floatOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
