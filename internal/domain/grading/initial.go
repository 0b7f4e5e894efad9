package grading

// capiContentScale is the CAPI content score that maps to a perfect 5.0 quality score.
const capiContentScale = 70

// Bootstrap carries the cold-start signals available for a creator with no
// campaign history. CapiScore gates the estimate; CapiContentScore feeds
// content quality. CapiActivityScore is accepted but not used yet.
type Bootstrap struct {
	CapiScore         *float64 `json:"capi_score,omitempty" yaml:"capi_score,omitempty"`
	CapiContentScore  *float64 `json:"capi_content_score,omitempty" yaml:"capi_content_score,omitempty"`
	CapiActivityScore *float64 `json:"capi_activity_score,omitempty" yaml:"capi_activity_score,omitempty"`
}

// HasSignal reports whether a usable (non-zero) CAPI score is present.
func (b Bootstrap) HasSignal() bool {
	return floatOr(b.CapiScore, 0) != 0
}

// CalculateInitialGrade estimates a provisional bundle. Without a bootstrap
// signal it returns ZeroBundle and skips the scorers. With one, unknown
// inputs take neutral midpoint values and the regular pipeline runs.
func CalculateInitialGrade(b Bootstrap) ScoreBundle {
	if !b.HasSignal() {
		return ZeroBundle()
	}
	return Score(InitialMetrics(b))
}

// InitialMetrics builds the synthetic metrics used for a cold-start estimate.
func InitialMetrics(b Bootstrap) Metrics {
	content := floatOr(b.CapiContentScore, 0)
	return Metrics{
		AvgBrandRating:          3,
		RecollaborationRate:     0,
		GuidelineComplianceRate: 50,
		AvgQualityScore:         content / capiContentScale * 5,
		AvgEngagementRate:       5,
		AvgBrandFeedback:        3,
		OnTimeRate:              50,
		AvgResponseTime:         12,
		AvgRevisions:            2,
		FollowerGrowthRate:      0,
		EngagementChange:        0,
		MonthsActive:            0,
		CommunityActivityCount:  0,
		CompletedCampaigns:      0,
		IsManualMuse:            false,
	}
}
