package grading

// ScoreBundle is the output of a scoring pass.
type ScoreBundle struct {
	TotalScore           float64   `json:"total_score" yaml:"total_score"`
	BrandTrustScore      float64   `json:"brand_trust_score" yaml:"brand_trust_score"`
	ContentQualityScore  float64   `json:"content_quality_score" yaml:"content_quality_score"`
	ProfessionalismScore float64   `json:"professionalism_score" yaml:"professionalism_score"`
	GrowthScore          float64   `json:"growth_score" yaml:"growth_score"`
	ContributionScore    float64   `json:"contribution_score" yaml:"contribution_score"`
	GradeLevel           Level     `json:"grade_level" yaml:"grade_level"`
	GradeName            string    `json:"grade_name" yaml:"grade_name"`
	GradeInfo            GradeInfo `json:"grade_info" yaml:"grade_info"`
}

// Recommended reports whether the bundle earns the recommended flag (GLOW or above).
func (b ScoreBundle) Recommended() bool {
	return b.GradeLevel >= LevelGlow
}

// CategoryScore is one line of a bundle breakdown.
type CategoryScore struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Cap   float64 `json:"cap"`
}

// Breakdown lists the five sub-scores with their caps, in display order.
func (b ScoreBundle) Breakdown() []CategoryScore {
	return []CategoryScore{
		{Key: "brand_trust", Name: "Brand Trust", Score: b.BrandTrustScore, Cap: BrandTrustCap},
		{Key: "content_quality", Name: "Content Quality", Score: b.ContentQualityScore, Cap: ContentQualityCap},
		{Key: "professionalism", Name: "Professionalism", Score: b.ProfessionalismScore, Cap: ProfessionalismCap},
		{Key: "growth", Name: "Growth", Score: b.GrowthScore, Cap: GrowthCap},
		{Key: "contribution", Name: "Contribution", Score: b.ContributionScore, Cap: ContributionCap},
	}
}

// CalculateTotalScore normalizes raw and scores it.
func CalculateTotalScore(raw RawMetrics) ScoreBundle {
	return Score(Normalize(raw))
}

// Score runs the five category scorers over m and decides the grade level.
func Score(m Metrics) ScoreBundle {
	b := ScoreBundle{
		BrandTrustScore:      BrandTrustScore(m),
		ContentQualityScore:  ContentQualityScore(m),
		ProfessionalismScore: ProfessionalismScore(m),
		GrowthScore:          GrowthScore(m),
		ContributionScore:    ContributionScore(m),
	}
	b.TotalScore = round2(b.BrandTrustScore + b.ContentQualityScore + b.ProfessionalismScore + b.GrowthScore + b.ContributionScore)

	level := DecideLevel(GradeInput{
		TotalScore:          b.TotalScore,
		CompletedCampaigns:  m.CompletedCampaigns,
		RecollaborationRate: m.RecollaborationRate,
		ManualMuse:          m.IsManualMuse,
	})
	return withLevel(b, level)
}

// ZeroBundle is the bundle of a creator with nothing to score: all zeros, FRESH.
func ZeroBundle() ScoreBundle {
	return withLevel(ScoreBundle{}, LevelFresh)
}

func withLevel(b ScoreBundle, level Level) ScoreBundle {
	info := Info(level)
	b.GradeLevel = level
	b.GradeName = info.Name
	b.GradeInfo = info
	return b
}
