package grading

import "math"

// Sub-score caps. They sum to MaxTotalScore.
const (
	BrandTrustCap      = 40
	ContentQualityCap  = 25
	ProfessionalismCap = 20
	GrowthCap          = 10
	ContributionCap    = 5

	MaxTotalScore = BrandTrustCap + ContentQualityCap + ProfessionalismCap + GrowthCap + ContributionCap
)

// Saturation points: an input at or above these values earns its full component.
const (
	recollabSaturationRate   = 50
	engagementSaturationRate = 10
	followerGrowthSaturation = 20
	monthsActiveSaturation   = 12
	communitySaturationCount = 10
)

// engagementChangeMidpoint is the growth points awarded for an unchanged engagement rate.
const engagementChangeMidpoint = 2.5

// responseBand awards points for an average response time at or below maxHours.
type responseBand struct {
	maxHours float64
	points   float64
}

// responseBands is ordered from fastest to slowest; anything slower earns slowResponsePoints.
var responseBands = []responseBand{
	{maxHours: 2, points: 5},
	{maxHours: 6, points: 4},
	{maxHours: 12, points: 3},
	{maxHours: 24, points: 2},
}

const slowResponsePoints = 1

// BrandTrustScore scores advertiser rating, re-collaboration and guideline
// compliance. Capped at 40.
func BrandTrustScore(m Metrics) float64 {
	rating := clamp(m.AvgBrandRating/5*15, 0, 15)
	recollab := clamp(math.Min(m.RecollaborationRate/recollabSaturationRate, 1)*15, 0, 15)
	compliance := clamp(m.GuidelineComplianceRate/100*10, 0, 10)
	return capScore(rating+recollab+compliance, BrandTrustCap)
}

// ContentQualityScore scores upload quality, engagement and brand feedback.
// Capped at 25.
func ContentQualityScore(m Metrics) float64 {
	quality := clamp(m.AvgQualityScore*2, 0, 10)
	engagement := clamp(math.Min(m.AvgEngagementRate/engagementSaturationRate, 1)*10, 0, 10)
	feedback := clamp(m.AvgBrandFeedback/5*5, 0, 5)
	return capScore(quality+engagement+feedback, ContentQualityCap)
}

// ProfessionalismScore scores deadline keeping, response speed and revision
// requests. Capped at 20.
func ProfessionalismScore(m Metrics) float64 {
	onTime := clamp(m.OnTimeRate/100*10, 0, 10)
	response := ResponseTimePoints(m.AvgResponseTime)
	revisions := clamp(math.Max(5-m.AvgRevisions, 0), 0, 5)
	return capScore(onTime+response+revisions, ProfessionalismCap)
}

// ResponseTimePoints maps an average response time in hours onto its band.
func ResponseTimePoints(hours float64) float64 {
	for _, b := range responseBands {
		if hours <= b.maxHours {
			return b.points
		}
	}
	return slowResponsePoints
}

// GrowthScore scores follower growth and the change in engagement rate.
// Capped at 10.
func GrowthScore(m Metrics) float64 {
	follower := clamp(math.Min(m.FollowerGrowthRate/followerGrowthSaturation, 1)*5, 0, 5)
	engagement := clamp(engagementChangeMidpoint+m.EngagementChange*5, 0, 5)
	return capScore(follower+engagement, GrowthCap)
}

// ContributionScore scores tenure and community participation. Capped at 5.
func ContributionScore(m Metrics) float64 {
	tenure := clamp(math.Min(m.MonthsActive/monthsActiveSaturation, 1)*3, 0, 3)
	community := clamp(math.Min(float64(m.CommunityActivityCount)/communitySaturationCount, 1)*2, 0, 2)
	return capScore(tenure+community, ContributionCap)
}

func capScore(v, max float64) float64 {
	return round2(clamp(v, 0, max))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
