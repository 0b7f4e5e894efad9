package grading_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cnec/gradeengine/internal/domain/grading"
	. "github.com/smartystreets/goconvey/convey"
)

func exampleCreator() grading.RawMetrics {
	return grading.RawMetrics{
		CreatorID:               "creator-1",
		AvgBrandRating:          grading.Ptr(4.5),
		RecollaborationRate:     grading.Ptr(40.0),
		GuidelineComplianceRate: grading.Ptr(90.0),
		AvgQualityScore:         grading.Ptr(4.0),
		AvgEngagementRate:       grading.Ptr(6.0),
		AvgBrandFeedback:        grading.Ptr(4.0),
		OnTimeRate:              grading.Ptr(95.0),
		AvgResponseTime:         grading.Ptr(3.0),
		AvgRevisions:            grading.Ptr(1.0),
		FollowerGrowthRate:      grading.Ptr(10.0),
		EngagementChange:        grading.Ptr(0.2),
		MonthsActive:            grading.Ptr(6.0),
		CommunityActivityCount:  grading.Ptr(5),
		CompletedCampaigns:      grading.Ptr(15),
	}
}

func TestCalculateTotalScore(t *testing.T) {
	Convey("Given a creator with a typical activity profile", t, func() {
		bundle := grading.CalculateTotalScore(exampleCreator())

		Convey("Then every sub-score matches its formula", func() {
			So(bundle.BrandTrustScore, ShouldAlmostEqual, 34.5)
			So(bundle.ContentQualityScore, ShouldAlmostEqual, 18.0)
			So(bundle.ProfessionalismScore, ShouldAlmostEqual, 17.5)
			So(bundle.GrowthScore, ShouldAlmostEqual, 6.0)
			So(bundle.ContributionScore, ShouldAlmostEqual, 2.5)
		})

		Convey("Then the total is the sum and the level is BLOOM", func() {
			So(bundle.TotalScore, ShouldAlmostEqual, 78.5)
			So(bundle.GradeLevel, ShouldEqual, grading.LevelBloom)
			So(bundle.GradeName, ShouldEqual, "BLOOM")
			So(bundle.GradeInfo.Color, ShouldEqual, "#8B5CF6")
			So(bundle.Recommended(), ShouldBeTrue)
		})

		Convey("Then the breakdown lists the five categories with their caps", func() {
			parts := bundle.Breakdown()
			So(parts, ShouldHaveLength, 5)
			sum, caps := 0.0, 0.0
			for _, p := range parts {
				sum += p.Score
				caps += p.Cap
			}
			So(sum, ShouldAlmostEqual, bundle.TotalScore)
			So(caps, ShouldEqual, float64(grading.MaxTotalScore))
			So(parts[0].Key, ShouldEqual, "brand_trust")
		})
	})

	Convey("Given empty metrics", t, func() {
		bundle := grading.CalculateTotalScore(grading.RawMetrics{})

		Convey("Then the slow response default still earns points", func() {
			// 2 points for the 24h default plus 5 for zero revisions.
			So(bundle.ProfessionalismScore, ShouldAlmostEqual, 7.0)
			So(bundle.GrowthScore, ShouldAlmostEqual, 2.5)
			So(bundle.BrandTrustScore, ShouldEqual, 0.0)
			So(bundle.GradeLevel, ShouldEqual, grading.LevelFresh)
			So(bundle.Recommended(), ShouldBeFalse)
		})
	})

	Convey("Given out-of-range and non-finite inputs", t, func() {
		raw := grading.RawMetrics{
			AvgBrandRating:          grading.Ptr(9.0),
			RecollaborationRate:     grading.Ptr(500.0),
			GuidelineComplianceRate: grading.Ptr(-20.0),
			AvgQualityScore:         grading.Ptr(math.NaN()),
			AvgEngagementRate:       grading.Ptr(math.Inf(1)),
			AvgBrandFeedback:        grading.Ptr(50.0),
			OnTimeRate:              grading.Ptr(300.0),
			AvgRevisions:            grading.Ptr(-4.0),
			FollowerGrowthRate:      grading.Ptr(-80.0),
			EngagementChange:        grading.Ptr(-10.0),
			MonthsActive:            grading.Ptr(120.0),
			CommunityActivityCount:  grading.Ptr(-3),
		}
		bundle := grading.CalculateTotalScore(raw)

		Convey("Then every sub-score stays within its cap", func() {
			So(bundle.BrandTrustScore, ShouldBeBetweenOrEqual, 0.0, float64(grading.BrandTrustCap))
			So(bundle.ContentQualityScore, ShouldBeBetweenOrEqual, 0.0, float64(grading.ContentQualityCap))
			So(bundle.ProfessionalismScore, ShouldBeBetweenOrEqual, 0.0, float64(grading.ProfessionalismCap))
			So(bundle.GrowthScore, ShouldEqual, 0.0)
			So(bundle.ContributionScore, ShouldAlmostEqual, 3.0)
			So(bundle.TotalScore, ShouldBeBetweenOrEqual, 0.0, float64(grading.MaxTotalScore))
		})

		Convey("Then NaN and Inf are treated as absent", func() {
			So(bundle.ContentQualityScore, ShouldAlmostEqual, 5.0)
		})
	})

	Convey("Given perfect metrics", t, func() {
		raw := grading.RawMetrics{
			AvgBrandRating:          grading.Ptr(5.0),
			RecollaborationRate:     grading.Ptr(100.0),
			GuidelineComplianceRate: grading.Ptr(100.0),
			AvgQualityScore:         grading.Ptr(5.0),
			AvgEngagementRate:       grading.Ptr(12.0),
			AvgBrandFeedback:        grading.Ptr(5.0),
			OnTimeRate:              grading.Ptr(100.0),
			AvgResponseTime:         grading.Ptr(1.0),
			AvgRevisions:            grading.Ptr(0.0),
			FollowerGrowthRate:      grading.Ptr(30.0),
			EngagementChange:        grading.Ptr(1.0),
			MonthsActive:            grading.Ptr(24.0),
			CommunityActivityCount:  grading.Ptr(20),
			CompletedCampaigns:      grading.Ptr(40),
		}
		bundle := grading.CalculateTotalScore(raw)

		Convey("Then the total reaches 100 and the level is ICONIC", func() {
			So(bundle.TotalScore, ShouldEqual, 100.0)
			So(bundle.GradeLevel, ShouldEqual, grading.LevelIconic)
		})
	})
}

func manualMuse() grading.RawMetrics {
	m := exampleCreator()
	m.IsManualMuse = grading.Ptr(true)
	m.CompletedCampaigns = grading.Ptr(0)
	return m
}

type namedProfile struct {
	name string
	raw  grading.RawMetrics
}

func edgeProfiles() []namedProfile {
	return []namedProfile{
		{"empty", grading.RawMetrics{}},
		{"negative rates", grading.RawMetrics{
			RecollaborationRate:     grading.Ptr(-40.0),
			GuidelineComplianceRate: grading.Ptr(-10.0),
			AvgEngagementRate:       grading.Ptr(-3.0),
			OnTimeRate:              grading.Ptr(-5.0),
			FollowerGrowthRate:      grading.Ptr(-25.0),
			EngagementChange:        grading.Ptr(-4.0),
			MonthsActive:            grading.Ptr(-2.0),
			CommunityActivityCount:  grading.Ptr(-7),
		}},
		{"huge ratings", grading.RawMetrics{
			AvgBrandRating:          grading.Ptr(500.0),
			RecollaborationRate:     grading.Ptr(1e6),
			GuidelineComplianceRate: grading.Ptr(1e4),
			AvgQualityScore:         grading.Ptr(99.0),
			AvgEngagementRate:       grading.Ptr(250.0),
			AvgBrandFeedback:        grading.Ptr(50.0),
			OnTimeRate:              grading.Ptr(300.0),
			AvgResponseTime:         grading.Ptr(0.0),
			AvgRevisions:            grading.Ptr(-9.0),
			FollowerGrowthRate:      grading.Ptr(1e3),
			EngagementChange:        grading.Ptr(40.0),
			MonthsActive:            grading.Ptr(240.0),
			CommunityActivityCount:  grading.Ptr(1000),
			CompletedCampaigns:      grading.Ptr(500),
		}},
		{"non-finite", grading.RawMetrics{
			AvgBrandRating:     grading.Ptr(math.NaN()),
			AvgEngagementRate:  grading.Ptr(math.Inf(1)),
			AvgResponseTime:    grading.Ptr(math.Inf(-1)),
			FollowerGrowthRate: grading.Ptr(math.NaN()),
		}},
		{"slow responder", grading.RawMetrics{
			AvgBrandRating:  grading.Ptr(3.3),
			AvgResponseTime: grading.Ptr(96.0),
			AvgRevisions:    grading.Ptr(7.5),
		}},
	}
}

func randomProfile(r *rand.Rand) grading.RawMetrics {
	between := func(lo, hi float64) *float64 {
		return grading.Ptr(lo + r.Float64()*(hi-lo))
	}
	return grading.RawMetrics{
		AvgBrandRating:          between(-1, 7),
		RecollaborationRate:     between(-20, 120),
		GuidelineComplianceRate: between(-20, 120),
		AvgQualityScore:         between(-1, 7),
		AvgEngagementRate:       between(-5, 25),
		AvgBrandFeedback:        between(-1, 7),
		OnTimeRate:              between(-20, 120),
		AvgResponseTime:         between(0, 72),
		AvgRevisions:            between(-1, 9),
		FollowerGrowthRate:      between(-50, 50),
		EngagementChange:        between(-2, 2),
		MonthsActive:            between(0, 36),
		CommunityActivityCount:  grading.Ptr(r.IntN(30) - 5),
		CompletedCampaigns:      grading.Ptr(r.IntN(60)),
		IsManualMuse:            grading.Ptr(r.IntN(20) == 0),
	}
}

func checkBundle(b grading.ScoreBundle) {
	sum := b.BrandTrustScore + b.ContentQualityScore + b.ProfessionalismScore + b.GrowthScore + b.ContributionScore
	So(b.TotalScore, ShouldEqual, math.Round(sum*100)/100)
	So(b.TotalScore, ShouldBeBetweenOrEqual, 0.0, float64(grading.MaxTotalScore))
	for _, c := range b.Breakdown() {
		So(c.Score, ShouldBeBetweenOrEqual, 0.0, c.Cap)
	}
	So(b.GradeLevel.Valid(), ShouldBeTrue)
	So(b.GradeName, ShouldEqual, b.GradeLevel.String())
}

func TestScoreProperties(t *testing.T) {
	Convey("Given identical inputs", t, func() {
		Convey("Then a full metric profile scores identically every time", func() {
			first := grading.CalculateTotalScore(exampleCreator())
			second := grading.CalculateTotalScore(exampleCreator())
			So(second, ShouldResemble, first)
			So(second.GradeLevel, ShouldEqual, first.GradeLevel)
			So(second.TotalScore, ShouldEqual, first.TotalScore)
		})

		Convey("Then a manual MUSE profile scores identically every time", func() {
			first := grading.CalculateTotalScore(manualMuse())
			second := grading.CalculateTotalScore(manualMuse())
			So(second, ShouldResemble, first)
			So(first.GradeLevel, ShouldEqual, grading.LevelMuse)
		})
	})

	Convey("Given edge-case inputs", t, func() {
		for _, p := range edgeProfiles() {
			Convey("Then the "+p.name+" profile totals its rounded sub-scores", func() {
				b := grading.CalculateTotalScore(p.raw)
				checkBundle(b)
				So(grading.CalculateTotalScore(p.raw), ShouldResemble, b)
			})
		}
	})

	Convey("Given generated inputs", t, func() {
		r := rand.New(rand.NewPCG(7, 42))
		for i := 0; i < 250; i++ {
			raw := randomProfile(r)
			b := grading.CalculateTotalScore(raw)
			checkBundle(b)
			So(grading.CalculateTotalScore(raw), ShouldResemble, b)
		}
	})
}

func TestSubScores(t *testing.T) {
	Convey("Re-collaboration saturates at 50%", t, func() {
		at50 := grading.Normalize(grading.RawMetrics{RecollaborationRate: grading.Ptr(50.0)})
		at100 := grading.Normalize(grading.RawMetrics{RecollaborationRate: grading.Ptr(100.0)})
		So(grading.BrandTrustScore(at50), ShouldEqual, grading.BrandTrustScore(at100))
		So(grading.BrandTrustScore(at50), ShouldEqual, 15.0)
	})

	Convey("Response time bands are inclusive at their upper bound", t, func() {
		cases := []struct {
			hours  float64
			points float64
		}{
			{0, 5}, {2, 5}, {2.01, 4}, {6, 4}, {6.5, 3}, {12, 3}, {12.5, 2}, {24, 2}, {24.1, 1}, {200, 1},
		}
		for _, c := range cases {
			So(grading.ResponseTimePoints(c.hours), ShouldEqual, c.points)
		}
	})

	Convey("Missing response time defaults to 24 hours", t, func() {
		m := grading.Normalize(grading.RawMetrics{AvgResponseTime: grading.Ptr(math.NaN())})
		So(m.AvgResponseTime, ShouldEqual, grading.DefaultResponseTimeHours)
	})

	Convey("Engagement change is centered on the midpoint", t, func() {
		flat := grading.Normalize(grading.RawMetrics{})
		up := grading.Normalize(grading.RawMetrics{EngagementChange: grading.Ptr(0.5)})
		down := grading.Normalize(grading.RawMetrics{EngagementChange: grading.Ptr(-0.5)})
		So(grading.GrowthScore(flat), ShouldEqual, 2.5)
		So(grading.GrowthScore(up), ShouldEqual, 5.0)
		So(grading.GrowthScore(down), ShouldEqual, 0.0)
	})
}

func TestDecideLevel(t *testing.T) {
	Convey("Given the ordered grade rules", t, func() {
		Convey("A manual MUSE ignores the score", func() {
			So(grading.DecideLevel(grading.GradeInput{ManualMuse: true}), ShouldEqual, grading.LevelMuse)
		})

		Convey("ICONIC needs score, campaigns and re-collaboration together", func() {
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 80, CompletedCampaigns: 30, RecollaborationRate: 30}), ShouldEqual, grading.LevelIconic)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 79.99, CompletedCampaigns: 30, RecollaborationRate: 30}), ShouldEqual, grading.LevelBloom)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 100, CompletedCampaigns: 29, RecollaborationRate: 100}), ShouldEqual, grading.LevelBloom)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 100, CompletedCampaigns: 100, RecollaborationRate: 29.9}), ShouldEqual, grading.LevelBloom)
		})

		Convey("BLOOM and GLOW gate on campaigns", func() {
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 60, CompletedCampaigns: 10}), ShouldEqual, grading.LevelBloom)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 60, CompletedCampaigns: 9}), ShouldEqual, grading.LevelGlow)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 40, CompletedCampaigns: 3}), ShouldEqual, grading.LevelGlow)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 40, CompletedCampaigns: 2}), ShouldEqual, grading.LevelFresh)
			So(grading.DecideLevel(grading.GradeInput{TotalScore: 39.99, CompletedCampaigns: 50}), ShouldEqual, grading.LevelFresh)
		})
	})
}

func TestLevels(t *testing.T) {
	Convey("Given the grade table", t, func() {
		levels := grading.Levels()

		Convey("Then it lists five levels in ascending order", func() {
			So(levels, ShouldHaveLength, 5)
			for i, l := range levels {
				So(l.Level, ShouldEqual, grading.Level(i+1))
				So(l.Level.Valid(), ShouldBeTrue)
			}
			So(levels[0].Name, ShouldEqual, "FRESH")
			So(levels[4].Name, ShouldEqual, "MUSE")
			So(levels[4].Color, ShouldEqual, "#F59E0B")
		})

		Convey("Then unknown levels resolve to FRESH", func() {
			So(grading.Level(0).Valid(), ShouldBeFalse)
			So(grading.Info(grading.Level(9)).Name, ShouldEqual, "FRESH")
			So(grading.Level(42).String(), ShouldEqual, "FRESH")
		})
	})
}

func TestCalculateInitialGrade(t *testing.T) {
	Convey("Given no bootstrap signal", t, func() {
		Convey("Then a nil CAPI score yields the zero bundle", func() {
			b := grading.CalculateInitialGrade(grading.Bootstrap{CapiContentScore: grading.Ptr(60.0)})
			So(b.TotalScore, ShouldEqual, 0.0)
			So(b.BrandTrustScore, ShouldEqual, 0.0)
			So(b.GradeLevel, ShouldEqual, grading.LevelFresh)
			So(b.GradeName, ShouldEqual, "FRESH")
		})

		Convey("Then a zero CAPI score yields the zero bundle", func() {
			b := grading.CalculateInitialGrade(grading.Bootstrap{CapiScore: grading.Ptr(0.0)})
			So(b, ShouldResemble, grading.ZeroBundle())
		})
	})

	Convey("Given a CAPI score", t, func() {
		Convey("Then neutral defaults produce a FRESH estimate", func() {
			b := grading.CalculateInitialGrade(grading.Bootstrap{
				CapiScore:        grading.Ptr(70.0),
				CapiContentScore: grading.Ptr(56.0),
			})
			So(b.BrandTrustScore, ShouldAlmostEqual, 14.0)
			So(b.ContentQualityScore, ShouldAlmostEqual, 16.0)
			So(b.ProfessionalismScore, ShouldAlmostEqual, 11.0)
			So(b.GrowthScore, ShouldAlmostEqual, 2.5)
			So(b.ContributionScore, ShouldEqual, 0.0)
			So(b.TotalScore, ShouldAlmostEqual, 43.5)
			// No campaigns yet, so the score alone cannot lift the level.
			So(b.GradeLevel, ShouldEqual, grading.LevelFresh)
		})

		Convey("Then the content score drives content quality", func() {
			full := grading.CalculateInitialGrade(grading.Bootstrap{CapiScore: grading.Ptr(1.0), CapiContentScore: grading.Ptr(70.0)})
			none := grading.CalculateInitialGrade(grading.Bootstrap{CapiScore: grading.Ptr(1.0)})
			So(full.TotalScore, ShouldAlmostEqual, 45.5)
			So(none.TotalScore, ShouldAlmostEqual, 35.5)
		})
	})
}
