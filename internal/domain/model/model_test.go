package model_test

import (
	"testing"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeaturedCreator(t *testing.T) {
	Convey("Given a featured creator active in korea", t, func() {
		f := model.FeaturedCreator{SourceUserID: "user-1", ActiveRegions: []string{"korea"}, Active: true}

		Convey("Then an ungraded record reads as FRESH", func() {
			info := f.Info()
			So(info.IsFeatured, ShouldBeTrue)
			So(info.GradeLevel, ShouldEqual, grading.LevelFresh)
			So(info.GradeName, ShouldEqual, "FRESH")
			So(info.TotalScore, ShouldEqual, 0.0)
			So(info.GradeInfo.Label, ShouldEqual, "새싹")
		})

		Convey("When a GLOW grade is applied", func() {
			bundle := grading.Score(grading.Metrics{})
			bundle.GradeLevel = grading.LevelGlow
			bundle.GradeName = "GLOW"
			bundle.TotalScore = 45
			f.ApplyGrade(bundle, badge.NewSet(badge.FastResponder))

			Convey("Then the summary fields and the recommended flag follow", func() {
				So(f.GradeLevel, ShouldEqual, grading.LevelGlow)
				So(f.TotalScore, ShouldEqual, 45.0)
				So(f.Recommended, ShouldBeTrue)
				So(f.Badges.Has(badge.FastResponder), ShouldBeTrue)
				So(f.Info().GradeInfo.Color, ShouldEqual, "#3B82F6")
			})
		})
	})
}

func TestCreatorProfile(t *testing.T) {
	Convey("Given a source profile with only URLs for its channels", t, func() {
		p := model.CreatorProfile{
			UserID:       "user-9",
			ChannelName:  "glowy",
			AvatarURL:    "https://cdn.example/avatar.png",
			InstagramURL: "https://instagram.com/glowy.daily/",
			YoutubeURL:   "https://youtube.com/@glowy",
			TiktokHandle: "glowytok",
			CapiScore:    grading.Ptr(72.0),
		}

		Convey("When it is turned into a featured record", func() {
			initial := grading.CalculateInitialGrade(p.Bootstrap())
			f := p.Featured("korea", initial)

			Convey("Then identity fields fall back in order", func() {
				So(f.SourceUserID, ShouldEqual, "user-9")
				So(f.Name, ShouldEqual, "glowy")
				So(f.ProfileImage, ShouldEqual, "https://cdn.example/avatar.png")
			})

			Convey("Then channel handles come from the URL tail", func() {
				So(f.InstagramHandle, ShouldEqual, "glowy.daily")
				So(f.YoutubeHandle, ShouldEqual, "@glowy")
				So(f.TiktokHandle, ShouldEqual, "glowytok")
			})

			Convey("Then it is an active manual record in the region", func() {
				So(f.SourceCountry, ShouldEqual, "KO")
				So(f.PrimaryCountry, ShouldEqual, "KO")
				So(f.ActiveRegions, ShouldResemble, []string{"korea"})
				So(f.FeaturedType, ShouldEqual, model.FeaturedTypeManual)
				So(f.Active, ShouldBeTrue)
			})

			Convey("Then it carries the initial grade", func() {
				So(f.GradeLevel, ShouldEqual, initial.GradeLevel)
				So(f.TotalScore, ShouldEqual, initial.TotalScore)
				So(f.Recommended, ShouldEqual, initial.Recommended())
			})
		})
	})
}
