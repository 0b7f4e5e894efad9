package gradectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cnec/gradeengine/internal/adapters/http/api"
	"github.com/cnec/gradeengine/internal/adapters/repository"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/model"
	"github.com/cnec/gradeengine/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const bloomYAML = `creator_id: creator-1
avg_brand_rating: 4.5
recollaboration_rate: 40
guideline_compliance_rate: 90
avg_quality_score: 4.0
avg_engagement_rate: 6.0
avg_brand_feedback: 4.0
on_time_rate: 95
avg_response_time: 3
avg_revisions: 1
follower_growth_rate: 10
engagement_change: 0.2
months_active: 6
community_activity_count: 5
completed_campaigns: 15
`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func execute(stdin string, args ...string) (string, error) {
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScoreCommand(t *testing.T) {
	Convey("Given a metrics file", t, func() {
		path := writeFile(t, "metrics.yaml", bloomYAML)

		Convey("When scored for the console", func() {
			out, err := execute("", "score", "-f", path)

			Convey("Then the grade and breakdown are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "BLOOM")
				So(out, ShouldContainSubstring, "78.50")
				So(out, ShouldContainSubstring, "Brand Trust")
				So(out, ShouldContainSubstring, "Recommended")
				So(out, ShouldNotContainSubstring, "Badges")
			})
		})

		Convey("When scored as JSON", func() {
			out, err := execute("", "score", "-f", path, "--json")
			So(err, ShouldBeNil)

			var doc scoreOutput
			So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
			So(doc.Grade.TotalScore, ShouldAlmostEqual, 78.5)
			So(doc.Recommended, ShouldBeTrue)
			So(doc.Breakdown, ShouldHaveLength, 5)
		})
	})

	Convey("Given metrics with a history on stdin", t, func() {
		in := bloomYAML + "history:\n  nail_campaigns: 12\n  response_count: 4\n  avg_response_hours: 1.5\n"

		out, err := execute(in, "score", "-f", "-", "--json")

		Convey("Then badges are evaluated", func() {
			So(err, ShouldBeNil)
			var doc map[string]any
			So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
			So(doc["badges"], ShouldResemble, []any{"nail_artist", "fast_responder"})
		})
	})

	Convey("Given JSON input", t, func() {
		path := writeFile(t, "metrics.json", `{"completed_campaigns": 40, "is_manual_muse": true}`)
		out, err := execute("", "score", "-f", path)
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "MUSE")
	})

	Convey("Given no file flag", t, func() {
		_, err := execute("", "score")
		So(err, ShouldNotBeNil)
	})

	Convey("Given a missing file", t, func() {
		_, err := execute("", "score", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "nope.yaml")
	})
}

func TestStaticCommands(t *testing.T) {
	Convey("Given the initial command", t, func() {
		out, err := execute("", "initial", "--capi-score", "80", "--capi-content-score", "56", "--json")
		So(err, ShouldBeNil)
		var doc map[string]any
		So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
		So(doc["total_score"], ShouldEqual, 43.5)

		Convey("Then no CAPI score yields FRESH", func() {
			out, err := execute("", "initial")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "FRESH")
			So(out, ShouldContainSubstring, "0.00")
		})
	})

	Convey("Given the levels command", t, func() {
		out, err := execute("", "levels")
		So(err, ShouldBeNil)
		for _, name := range []string{"FRESH", "GLOW", "BLOOM", "ICONIC", "MUSE"} {
			So(out, ShouldContainSubstring, name)
		}
	})

	Convey("Given the badges command", t, func() {
		out, err := execute("", "badges", "--json")
		So(err, ShouldBeNil)
		var doc []map[string]any
		So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
		So(doc, ShouldHaveLength, 10)
		So(doc[0]["id"], ShouldEqual, "color_expert")
	})
}

func TestRegisterCommand(t *testing.T) {
	Convey("Given a creator profile and a database path", t, func() {
		db := filepath.Join(t.TempDir(), "grades.db")
		profile := writeFile(t, "profile.yaml", `user_id: user-1
channel_name: glowy
instagram_url: https://instagram.com/glowy.daily/
capi_score: 70
capi_content_score: 70
region: japan
`)

		Convey("When the creator is registered", func() {
			out, err := execute("", "register", "-f", profile, "--db", db)

			Convey("Then the initial grade is printed and stored", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "glowy")
				So(out, ShouldContainSubstring, "FRESH")
				So(out, ShouldContainSubstring, "45.50")
				So(out, ShouldContainSubstring, "japan")

				ctx := context.Background()
				store, err := repository.OpenSQLStore(ctx, db, repository.WithMetricsUpdateInterval(0))
				So(err, ShouldBeNil)
				defer store.Close()

				info, err := store.LookupFeatured(ctx, "user-1")
				So(err, ShouldBeNil)
				So(info.TotalScore, ShouldAlmostEqual, 45.5)
			})

			Convey("And registering it again fails", func() {
				_, err := execute("", "register", "-f", profile, "--db", db)
				So(errors.Is(err, repository.ErrAlreadyExists), ShouldBeTrue)
			})
		})

		Convey("When the region flag is given and JSON is requested", func() {
			out, err := execute("", "register", "-f", profile, "--db", db, "--region", "korea", "--json")
			So(err, ShouldBeNil)

			var f model.FeaturedCreator
			So(json.Unmarshal([]byte(out), &f), ShouldBeNil)
			So(f.ActiveRegions, ShouldResemble, []string{"korea"})
			So(f.InstagramHandle, ShouldEqual, "glowy.daily")
			So(f.FeaturedType, ShouldEqual, model.FeaturedTypeManual)
		})
	})

	Convey("Given a profile without a user id", t, func() {
		profile := writeFile(t, "profile.yaml", "name: anon\n")
		_, err := execute("", "register", "-f", profile, "--db", filepath.Join(t.TempDir(), "grades.db"))
		So(err, ShouldNotBeNil)
	})
}

func TestRecomputeCommand(t *testing.T) {
	Convey("Given a batch file and a database path", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "grades.db")
		batch := writeFile(t, "batch.yaml", `requests:
  - creator_id: creator-1
    metrics:
      avg_brand_rating: 4.5
      recollaboration_rate: 40
      guideline_compliance_rate: 90
      avg_quality_score: 4.0
      avg_engagement_rate: 6.0
      avg_brand_feedback: 4.0
      on_time_rate: 95
      avg_response_time: 3
      avg_revisions: 1
      follower_growth_rate: 10
      engagement_change: 0.2
      months_active: 6
      community_activity_count: 5
      completed_campaigns: 15
    history:
      detailed_reviews: 21
  - creator_id: creator-2
    metrics:
      completed_campaigns: 1
`)

		out, err := execute("", "recompute", "-f", batch, "--db", db)

		Convey("Then every creator is printed and stored", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "creator-1")
			So(out, ShouldContainSubstring, "review_expert")
			So(out, ShouldContainSubstring, "creator-2")

			ctx := context.Background()
			store, err := repository.OpenSQLStore(ctx, db, repository.WithMetricsUpdateInterval(0))
			So(err, ShouldBeNil)
			defer store.Close()

			rec, err := store.GradeRecord(ctx, "creator-1")
			So(err, ShouldBeNil)
			So(rec.Grade.TotalScore, ShouldAlmostEqual, 78.5)
			So(rec.Badges.Strings(), ShouldResemble, []string{"review_expert"})
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})

	Convey("Given a batch with an invalid request", t, func() {
		batch := writeFile(t, "batch.yaml", "requests:\n  - metrics: {completed_campaigns: 3}\n")
		_, err := execute("", "recompute", "-f", batch, "--db", filepath.Join(t.TempDir(), "grades.db"))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "1 of 1 creators were not saved")
	})

	Convey("Given an empty batch", t, func() {
		batch := writeFile(t, "batch.yaml", "requests: []\n")
		_, err := execute("", "recompute", "-f", batch, "--db", filepath.Join(t.TempDir(), "grades.db"))
		So(err, ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given generated requests", t, func() {
		reqs := GenerateRequests(20, 3, 5)

		Convey("Then they cycle over the creators and repeat ids as asked", func() {
			So(reqs, ShouldHaveLength, 20)
			creators := map[string]bool{}
			ids := map[string]bool{}
			for _, r := range reqs {
				creators[r.CreatorID] = true
				ids[r.RequestID] = true
				So(r.Metrics.CompletedCampaigns, ShouldNotBeNil)
			}
			So(creators, ShouldHaveLength, 3)
			So(ids, ShouldHaveLength, 17)
			So(reqs[5].RequestID, ShouldEqual, reqs[4].RequestID)
		})
	})

	Convey("Given a running grade engine", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithStore(repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(0))),
			service.WithLogger(logger.Discard()),
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Close(ctx)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When a load run is submitted", func() {
			stats, err := RunLoad(ctx, LoadConfig{
				BaseURL:        srv.URL,
				Requests:       20,
				Creators:       3,
				Workers:        4,
				Timeout:        5 * time.Second,
				DuplicateEvery: 5,
			})

			Convey("Then every response is counted", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 20)
				So(stats.Accepted, ShouldEqual, 17)
				So(stats.Duplicate, ShouldEqual, 3)
				So(stats.Failed, ShouldEqual, 0)
			})
		})

		Convey("When the target is unreachable", func() {
			_, err := RunLoad(ctx, LoadConfig{BaseURL: "http://127.0.0.1:1", Requests: 1, Creators: 1, Workers: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}
