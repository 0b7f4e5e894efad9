package gradectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

// LoadConfig holds the settings of a load run against /recompute.
type LoadConfig struct {
	BaseURL  string
	Requests int
	Creators int
	Workers  int
	Timeout  time.Duration
	// DuplicateEvery resubmits every Nth request with a previous request id. Zero disables it.
	DuplicateEvery int
}

// LoadStats counts the responses of a load run.
type LoadStats struct {
	Submitted int64         `json:"submitted"`
	Accepted  int64         `json:"accepted"`
	Duplicate int64         `json:"duplicate"`
	Rejected  int64         `json:"rejected"`
	Failed    int64         `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// PerSecond is the submission rate of the run.
func (s LoadStats) PerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}

func newLoadCmd() *cobra.Command {
	cfg := LoadConfig{}
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit generated recompute requests to a running grade engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := RunLoad(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			st := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), st.header.Render("Load run"))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n%s %d\n%s %d\n%s %d\n%s %d\n%s %s (%.0f req/s)\n",
				st.label.Render("Submitted"), stats.Submitted,
				st.label.Render("Accepted"), stats.Accepted,
				st.label.Render("Duplicate"), stats.Duplicate,
				st.label.Render("Rejected"), stats.Rejected,
				st.label.Render("Failed"), stats.Failed,
				st.label.Render("Duration"), stats.Duration.Round(time.Millisecond), stats.PerSecond(),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the grade engine")
	cmd.Flags().IntVar(&cfg.Requests, "requests", 1000, "Number of recompute requests to submit")
	cmd.Flags().IntVar(&cfg.Creators, "creators", 100, "Number of distinct creators")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().IntVar(&cfg.DuplicateEvery, "duplicate-every", 0, "Resubmit every Nth request id")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON stats")
	return cmd
}

// RunLoad checks the engine is healthy and submits cfg.Requests generated
// recompute requests concurrently.
func RunLoad(ctx context.Context, cfg LoadConfig) (LoadStats, error) {
	if cfg.Requests <= 0 || cfg.Creators <= 0 || cfg.Workers <= 0 {
		return LoadStats{}, errors.New("requests, creators and workers must be positive")
	}
	client := &http.Client{Timeout: cfg.Timeout}

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return LoadStats{}, err
	}

	reqs := GenerateRequests(cfg.Requests, cfg.Creators, cfg.DuplicateEvery)

	var stats LoadStats
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range reqs {
		g.Go(func() error {
			atomic.AddInt64(&stats.Submitted, 1)
			status, err := postRecompute(gctx, client, cfg.BaseURL, reqs[i])
			switch {
			case err != nil:
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				atomic.AddInt64(&stats.Failed, 1)
			case status == http.StatusAccepted:
				atomic.AddInt64(&stats.Accepted, 1)
			case status == http.StatusOK:
				atomic.AddInt64(&stats.Duplicate, 1)
			case status == http.StatusTooManyRequests:
				atomic.AddInt64(&stats.Rejected, 1)
			default:
				atomic.AddInt64(&stats.Failed, 1)
			}
			return nil
		})
	}
	err := g.Wait()
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("load run interrupted: %w", err)
	}
	return stats, nil
}

func checkHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}

func postRecompute(ctx context.Context, client *http.Client, baseURL string, r model.RecomputeRequest) (int, error) { //nolint:gocritic // request is marshalled once
	body, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", r.RequestID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/recompute", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", r.RequestID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// creatorProfile shapes the generated metrics of a creator.
type creatorProfile int

const (
	profileNewcomer creatorProfile = iota
	profileSteady
	profileStrong
	profileStar
	profileCount
)

// GenerateRequests builds n recompute requests spread over the given number
// of creators. With duplicateEvery > 0 every such request reuses the id of
// the request before it.
func GenerateRequests(n, creators, duplicateEvery int) []model.RecomputeRequest {
	ids := make([]string, creators)
	profiles := make([]creatorProfile, creators)
	for i := range ids {
		ids[i] = fmt.Sprintf("load-%s", uuid.NewString()[:8])
		profiles[i] = creatorProfile(rand.IntN(int(profileCount)))
	}

	out := make([]model.RecomputeRequest, n)
	for i := range out {
		c := i % creators
		out[i] = model.RecomputeRequest{
			RequestID: uuid.NewString(),
			CreatorID: ids[c],
			Metrics:   generateMetrics(profiles[c]),
		}
		if duplicateEvery > 0 && i > 0 && i%duplicateEvery == 0 {
			out[i].RequestID = out[i-1].RequestID
		}
	}
	return out
}

func generateMetrics(p creatorProfile) grading.RawMetrics {
	// level is a 0..1 quality factor, jittered per request.
	level := (float64(p) + rand.Float64()) / float64(profileCount)
	campaigns := int(level * 40)
	return grading.RawMetrics{
		AvgBrandRating:          grading.Ptr(round1(2 + level*3)),
		RecollaborationRate:     grading.Ptr(round1(level * 60)),
		GuidelineComplianceRate: grading.Ptr(round1(50 + level*50)),
		AvgQualityScore:         grading.Ptr(round1(2 + level*3)),
		AvgEngagementRate:       grading.Ptr(round1(1 + level*10)),
		AvgBrandFeedback:        grading.Ptr(round1(2 + level*3)),
		OnTimeRate:              grading.Ptr(round1(60 + level*40)),
		AvgResponseTime:         grading.Ptr(round1(30 - level*29)),
		AvgRevisions:            grading.Ptr(round1(4 - level*3)),
		FollowerGrowthRate:      grading.Ptr(round1(-5 + level*30)),
		EngagementChange:        grading.Ptr(round1(-0.3 + level*0.8)),
		MonthsActive:            grading.Ptr(round1(level * 18)),
		CommunityActivityCount:  grading.Ptr(int(level * 12)),
		CompletedCampaigns:      grading.Ptr(campaigns),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
