package model

import (
	"strings"
	"time"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
)

// Featured types.
const (
	FeaturedTypeManual = "manual" // registered by the operations team
	FeaturedTypeAuto   = "auto"   // created by the first grading pass
)

// FeaturedCreator is the summary record of a creator shown in search and recommendations.
type FeaturedCreator struct {
	ID           string `json:"id"`
	SourceUserID string `json:"source_user_id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profile_image_url,omitempty"`
	Bio          string `json:"bio,omitempty"`

	InstagramHandle    string `json:"instagram_handle,omitempty"`
	InstagramFollowers int    `json:"instagram_followers"`
	YoutubeHandle      string `json:"youtube_handle,omitempty"`
	YoutubeSubscribers int    `json:"youtube_subscribers"`
	TiktokHandle       string `json:"tiktok_handle,omitempty"`
	TiktokFollowers    int    `json:"tiktok_followers"`

	SourceCountry  string   `json:"source_country,omitempty"`
	PrimaryCountry string   `json:"primary_country,omitempty"`
	ActiveRegions  []string `json:"active_regions"`
	FeaturedType   string   `json:"featured_type"`
	Active         bool     `json:"is_active"`

	GradeLevel  grading.Level `json:"grade_level"`
	GradeName   string        `json:"grade_name"`
	TotalScore  float64       `json:"total_score"`
	Recommended bool          `json:"is_recommended"`
	Badges      badge.Set     `json:"badges"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyGrade copies the summary fields of b onto f.
func (f *FeaturedCreator) ApplyGrade(b grading.ScoreBundle, badges badge.Set) {
	f.GradeLevel = b.GradeLevel
	f.GradeName = b.GradeName
	f.TotalScore = b.TotalScore
	f.Recommended = b.Recommended()
	if badges != nil {
		f.Badges = badges
	}
}

// FeaturedInfo is the read model returned by featured lookups.
type FeaturedInfo struct {
	IsFeatured    bool              `json:"is_featured"`
	IsRecommended bool              `json:"is_recommended"`
	GradeLevel    grading.Level     `json:"grade_level"`
	GradeName     string            `json:"grade_name"`
	TotalScore    float64           `json:"total_score"`
	GradeInfo     grading.GradeInfo `json:"grade_info"`
}

// Info builds the lookup view of f. An unset grade reads as FRESH.
func (f FeaturedCreator) Info() FeaturedInfo {
	level := f.GradeLevel
	if !level.Valid() {
		level = grading.LevelFresh
	}
	name := f.GradeName
	if name == "" {
		name = level.String()
	}
	return FeaturedInfo{
		IsFeatured:    true,
		IsRecommended: f.Recommended,
		GradeLevel:    level,
		GradeName:     name,
		TotalScore:    f.TotalScore,
		GradeInfo:     grading.Info(level),
	}
}

// CreatorProfile is the source-platform profile used to register a featured creator.
type CreatorProfile struct {
	ID                 string   `json:"id,omitempty" yaml:"id,omitempty"`
	UserID             string   `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Name               string   `json:"name,omitempty" yaml:"name,omitempty"`
	ChannelName        string   `json:"channel_name,omitempty" yaml:"channel_name,omitempty"`
	Email              string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone              string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	ProfileImage       string   `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
	ProfileImageURL    string   `json:"profile_image_url,omitempty" yaml:"profile_image_url,omitempty"`
	AvatarURL          string   `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	Bio                string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	InstagramHandle    string   `json:"instagram_handle,omitempty" yaml:"instagram_handle,omitempty"`
	InstagramURL       string   `json:"instagram_url,omitempty" yaml:"instagram_url,omitempty"`
	InstagramFollowers int      `json:"instagram_followers,omitempty" yaml:"instagram_followers,omitempty"`
	YoutubeHandle      string   `json:"youtube_handle,omitempty" yaml:"youtube_handle,omitempty"`
	YoutubeURL         string   `json:"youtube_url,omitempty" yaml:"youtube_url,omitempty"`
	YoutubeSubscribers int      `json:"youtube_subscribers,omitempty" yaml:"youtube_subscribers,omitempty"`
	TiktokHandle       string   `json:"tiktok_handle,omitempty" yaml:"tiktok_handle,omitempty"`
	TiktokURL          string   `json:"tiktok_url,omitempty" yaml:"tiktok_url,omitempty"`
	TiktokFollowers    int      `json:"tiktok_followers,omitempty" yaml:"tiktok_followers,omitempty"`
	CapiScore          *float64 `json:"capi_score,omitempty" yaml:"capi_score,omitempty"`
	CapiContentScore   *float64 `json:"capi_content_score,omitempty" yaml:"capi_content_score,omitempty"`
	CapiActivityScore  *float64 `json:"capi_activity_score,omitempty" yaml:"capi_activity_score,omitempty"`
}

// SourceUserID is the platform user id of the profile.
func (p CreatorProfile) SourceUserID() string {
	return firstNonEmpty(p.ID, p.UserID)
}

// Bootstrap returns the cold-start signals of the profile.
func (p CreatorProfile) Bootstrap() grading.Bootstrap {
	return grading.Bootstrap{
		CapiScore:         p.CapiScore,
		CapiContentScore:  p.CapiContentScore,
		CapiActivityScore: p.CapiActivityScore,
	}
}

// Featured builds a new active, manually featured record for region with the
// given initial grade applied.
func (p CreatorProfile) Featured(region string, initial grading.ScoreBundle) FeaturedCreator {
	country := countryCode(region)
	f := FeaturedCreator{
		SourceUserID:       p.SourceUserID(),
		Name:               firstNonEmpty(p.Name, p.ChannelName),
		Email:              p.Email,
		Phone:              p.Phone,
		ProfileImage:       firstNonEmpty(p.ProfileImage, p.ProfileImageURL, p.AvatarURL),
		Bio:                p.Bio,
		InstagramHandle:    handle(p.InstagramHandle, p.InstagramURL),
		InstagramFollowers: p.InstagramFollowers,
		YoutubeHandle:      handle(p.YoutubeHandle, p.YoutubeURL),
		YoutubeSubscribers: p.YoutubeSubscribers,
		TiktokHandle:       handle(p.TiktokHandle, p.TiktokURL),
		TiktokFollowers:    p.TiktokFollowers,
		SourceCountry:      country,
		PrimaryCountry:     country,
		FeaturedType:       FeaturedTypeManual,
		Active:             true,
		Badges:             badge.Set{},
	}
	if region != "" {
		f.ActiveRegions = []string{region}
	}
	f.ApplyGrade(initial, nil)
	return f
}

// countryCode turns a region such as "korea" into "KO".
func countryCode(region string) string {
	upper := strings.ToUpper(region)
	if len(upper) > 2 {
		return upper[:2]
	}
	return upper
}

// handle prefers an explicit handle and falls back to the last path segment of url.
func handle(explicit, url string) string {
	if explicit != "" {
		return explicit
	}
	url = strings.TrimRight(url, "/")
	if url == "" {
		return ""
	}
	return url[strings.LastIndex(url, "/")+1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
