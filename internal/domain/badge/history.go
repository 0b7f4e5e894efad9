package badge

import "context"

// History holds the aggregates badge conditions are evaluated over.
// Percentile fields are ranks from 0 to 100 where 100 is the best creator.
type History struct {
	ColorCampaigns    int `json:"color_campaigns" yaml:"color_campaigns"`
	SkincareCampaigns int `json:"skincare_campaigns" yaml:"skincare_campaigns"`
	NailCampaigns     int `json:"nail_campaigns" yaml:"nail_campaigns"`
	HairCampaigns     int `json:"hair_campaigns" yaml:"hair_campaigns"`

	ShortFormViewPercentile float64 `json:"short_form_view_percentile" yaml:"short_form_view_percentile"`
	DetailedReviews         int     `json:"detailed_reviews" yaml:"detailed_reviews"`
	RecollaborationRate     float64 `json:"recollaboration_rate" yaml:"recollaboration_rate"`

	// ResponseCount is the number of measured responses behind AvgResponseHours.
	AvgResponseHours float64 `json:"avg_response_hours" yaml:"avg_response_hours"`
	ResponseCount    int     `json:"response_count" yaml:"response_count"`

	// Deliveries is the number of deliveries behind OnTimeRate.
	OnTimeRate float64 `json:"on_time_rate" yaml:"on_time_rate"`
	Deliveries int     `json:"deliveries" yaml:"deliveries"`

	FollowerGrowthPercentile float64 `json:"follower_growth_percentile" yaml:"follower_growth_percentile"`
}

// AggregateProvider supplies badge aggregates for a creator. A creator with
// no aggregates yields a zero History and no error.
type AggregateProvider interface {
	Aggregates(ctx context.Context, creatorID string) (History, error)
}
