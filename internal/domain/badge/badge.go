// Package badge evaluates the badge catalog against creator history aggregates.
//
// Badges are independent of the score and grade: a FRESH creator can hold
// any of them.
package badge

// ID identifies a badge in the catalog.
type ID string

// Catalog badge ids.
const (
	ColorExpert     ID = "color_expert"
	SkincareGuru    ID = "skincare_guru"
	NailArtist      ID = "nail_artist"
	HairStylist     ID = "hair_stylist"
	ReelMaster      ID = "reel_master"
	ReviewExpert    ID = "review_expert"
	BrandFavorite   ID = "brand_favorite"
	FastResponder   ID = "fast_responder"
	PerfectDelivery ID = "perfect_delivery"
	TrendingCreator ID = "trending_creator"
)

// Badge is the display entry of a catalog badge.
type Badge struct {
	ID        ID     `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Emoji     string `json:"emoji" yaml:"emoji"`
	Category  string `json:"category" yaml:"category"`
	Condition string `json:"condition" yaml:"condition"`
}

var catalog = []Badge{
	{ID: ColorExpert, Name: "Color Expert", Emoji: "💄", Category: "색조", Condition: "색조 캠페인 10건 이상"},
	{ID: SkincareGuru, Name: "Skincare Guru", Emoji: "🧴", Category: "스킨케어", Condition: "스킨케어 캠페인 10건 이상"},
	{ID: NailArtist, Name: "Nail Artist", Emoji: "💅", Category: "네일", Condition: "네일 캠페인 10건 이상"},
	{ID: HairStylist, Name: "Hair Stylist", Emoji: "💇", Category: "헤어", Condition: "헤어 캠페인 10건 이상"},
	{ID: ReelMaster, Name: "Reel Master", Emoji: "🎬", Category: "숏폼", Condition: "숏폼 조회수 상위 10%"},
	{ID: ReviewExpert, Name: "Review Expert", Emoji: "📝", Category: "리뷰", Condition: "상세 리뷰 20건 이상"},
	{ID: BrandFavorite, Name: "Brand Favorite", Emoji: "⭐", Category: "브랜드", Condition: "재협업률 50% 이상"},
	{ID: FastResponder, Name: "Fast Responder", Emoji: "⚡", Category: "응답", Condition: "평균 응답 2시간 이내"},
	{ID: PerfectDelivery, Name: "Perfect Delivery", Emoji: "🎯", Category: "납품", Condition: "마감 준수율 100%"},
	{ID: TrendingCreator, Name: "Trending Creator", Emoji: "🔥", Category: "성장", Condition: "팔로워 증가율 상위 5%"},
}

// Catalog returns a copy of the badge catalog in its canonical order.
func Catalog() []Badge {
	out := make([]Badge, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Badge, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Known reports whether id is part of the catalog.
func (id ID) Known() bool {
	_, ok := Lookup(id)
	return ok
}
