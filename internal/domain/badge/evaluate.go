package badge

import "encoding/json"

// Thresholds of the catalog conditions.
const (
	CategoryCampaignThreshold = 10
	ReelMasterPercentile      = 90
	ReviewExpertThreshold     = 20
	BrandFavoriteRate         = 50
	FastResponderHours        = 2
	PerfectDeliveryRate       = 100
	TrendingPercentile        = 95
)

var conditions = map[ID]func(History) bool{
	ColorExpert:  func(h History) bool { return h.ColorCampaigns >= CategoryCampaignThreshold },
	SkincareGuru: func(h History) bool { return h.SkincareCampaigns >= CategoryCampaignThreshold },
	NailArtist:   func(h History) bool { return h.NailCampaigns >= CategoryCampaignThreshold },
	HairStylist:  func(h History) bool { return h.HairCampaigns >= CategoryCampaignThreshold },
	ReelMaster:   func(h History) bool { return h.ShortFormViewPercentile >= ReelMasterPercentile },
	ReviewExpert: func(h History) bool { return h.DetailedReviews >= ReviewExpertThreshold },
	BrandFavorite: func(h History) bool {
		return h.RecollaborationRate >= BrandFavoriteRate
	},
	// A creator with no measured responses has an average of zero, which is not fast.
	FastResponder: func(h History) bool {
		return h.ResponseCount > 0 && h.AvgResponseHours <= FastResponderHours
	},
	PerfectDelivery: func(h History) bool {
		return h.Deliveries > 0 && h.OnTimeRate >= PerfectDeliveryRate
	},
	TrendingCreator: func(h History) bool { return h.FollowerGrowthPercentile >= TrendingPercentile },
}

// Evaluate returns every badge whose condition h satisfies.
func Evaluate(h History) Set {
	set := Set{}
	for id, cond := range conditions {
		if cond(h) {
			set[id] = struct{}{}
		}
	}
	return set
}

// Set is an unordered set of earned badges. It encodes as a list in catalog order.
type Set map[ID]struct{}

// NewSet builds a set from ids. Ids outside the catalog are dropped.
func NewSet(ids ...ID) Set {
	set := Set{}
	for _, id := range ids {
		if id.Known() {
			set[id] = struct{}{}
		}
	}
	return set
}

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of s. A nil set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Len returns the number of badges in the set.
func (s Set) Len() int {
	return len(s)
}

// IDs returns the badges in catalog order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, len(s))
	for _, b := range catalog {
		if s.Has(b.ID) {
			out = append(out, b.ID)
		}
	}
	return out
}

// Strings returns IDs as plain strings.
func (s Set) Strings() []string {
	ids := s.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Badges returns the catalog entries of the set in catalog order.
func (s Set) Badges() []Badge {
	out := make([]Badge, 0, len(s))
	for _, b := range catalog {
		if s.Has(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// MarshalJSON encodes the set as a list of ids in catalog order.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes a list of ids, dropping unknown ones.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// MarshalYAML encodes the set as a list of ids.
func (s Set) MarshalYAML() (interface{}, error) {
	return s.Strings(), nil
}

// ParseList builds a set from stored id strings.
func ParseList(ids []string) Set {
	typed := make([]ID, len(ids))
	for i, id := range ids {
		typed[i] = ID(id)
	}
	return NewSet(typed...)
}
