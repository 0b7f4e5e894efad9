package grading

// Level is one of the five ordinal grade tiers.
type Level int

// Grade levels, lowest first.
const (
	LevelFresh  Level = 1
	LevelGlow   Level = 2
	LevelBloom  Level = 3
	LevelIconic Level = 4
	LevelMuse   Level = 5
)

// GradeInfo is the display metadata of a level. The UI treats it as opaque.
type GradeInfo struct {
	Name      string `json:"name" yaml:"name"`
	Label     string `json:"label" yaml:"label"`
	Color     string `json:"color" yaml:"color"`
	BgClass   string `json:"bg_class" yaml:"bg_class"`
	TextClass string `json:"text_class" yaml:"text_class"`
	LightBg   string `json:"light_bg" yaml:"light_bg"`
}

var gradeLevels = map[Level]GradeInfo{
	LevelFresh:  {Name: "FRESH", Label: "새싹", Color: "#10B981", BgClass: "bg-emerald-500", TextClass: "text-emerald-500", LightBg: "bg-emerald-50"},
	LevelGlow:   {Name: "GLOW", Label: "빛나기 시작", Color: "#3B82F6", BgClass: "bg-blue-500", TextClass: "text-blue-500", LightBg: "bg-blue-50"},
	LevelBloom:  {Name: "BLOOM", Label: "피어나는 중", Color: "#8B5CF6", BgClass: "bg-violet-500", TextClass: "text-violet-500", LightBg: "bg-violet-50"},
	LevelIconic: {Name: "ICONIC", Label: "아이코닉", Color: "#EC4899", BgClass: "bg-pink-500", TextClass: "text-pink-500", LightBg: "bg-pink-50"},
	LevelMuse:   {Name: "MUSE", Label: "뮤즈", Color: "#F59E0B", BgClass: "bg-amber-500", TextClass: "text-amber-500", LightBg: "bg-amber-50"},
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelFresh && l <= LevelMuse
}

// String returns the level name, e.g. "BLOOM".
func (l Level) String() string {
	return Info(l).Name
}

// Info returns the display metadata of l. Unknown levels resolve to FRESH,
// which is also the meaning of an absent grade record.
func Info(l Level) GradeInfo {
	if info, ok := gradeLevels[l]; ok {
		return info
	}
	return gradeLevels[LevelFresh]
}

// LevelInfo pairs a level with its metadata.
type LevelInfo struct {
	Level     Level `json:"level" yaml:"level"`
	GradeInfo `yaml:",inline"`
}

// Levels returns the grade table in ascending level order.
func Levels() []LevelInfo {
	out := make([]LevelInfo, 0, len(gradeLevels))
	for l := LevelFresh; l <= LevelMuse; l++ {
		out = append(out, LevelInfo{Level: l, GradeInfo: gradeLevels[l]})
	}
	return out
}

// GradeInput holds everything the level decision looks at.
type GradeInput struct {
	TotalScore          float64
	CompletedCampaigns  int
	RecollaborationRate float64
	ManualMuse          bool
}

type gradeRule struct {
	level   Level
	matches func(GradeInput) bool
}

// gradeRules is evaluated top to bottom and the first match wins. The order
// matters: a manual MUSE ignores the score entirely, and a creator meeting
// both the ICONIC and BLOOM conditions must land on ICONIC.
var gradeRules = []gradeRule{
	{level: LevelMuse, matches: func(in GradeInput) bool {
		return in.ManualMuse
	}},
	{level: LevelIconic, matches: func(in GradeInput) bool {
		return in.TotalScore >= 80 && in.CompletedCampaigns >= 30 && in.RecollaborationRate >= 30
	}},
	{level: LevelBloom, matches: func(in GradeInput) bool {
		return in.TotalScore >= 60 && in.CompletedCampaigns >= 10
	}},
	{level: LevelGlow, matches: func(in GradeInput) bool {
		return in.TotalScore >= 40 && in.CompletedCampaigns >= 3
	}},
}

// DecideLevel returns the grade level for in.
func DecideLevel(in GradeInput) Level {
	for _, r := range gradeRules {
		if r.matches(in) {
			return r.level
		}
	}
	return LevelFresh
}
