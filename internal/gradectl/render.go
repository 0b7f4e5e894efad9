package gradectl

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
	"github.com/cnec/gradeengine/internal/domain/model"
)

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  lipgloss.NewStyle().Width(18),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// gradeStyle colours a grade name with the grade table colour.
func gradeStyle(info grading.GradeInfo) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(info.Color))
}

func renderBundle(w io.Writer, b grading.ScoreBundle, badges badge.Set) {
	st := newStyles()

	fmt.Fprintf(w, "%s %s  %s\n",
		st.header.Render("Grade"),
		gradeStyle(b.GradeInfo).Render(b.GradeName),
		st.dim.Render(b.GradeInfo.Label),
	)
	fmt.Fprintf(w, "%s %6.2f / %d\n", st.label.Render("Total"), b.TotalScore, grading.MaxTotalScore)
	for _, c := range b.Breakdown() {
		fmt.Fprintf(w, "%s %6.2f / %.0f  %s\n", st.label.Render(c.Name), c.Score, c.Cap, st.dim.Render(bar(c.Score, c.Cap)))
	}
	if b.Recommended() {
		fmt.Fprintln(w, st.ok.Render("Recommended"))
	}

	if badges == nil {
		return
	}
	if badges.Len() == 0 {
		fmt.Fprintln(w, st.dim.Render("No badges"))
		return
	}
	fmt.Fprintln(w, st.header.Render("Badges"))
	for _, bd := range badges.Badges() {
		fmt.Fprintf(w, "  %s %s  %s\n", bd.Emoji, bd.Name, st.dim.Render(bd.Condition))
	}
}

const barWidth = 20

func bar(score, limit float64) string {
	if limit <= 0 {
		return ""
	}
	filled := int(score / limit * barWidth)
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}

func renderLevels(w io.Writer, levels []grading.LevelInfo) {
	st := newStyles()
	fmt.Fprintln(w, st.header.Render("Grade levels"))
	for _, l := range levels {
		fmt.Fprintf(w, "  %d  %s  %s  %s\n", l.Level, gradeStyle(l.GradeInfo).Render(fmt.Sprintf("%-6s", l.Name)), l.Label, st.dim.Render(l.Color))
	}
}

func renderCatalog(w io.Writer, catalog []badge.Badge) {
	st := newStyles()
	fmt.Fprintln(w, st.header.Render("Badges"))
	for _, b := range catalog {
		fmt.Fprintf(w, "  %s %-16s %-18s %s\n", b.Emoji, b.ID, b.Name, st.dim.Render(b.Condition))
	}
}

func renderOutcomes(w io.Writer, outcomes []service.GradeOutcome) {
	st := newStyles()
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-24s %-8s %7s  %s", "CREATOR", "GRADE", "TOTAL", "BADGES")))
	for _, o := range outcomes {
		if o.Error != "" && o.Grade.GradeName == "" {
			fmt.Fprintf(w, "%-24s %s\n", o.CreatorID, st.fail.Render(o.Error))
			continue
		}
		line := fmt.Sprintf("%-24s %s %7.2f  %s", o.CreatorID,
			gradeStyle(o.Grade.GradeInfo).Render(fmt.Sprintf("%-8s", o.Grade.GradeName)),
			o.Grade.TotalScore, strings.Join(o.Badges.Strings(), ","))
		if !o.Saved {
			line += "  " + st.fail.Render(o.Error)
		}
		fmt.Fprintln(w, line)
	}
}

func renderFeatured(w io.Writer, f model.FeaturedCreator) {
	st := newStyles()
	info := grading.Info(f.GradeLevel)
	fmt.Fprintf(w, "%s %s  %s\n", st.header.Render("Featured"), f.Name, st.dim.Render(f.ID))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("User"), f.SourceUserID)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Regions"), strings.Join(f.ActiveRegions, ","))
	fmt.Fprintf(w, "%s %s %6.2f\n", st.label.Render("Initial grade"), gradeStyle(info).Render(f.GradeName), f.TotalScore)
}
