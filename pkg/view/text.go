package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#2563EB")
	colorDanger  = lipgloss.Color("#DC2626")
	colorSuccess = lipgloss.Color("#16A34A")
	colorMuted   = lipgloss.Color("#64748B")

	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	noticeStyle = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)

	totalBadge    = lipgloss.NewStyle().Foreground(colorPrimary)
	breakingBadge = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	featureBadge  = lipgloss.NewStyle().Foreground(colorSuccess)
	versionPill   = lipgloss.NewStyle().Foreground(colorMuted)

	breakingTitle = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	featureTitle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// RenderText writes p for a terminal. Hidden list entries are skipped and
// collapsed detail blocks show only their title and badges.
func RenderText(w io.Writer, p Page) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(p.Header))
	b.WriteString("\n")

	if p.Notice != "" {
		b.WriteString(noticeStyle.Render(p.Notice))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, e := range p.Entries {
		if e.Hidden {
			continue
		}
		line := fmt.Sprintf("  %s %s", e.Name, totalBadge.Render(fmt.Sprintf("[%d]", e.Total)))
		if e.HasBreaking() {
			line += " " + breakingBadge.Render(fmt.Sprintf("[%d breaking]", e.Breaking))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, d := range p.Details {
		b.WriteString(cardStyle.Render(detailText(d)))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func detailText(d Detail) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("  ")
	b.WriteString(breakingBadge.Render(fmt.Sprintf("%d Breaking", d.BreakingCount)))
	b.WriteString(" ")
	b.WriteString(featureBadge.Render(fmt.Sprintf("%d Features", d.FeatureCount)))
	if d.Collapsed {
		return b.String()
	}
	if len(d.Breaking) > 0 {
		b.WriteString("\n" + breakingTitle.Render("Breaking Changes"))
		writeChanges(&b, d.Breaking)
	}
	if len(d.Features) > 0 {
		b.WriteString("\n" + featureTitle.Render("New Features"))
		writeChanges(&b, d.Features)
	}
	if d.Notice != "" {
		b.WriteString("\n" + noticeStyle.Render(d.Notice))
	}
	return b.String()
}

func writeChanges(b *strings.Builder, changes []Change) {
	for _, c := range changes {
		b.WriteString("\n  ")
		b.WriteString(versionPill.Render(c.Tag))
		b.WriteString(" ")
		b.WriteString(c.Description)
	}
}
