package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/model"
)

var (
	primary = lipgloss.Color("#7C3AED") // violet
	success = lipgloss.Color("#22C55E") // green
	warning = lipgloss.Color("#F59E0B") // amber
	muted   = lipgloss.Color("#6B7280") // gray
	text    = lipgloss.Color("#E5E7EB") // light gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(text)

	goodStyle = lipgloss.NewStyle().
			Foreground(success)

	warnStyle = lipgloss.NewStyle().
			Foreground(warning).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2)
)

type summary struct {
	Command   string
	Target    string
	Stats     model.Stats
	Threshold float64
	Duration  time.Duration
	DBPath    string
	LogPath   string
}

func row(label string, value string) string {
	return labelStyle.Render(label) + value
}

func renderSummary(s summary) string {
	st := s.Stats

	regions := valueStyle.Render(fmt.Sprintf("%d", st.RegionsTotal))
	if st.RegionsFailed > 0 || st.RegionsPartial > 0 {
		regions += " " + warnStyle.Render(fmt.Sprintf("(%d partial, %d failed)", st.RegionsPartial, st.RegionsFailed))
	}

	lines := []string{
		titleStyle.Render("gymtap complete"),
		row("Search", valueStyle.Render(s.Command+" "+s.Target)),
		row("Regions", regions),
		row("Raw listings", valueStyle.Render(fmt.Sprintf("%d", st.TotalRaw))),
		row("Listings", goodStyle.Render(fmt.Sprintf("%d", st.TotalListings))),
		row("Merged", valueStyle.Render(fmt.Sprintf("%d (%.1f%%, avg confidence %.2f)", st.MergeCount, st.MergeRate, st.AverageConfidence))),
		row("Threshold", valueStyle.Render(fmt.Sprintf("%.2f", s.Threshold))),
		row("Cross-region", valueStyle.Render(fmt.Sprintf("%d duplicates (%.1f%%)", st.CrossRegionDuplicates, st.DuplicationRate))),
		row("Per region", valueStyle.Render(fmt.Sprintf("avg %.1f, min %d, max %d", st.ListingsPerRegion.Avg, st.ListingsPerRegion.Min, st.ListingsPerRegion.Max))),
		row("Sources", valueStyle.Render(formatDistribution(st.SourceDistribution))),
		row("Duration", valueStyle.Render(s.Duration.String())),
		row("Database", valueStyle.Render(s.DBPath)),
		row("Log", valueStyle.Render(s.LogPath)),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func formatDistribution(d map[model.SourceID]int) string {
	if len(d) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, d[model.SourceID(k)])
	}
	return strings.Join(parts, " ")
}

func renderMetroList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Metro areas") + "\n")
	for _, code := range geo.MetroCodes() {
		m, err := geo.GetMetroArea(code)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(m.Code), valueStyle.Render(
			fmt.Sprintf("%s, %s  %d zips  %s density", m.Name, m.State, len(m.ZipCodes), strings.ReplaceAll(string(m.DensityCategory), "_", " "))))
		if m.Description != "" {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(""), lipgloss.NewStyle().Foreground(muted).Render(m.Description))
		}
	}
	return b.String()
}
