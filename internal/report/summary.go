// Package report renders aggregated batch results for terminals.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/montanaflynn/stats"

	"webPageProbeGO/internal/aggregator"
	"webPageProbeGO/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

var speedOrder = []models.SpeedRating{
	models.SpeedExcellent,
	models.SpeedGood,
	models.SpeedFair,
	models.SpeedSlow,
	models.SpeedVerySlow,
}

var sizeOrder = []string{
	aggregator.Bucket0To100,
	aggregator.Bucket100To500,
	aggregator.Bucket500To1000,
	aggregator.Bucket1000OrMore,
}

// Summary renders the view as a set of bordered panels
func Summary(view *models.AggregatedView) string {
	panels := []string{
		panel("Response time (ms)", statisticsLines(view.Statistics)),
		panel("Speed", distributionLines(view.SpeedDistribution, speedOrder)),
		panel("Size", distributionLines(view.SizeDistribution, sizeOrder)),
	}
	if view.HTMLStats != nil {
		panels = append(panels, panel("HTML source", htmlLines(view.HTMLStats)))
	}

	sections := []string{
		titleStyle.Render("Probe summary"),
		lipgloss.JoinHorizontal(lipgloss.Top, panels...),
		panel("Mean load time per URL (ms)", perURLLines(view)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Failure renders a one-line error message
func Failure(msg string) string {
	return errorStyle.Render(msg)
}

func panel(title string, lines []string) string {
	body := append([]string{titleStyle.Render(title)}, lines...)
	return boxStyle.Render(strings.Join(body, "\n"))
}

func row(label string, value any) string {
	return fmt.Sprintf("%s %v", labelStyle.Render(label+":"), value)
}

func statisticsLines(s models.ResponseTimeStats) []string {
	return []string{
		row("Mean", s.Mean),
		row("Min", s.Min),
		row("Max", s.Max),
		row("Samples", s.Total),
	}
}

func distributionLines[K ~string](dist map[string]int, order []K) []string {
	lines := make([]string, 0, len(order))
	for _, key := range order {
		lines = append(lines, row(string(key), dist[string(key)]))
	}
	return lines
}

func htmlLines(h *models.HTMLStats) []string {
	return []string{
		row("URLs", h.URLCount),
		row("Lines", fmt.Sprintf("%v (%d-%d)", h.MeanLines, h.MinLines, h.MaxLines)),
		row("Chars", fmt.Sprintf("%v (%d-%d)", h.MeanChars, h.MinChars, h.MaxChars)),
	}
}

func perURLLines(view *models.AggregatedView) []string {
	byURL := make(map[string][]float64)
	for i, url := range view.URLs {
		byURL[url] = append(byURL[url], view.ResponseTimes[i])
	}

	urls := make([]string, 0, len(byURL))
	for url := range byURL {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	lines := make([]string, 0, len(urls))
	for _, url := range urls {
		mean, _ := stats.Mean(byURL[url])
		mean, _ = stats.Round(mean, 2)
		lines = append(lines, row(url, fmt.Sprintf("%v over %d", mean, len(byURL[url]))))
	}
	return lines
}
