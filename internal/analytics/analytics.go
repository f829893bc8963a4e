// Package analytics derives the dashboard's secondary figures from a
// DashboardMetrics snapshot. Everything here is a pure function.
package analytics

import (
	"strings"

	"shiftly/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChartLimit is how many scored conversations the score chart shows
const ChartLimit = 10

// ChartPoint is one bar of the score chart
type ChartPoint struct {
	ConversationID string           `json:"conversation_id"`
	Label          string           `json:"label"`
	Score          float64          `json:"score"`
	Band           models.ScoreBand `json:"band"`
}

// Summary groups the derived dashboard figures
type Summary struct {
	CompletionRate      float64                  `json:"completion_rate"`
	CompletionRateLabel string                   `json:"completion_rate_label"`
	ScoreChart          []ChartPoint             `json:"score_chart"`
	BandCounts          map[models.ScoreBand]int `json:"band_counts"`
	StatusCounts        map[string]int           `json:"status_counts"`
}

// Summarize computes every derived figure for a dashboard snapshot
func Summarize(m models.DashboardMetrics) Summary {
	rate := CompletionRate(m)
	return Summary{
		CompletionRate:      rate,
		CompletionRateLabel: models.FormatPercent(rate),
		ScoreChart:          ScoreChart(m.Conversations, ChartLimit),
		BandCounts:          BandCounts(m.Conversations),
		StatusCounts:        StatusCounts(m.Conversations),
	}
}

// CompletionRate is the share of all conversations listed as completed.
// The denominator is the backend's total, not the length of the list.
func CompletionRate(m models.DashboardMetrics) float64 {
	if m.TotalConversations <= 0 {
		return 0
	}
	completed := 0
	for _, c := range m.Conversations {
		if strings.EqualFold(c.Status, models.StatusCompleted) {
			completed++
		}
	}
	return float64(completed) / float64(m.TotalConversations)
}

// ScoreChart takes the first limit scored conversations and returns them
// oldest first
func ScoreChart(conversations []models.ConversationSummary, limit int) []ChartPoint {
	points := make([]ChartPoint, 0, limit)
	for _, c := range conversations {
		if len(points) == limit {
			break
		}
		if c.QualificationScore == nil {
			continue
		}
		score := models.ClampScore(*c.QualificationScore)
		points = append(points, ChartPoint{
			ConversationID: c.ID,
			Label:          c.DisplayName(),
			Score:          score,
			Band:           models.BandFor(score),
		})
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

// BandCounts counts scored conversations per band
func BandCounts(conversations []models.ConversationSummary) map[models.ScoreBand]int {
	counts := map[models.ScoreBand]int{models.BandLow: 0, models.BandMid: 0, models.BandHigh: 0}
	for _, c := range conversations {
		if c.QualificationScore != nil {
			counts[models.BandFor(*c.QualificationScore)]++
		}
	}
	return counts
}

// StatusCounts counts conversations per lower-cased status
func StatusCounts(conversations []models.ConversationSummary) map[string]int {
	counts := make(map[string]int)
	for _, c := range conversations {
		counts[strings.ToLower(c.Status)]++
	}
	return counts
}

// StatusLabel renders a status for display, e.g. "active" -> "Active"
func StatusLabel(status string) string {
	return cases.Title(language.English).String(strings.ToLower(status))
}
