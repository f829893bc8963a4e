package models

import (
	"fmt"
	"math"
)

// ScoreBand buckets a 0-1 qualification score
type ScoreBand string

const (
	BandLow  ScoreBand = "low"
	BandMid  ScoreBand = "mid"
	BandHigh ScoreBand = "high"
)

// Band boundaries. A score equal to a boundary belongs to the higher band.
const (
	MidThreshold  = 0.4
	HighThreshold = 0.7
)

// BandFor returns the band a score falls into
func BandFor(score float64) ScoreBand {
	switch {
	case score >= HighThreshold:
		return BandHigh
	case score >= MidThreshold:
		return BandMid
	default:
		return BandLow
	}
}

// ClampScore forces a score into [0, 1]
func ClampScore(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}

// FormatPercent renders a 0-1 score as "NN%"
func FormatPercent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}
