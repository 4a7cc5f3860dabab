// Package scoring holds the pure scoring rules of the ease-of-use
// measurement standard: the qualitative rating thresholds, the issue
// priority thresholds, and the 1-decimal averaging used everywhere.
package scoring

import "math"

// Rating labels for an overall score.
const (
	RatingExceptional = "Exceptional"
	RatingGood        = "Good"
	RatingAverage     = "Average"
	RatingPoor        = "Poor"
)

// Priority levels for an issue priority score.
const (
	PriorityUrgent = "Urgent"
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// RatingLevel maps an overall score in [0,10] to its qualitative label.
func RatingLevel(score float64) string {
	switch {
	case score >= 8.5:
		return RatingExceptional
	case score >= 7:
		return RatingGood
	case score >= 5:
		return RatingAverage
	default:
		return RatingPoor
	}
}

// PriorityLevel maps an issue priority score (severity * frequency * fixCost,
// range [0.5, 13.5]) to its level.
func PriorityLevel(score float64) string {
	switch {
	case score >= 10:
		return PriorityUrgent
	case score >= 6:
		return PriorityHigh
	case score >= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Average returns the arithmetic mean rounded to one decimal place, or 0 for
// an empty input.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round1(sum / float64(len(values)))
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
