// Package scoring holds the location intelligence formulas: saturation, demand
// gap, whitespace, brand-fit and revenue projection, plus the brand classifier
// and the brand-fit weight configuration.
//
// Every function here is pure. Inputs are not validated; callers sanitise
// upstream signals before scoring.
package scoring

import "math"

const (
	// DefaultPopulationDensity500m is the density assumed when none is known.
	DefaultPopulationDensity500m = 5000.0
	// DefaultCaptureRatePercent is the share of footfall converted to customers (F&B).
	DefaultCaptureRatePercent = 1.2
	// DefaultAvgTicketSize is the average spend per customer in rupees (F&B).
	DefaultAvgTicketSize = 240.0

	maxScore          = 100
	daysPerMonth      = 30
	whitespaceDemand  = 0.4
	whitespaceInverse = 0.4
	whitespaceFoot    = 0.2
)

// ComponentScores are the normalised inputs to the brand-fit formula.
type ComponentScores struct {
	DemographicScore   float64 `json:"demographicScore"`
	FootfallScore      float64 `json:"footfallScore"`
	AffluenceScore     float64 `json:"affluenceScore"`
	CompetitionScore   float64 `json:"competitionScore"`
	AccessibilityScore float64 `json:"accessibilityScore"`
}

// SaturationIndex scores competitor crowding relative to population density.
// Densities below 1000 per 500m are treated as 1000.
func SaturationIndex(competitorCount int, populationDensity500m float64) int {
	if competitorCount <= 0 {
		return 0
	}
	raw := float64(competitorCount) / math.Max(1, populationDensity500m/1000)
	return capScore(raw * 100)
}

// DemandGapScore is demand minus existing supply, floored at zero.
func DemandGapScore(populationWeighted, categorySupplyScore float64) int {
	gap := math.Max(0, populationWeighted-categorySupplyScore)
	return capScore(gap)
}

// WhitespaceScore blends demand, inverse saturation and footfall 40/40/20.
// There is no floor: negative inputs give negative scores.
func WhitespaceScore(demandScore, inverseSaturationScore, footfallScore float64) int {
	return capScore(demandScore*whitespaceDemand +
		inverseSaturationScore*whitespaceInverse +
		footfallScore*whitespaceFoot)
}

// BrandFitScore is the weighted sum of the component scores, capped at 100.
func BrandFitScore(scores ComponentScores, w Weights) int {
	return capScore(scores.DemographicScore*w.Demographic +
		scores.FootfallScore*w.Footfall +
		scores.AffluenceScore*w.Affluence +
		scores.CompetitionScore*w.Competition +
		scores.AccessibilityScore*w.Accessibility)
}

// MonthlyRevenue projects a 30-day revenue from daily footfall.
func MonthlyRevenue(dailyFootfall, captureRatePercent, avgTicketSize float64) int64 {
	daily := dailyFootfall * (captureRatePercent / 100) * avgTicketSize
	return roundInt64(daily * daysPerMonth)
}

// capScore applies min(100, round(x)).
func capScore(x float64) int {
	return int(roundInt64(math.Min(maxScore, x)))
}

// roundInt64 rounds half away from zero. NaN has no integer form and maps to
// 0; infinities saturate.
func roundInt64(x float64) int64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt64:
		return math.MaxInt64
	case x <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Round(x))
}
