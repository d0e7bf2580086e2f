package scoring

// LocationSignal is the upstream snapshot for one geographic point.
type LocationSignal struct {
	PopulationDensity500m float64 `json:"populationDensity500m"`
	PopulationWeighted    float64 `json:"populationWeighted"`
	CategorySupplyScore   float64 `json:"categorySupplyScore"`
	DailyFootfall         float64 `json:"dailyFootfall"`
	FootfallScore         float64 `json:"footfallScore"`
	AccessibilityScore    float64 `json:"accessibilityScore"`
	AffluenceScore        float64 `json:"affluenceScore"`
	DemographicScore      float64 `json:"demographicScore"`
	CompetitionScore      float64 `json:"competitionScore"`
}

// ComponentScores extracts the brand-fit inputs from the signal.
func (s LocationSignal) ComponentScores() ComponentScores {
	return ComponentScores{
		DemographicScore:   s.DemographicScore,
		FootfallScore:      s.FootfallScore,
		AffluenceScore:     s.AffluenceScore,
		CompetitionScore:   s.CompetitionScore,
		AccessibilityScore: s.AccessibilityScore,
	}
}

// RevenueAssumptions parameterise MonthlyRevenue.
type RevenueAssumptions struct {
	CaptureRatePercent float64 `json:"captureRatePercent"`
	AvgTicketSize      float64 `json:"avgTicketSize"`
}

// DefaultRevenueAssumptions returns the food-and-beverage defaults.
func DefaultRevenueAssumptions() RevenueAssumptions {
	return RevenueAssumptions{
		CaptureRatePercent: DefaultCaptureRatePercent,
		AvgTicketSize:      DefaultAvgTicketSize,
	}
}

// Result is the computed score set for one location and brand.
type Result struct {
	SaturationIndex         int               `json:"saturationIndex"`
	DemandGapScore          int               `json:"demandGapScore"`
	WhitespaceScore         int               `json:"whitespaceScore"`
	BrandFitScore           int               `json:"brandFitScore"`
	EstimatedMonthlyRevenue int64             `json:"estimatedMonthlyRevenue"`
	Competitors             CompetitorSummary `json:"competitors"`
}

// Evaluate runs every formula over one signal. Saturation is derived from the
// competitor list; whitespace uses the demand gap, the inverse of saturation
// and the signal's footfall score. A zero density means unknown and falls back
// to DefaultPopulationDensity500m.
func Evaluate(signal LocationSignal, competitors []Competitor, w Weights, rev RevenueAssumptions) Result {
	density := signal.PopulationDensity500m
	if density == 0 {
		density = DefaultPopulationDensity500m
	}
	saturation := SaturationIndex(len(competitors), density)
	demandGap := DemandGapScore(signal.PopulationWeighted, signal.CategorySupplyScore)

	return Result{
		SaturationIndex:         saturation,
		DemandGapScore:          demandGap,
		WhitespaceScore:         WhitespaceScore(float64(demandGap), float64(maxScore-saturation), signal.FootfallScore),
		BrandFitScore:           BrandFitScore(signal.ComponentScores(), w),
		EstimatedMonthlyRevenue: MonthlyRevenue(signal.DailyFootfall, rev.CaptureRatePercent, rev.AvgTicketSize),
		Competitors:             SummarizeCompetitors(competitors),
	}
}
