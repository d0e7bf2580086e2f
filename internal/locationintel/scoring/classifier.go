package scoring

import "strings"

// BrandTier labels a competitor as an established chain or an emerging brand.
type BrandTier string

const (
	TierPopular BrandTier = "popular"
	TierNew     BrandTier = "new"
)

// PopularReviewThreshold is the review count at which any brand counts as popular.
const PopularReviewThreshold = 500

// popularChainFragments are matched as substrings of the lowercased name, so
// short fragments can hit unrelated names. Keep the list closed.
var popularChainFragments = []string{
	"starbucks",
	"mcdonald",
	"kfc",
	"domino",
	"pizza hut",
	"subway",
	"burger king",
	"dunkin",
	"costa coffee",
	"cafe coffee day",
	"ccd",
	"barista",
	"chaayos",
	"third wave",
	"blue tokai",
	"tim hortons",
	"haldiram",
	"bikanervala",
	"wow! momo",
	"faasos",
	"behrouz",
	"biryani by kilo",
	"paradise",
	"barbeque nation",
	"sagar ratna",
	"saravana bhavan",
	"baskin robbins",
	"naturals",
	"theobroma",
	"mad over donuts",
	"krispy kreme",
	"taco bell",
	"wendy",
	"chili's",
	"hard rock cafe",
}

// ClassifyBrand returns TierPopular when the name contains a known chain
// fragment or the review count reaches PopularReviewThreshold. Empty names
// are always TierNew.
func ClassifyBrand(name string, userRatingsTotal *int) BrandTier {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return TierNew
	}

	for _, fragment := range popularChainFragments {
		if strings.Contains(normalized, fragment) {
			return TierPopular
		}
	}

	if userRatingsTotal != nil && *userRatingsTotal >= PopularReviewThreshold {
		return TierPopular
	}

	return TierNew
}

// Competitor is a nearby business used for saturation and tier counts.
type Competitor struct {
	Name             string `json:"name"`
	UserRatingsTotal *int   `json:"userRatingsTotal,omitempty"`
}

// CompetitorSummary counts competitors by tier.
type CompetitorSummary struct {
	Total   int `json:"total"`
	Popular int `json:"popular"`
	New     int `json:"new"`
}

// SummarizeCompetitors classifies every competitor.
func SummarizeCompetitors(competitors []Competitor) CompetitorSummary {
	summary := CompetitorSummary{Total: len(competitors)}
	for _, c := range competitors {
		if ClassifyBrand(c.Name, c.UserRatingsTotal) == TierPopular {
			summary.Popular++
		} else {
			summary.New++
		}
	}
	return summary
}
