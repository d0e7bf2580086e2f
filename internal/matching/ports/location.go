// Package ports defines what the matching context needs from other contexts.
package ports

import (
	"context"

	"marketplace_backend/internal/locationintel/scoring"
)

// Location identifies the point and discriminators to score.
type Location struct {
	Lat          float64
	Lng          float64
	PropertyType string
	BusinessType string
}

// LocationScorer scores a location for a brand's weights.
type LocationScorer interface {
	Score(ctx context.Context, loc Location, w scoring.Weights) (scoring.Result, error)
}
