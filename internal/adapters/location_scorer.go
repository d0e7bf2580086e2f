package adapters

import (
	"context"

	"marketplace_backend/internal/locationintel/client"
	"marketplace_backend/internal/locationintel/scoring"
	"marketplace_backend/internal/locationintel/service"
	"marketplace_backend/internal/matching/ports"
)

// LocationScorerAdapter adapts the location intelligence service for the
// matching domain.
type LocationScorerAdapter struct {
	svc *service.Service
}

// NewLocationScorerAdapter creates a new adapter that wraps the location
// intelligence service.
func NewLocationScorerAdapter(svc *service.Service) *LocationScorerAdapter {
	return &LocationScorerAdapter{svc: svc}
}

// Score evaluates one location with the given weights.
func (a *LocationScorerAdapter) Score(ctx context.Context, loc ports.Location, w scoring.Weights) (scoring.Result, error) {
	return a.svc.Evaluate(ctx, client.Query{
		Lat:          loc.Lat,
		Lng:          loc.Lng,
		PropertyType: loc.PropertyType,
		BusinessType: loc.BusinessType,
	}, w)
}

// Compile-time check.
var _ ports.LocationScorer = (*LocationScorerAdapter)(nil)
