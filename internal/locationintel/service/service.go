// Package service provides location analysis on top of the scoring engine,
// fronting signal acquisition with the location cache.
package service

import (
	"context"
	"errors"

	"marketplace_backend/internal/locationintel/cache"
	"marketplace_backend/internal/locationintel/client"
	"marketplace_backend/internal/locationintel/scoring"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// SignalSource acquires signals for one location.
type SignalSource interface {
	FetchSignals(ctx context.Context, q client.Query) (client.Snapshot, error)
}

// AnalyzeParams describes one analysis request. Inline, when set, replaces
// signal acquisition and bypasses the cache.
type AnalyzeParams struct {
	Query              client.Query
	Inline             *client.Snapshot
	Weights            *scoring.WeightOverrides
	CaptureRatePercent *float64
	AvgTicketSize      *float64
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	Key     string
	Cached  bool
	Weights scoring.Weights
	Signal  scoring.LocationSignal
	Result  scoring.Result
}

// Service handles location analysis.
type Service struct {
	source SignalSource
	cache  *cache.Cache
	log    *logger.Logger
}

// New creates a location analysis service. source may be nil, in which case
// only inline signals can be analysed.
func New(source SignalSource, c *cache.Cache, log *logger.Logger) *Service {
	return &Service{source: source, cache: c, log: log}
}

// Analyze scores one location.
func (s *Service) Analyze(ctx context.Context, params AnalyzeParams) (Analysis, error) {
	key := cache.LocationKey(params.Query.Lat, params.Query.Lng, params.Query.PropertyType, params.Query.BusinessType)

	var (
		snapshot client.Snapshot
		cached   bool
	)
	if params.Inline != nil {
		snapshot = *params.Inline
	} else {
		var err error
		snapshot, cached, err = s.Signals(ctx, params.Query)
		if err != nil {
			return Analysis{}, err
		}
	}

	weights := scoring.ResolveWeights(params.Weights)
	result := scoring.Evaluate(snapshot.Signal, snapshot.Competitors, weights, revenueAssumptions(params))

	return Analysis{
		Key:     key,
		Cached:  cached,
		Weights: weights,
		Signal:  snapshot.Signal,
		Result:  result,
	}, nil
}

// Evaluate scores one location with precomputed weights and default revenue
// assumptions.
func (s *Service) Evaluate(ctx context.Context, q client.Query, w scoring.Weights) (scoring.Result, error) {
	snapshot, _, err := s.Signals(ctx, q)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.Evaluate(snapshot.Signal, snapshot.Competitors, w, scoring.DefaultRevenueAssumptions()), nil
}

// Signals returns the signal snapshot for q from the cache, or from the
// source on a miss. The boolean reports a cache hit.
func (s *Service) Signals(ctx context.Context, q client.Query) (client.Snapshot, bool, error) {
	key := cache.LocationKey(q.Lat, q.Lng, q.PropertyType, q.BusinessType)
	if snapshot, ok := cache.Get[client.Snapshot](ctx, s.cache, key); ok {
		return snapshot, true, nil
	}

	if s.source == nil {
		return client.Snapshot{}, false, apperr.Validation("signals are required when no geodata source is configured")
	}

	snapshot, err := s.source.FetchSignals(ctx, q)
	if err != nil {
		if errors.Is(err, client.ErrNoCoverage) {
			return client.Snapshot{}, false, apperr.NotFound("no geodata coverage for location").WithOp("locationintel.Signals")
		}
		return client.Snapshot{}, false, apperr.Unavailable("geodata lookup failed", err).WithOp("locationintel.Signals")
	}

	s.log.Debug("location signals fetched", "key", key, "competitors", len(snapshot.Competitors))
	cache.Set(ctx, s.cache, key, snapshot)
	return snapshot, false, nil
}

// Classify returns the tier of a brand name.
func (s *Service) Classify(name string, userRatingsTotal *int) scoring.BrandTier {
	return scoring.ClassifyBrand(name, userRatingsTotal)
}

// CacheBackend reports which cache backend is in use.
func (s *Service) CacheBackend() string {
	return s.cache.Backend()
}

func revenueAssumptions(params AnalyzeParams) scoring.RevenueAssumptions {
	rev := scoring.DefaultRevenueAssumptions()
	if params.CaptureRatePercent != nil {
		rev.CaptureRatePercent = *params.CaptureRatePercent
	}
	if params.AvgTicketSize != nil {
		rev.AvgTicketSize = *params.AvgTicketSize
	}
	return rev
}
