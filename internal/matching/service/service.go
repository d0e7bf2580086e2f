// Package service ranks candidate properties for a brand by Brand-Fit score.
package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketplace_backend/internal/locationintel/scoring"
	"marketplace_backend/internal/matching/ports"
	"marketplace_backend/internal/matching/repository"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// MatchRequest narrows and shapes one match run. A nil MinScore uses the
// configured default; a zero Limit uses DefaultLimit.
type MatchRequest struct {
	MinScore     *int
	Limit        int
	PropertyType string
}

// Match is one qualifying property with its scores.
type Match struct {
	Property repository.Property
	Result   scoring.Result
}

// MatchResult is the ranked outcome of a match run.
type MatchResult struct {
	Brand     repository.Brand
	Weights   scoring.Weights
	MinScore  int
	Evaluated int
	Skipped   int
	Matches   []Match
}

// Service orchestrates brand matching.
type Service struct {
	repo        repository.Repository
	scorer      ports.LocationScorer
	log         *logger.Logger
	minScore    int
	concurrency int
}

// New creates a new matching service.
func New(repo repository.Repository, scorer ports.LocationScorer, cfg config.MatchingConfig, log *logger.Logger) *Service {
	concurrency := cfg.GetMatchConcurrency()
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		repo:        repo,
		scorer:      scorer,
		log:         log,
		minScore:    cfg.GetMatchMinScore(),
		concurrency: concurrency,
	}
}

type evaluation struct {
	result scoring.Result
	ok     bool
}

// Match scores every candidate property for the brand and returns those at or
// above the minimum score, best first. Properties whose signals cannot be
// acquired are skipped and counted.
func (s *Service) Match(ctx context.Context, brandID uuid.UUID, req MatchRequest) (MatchResult, error) {
	brand, err := s.repo.GetBrand(ctx, brandID)
	if err != nil {
		return MatchResult{}, err
	}

	overrides, err := scoring.ParseWeightOverrides(brand.WeightOverrides)
	if err != nil {
		s.log.Error("brand weight overrides are invalid", "brandId", brand.ID, "error", err)
		return MatchResult{}, apperr.Internal("brand weight overrides are invalid").WithOp("matching.Match")
	}
	weights := scoring.ResolveWeights(overrides)

	properties, err := s.repo.ListCandidateProperties(ctx, repository.PropertyFilter{PropertyType: req.PropertyType})
	if err != nil {
		return MatchResult{}, err
	}

	evaluations := make([]evaluation, len(properties))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, property := range properties {
		g.Go(func() error {
			result, err := s.scorer.Score(gctx, ports.Location{
				Lat:          property.Latitude,
				Lng:          property.Longitude,
				PropertyType: property.PropertyType,
				BusinessType: brand.BusinessType,
			}, weights)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.Warn("property skipped", "brandId", brand.ID, "propertyId", property.ID, "error", err)
				return nil
			}
			evaluations[i] = evaluation{result: result, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MatchResult{}, err
	}

	minScore := s.minScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	out := MatchResult{
		Brand:     brand,
		Weights:   weights,
		MinScore:  minScore,
		Evaluated: len(properties),
		Matches:   make([]Match, 0),
	}
	for i, ev := range evaluations {
		if !ev.ok {
			out.Skipped++
			continue
		}
		if ev.result.BrandFitScore >= minScore {
			out.Matches = append(out.Matches, Match{Property: properties[i], Result: ev.result})
		}
	}

	sort.SliceStable(out.Matches, func(a, b int) bool {
		sa, sb := out.Matches[a].Result.BrandFitScore, out.Matches[b].Result.BrandFitScore
		if sa != sb {
			return sa > sb
		}
		return out.Matches[a].Property.ID.String() < out.Matches[b].Property.ID.String()
	})

	if limit := clampLimit(req.Limit); len(out.Matches) > limit {
		out.Matches = out.Matches[:limit]
	}

	s.log.Info("brand matched",
		"brandId", brand.ID,
		"evaluated", out.Evaluated,
		"skipped", out.Skipped,
		"matches", len(out.Matches),
		"minScore", minScore,
	)
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
