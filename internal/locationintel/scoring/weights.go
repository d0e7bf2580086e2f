package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Weights are the Brand-Fit coefficients. The defaults sum to 1.0; overridden
// sets are applied as given and never renormalised.
type Weights struct {
	Demographic   float64 `json:"demographic"`
	Footfall      float64 `json:"footfall"`
	Affluence     float64 `json:"affluence"`
	Competition   float64 `json:"competition"`
	Accessibility float64 `json:"accessibility"`
}

// WeightOverrides is a partial Weights. A nil field keeps the default.
type WeightOverrides struct {
	Demographic   *float64 `json:"demographic,omitempty"`
	Footfall      *float64 `json:"footfall,omitempty"`
	Affluence     *float64 `json:"affluence,omitempty"`
	Competition   *float64 `json:"competition,omitempty"`
	Accessibility *float64 `json:"accessibility,omitempty"`
}

// DefaultWeights returns the canonical Brand-Fit weights.
func DefaultWeights() Weights {
	return Weights{
		Demographic:   0.25,
		Footfall:      0.25,
		Affluence:     0.20,
		Competition:   0.20,
		Accessibility: 0.10,
	}
}

// ResolveWeights merges overrides onto the defaults key by key.
// Override values are not validated.
func ResolveWeights(overrides *WeightOverrides) Weights {
	w := DefaultWeights()
	if overrides == nil {
		return w
	}
	if overrides.Demographic != nil {
		w.Demographic = *overrides.Demographic
	}
	if overrides.Footfall != nil {
		w.Footfall = *overrides.Footfall
	}
	if overrides.Affluence != nil {
		w.Affluence = *overrides.Affluence
	}
	if overrides.Competition != nil {
		w.Competition = *overrides.Competition
	}
	if overrides.Accessibility != nil {
		w.Accessibility = *overrides.Accessibility
	}
	return w
}

// Sum returns the total of all coefficients.
func (w Weights) Sum() float64 {
	return w.Demographic + w.Footfall + w.Affluence + w.Competition + w.Accessibility
}

// ParseWeightOverrides decodes a brand's persisted override JSON.
// Empty input and JSON null yield nil overrides.
func ParseWeightOverrides(raw []byte) (*WeightOverrides, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var overrides WeightOverrides
	if err := json.Unmarshal(trimmed, &overrides); err != nil {
		return nil, fmt.Errorf("parse weight overrides: %w", err)
	}
	return &overrides, nil
}
