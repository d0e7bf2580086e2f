package transport

import "marketplace_backend/internal/locationintel/scoring"

// Analysis

type AnalyzeRequest struct {
	Lat                *float64                 `json:"lat" validate:"required,latitude"`
	Lng                *float64                 `json:"lng" validate:"required,longitude"`
	PropertyType       string                   `json:"propertyType,omitempty" validate:"omitempty,max=64"`
	BusinessType       string                   `json:"businessType,omitempty" validate:"omitempty,max=64"`
	Signals            *InlineSignals           `json:"signals,omitempty"`
	Weights            *scoring.WeightOverrides `json:"weights,omitempty"`
	CaptureRatePercent *float64                 `json:"captureRatePercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	AvgTicketSize      *float64                 `json:"avgTicketSize,omitempty" validate:"omitempty,gte=0"`
}

// InlineSignals carries caller-supplied signals instead of a geodata lookup.
type InlineSignals struct {
	Signal      scoring.LocationSignal `json:"signal"`
	Competitors []CompetitorRequest    `json:"competitors" validate:"max=500,dive"`
}

type CompetitorRequest struct {
	Name             string `json:"name" validate:"max=200"`
	UserRatingsTotal *int   `json:"userRatingsTotal,omitempty" validate:"omitempty,min=0"`
}

type AnalyzeResponse struct {
	Key     string                 `json:"key"`
	Cached  bool                   `json:"cached"`
	Weights scoring.Weights        `json:"weights"`
	Signal  scoring.LocationSignal `json:"signal"`
	Result  scoring.Result         `json:"result"`
}

// Classification

type ClassifyRequest struct {
	Name    string `form:"name" json:"name" validate:"required,max=200"`
	Reviews *int   `form:"reviews" json:"reviews" validate:"omitempty,min=0"`
}

type ClassifyResponse struct {
	Name      string            `json:"name"`
	Tier      scoring.BrandTier `json:"tier"`
	Threshold int               `json:"popularReviewThreshold"`
}

// Weights

type WeightsResponse struct {
	Weights scoring.Weights `json:"weights"`
	Sum     float64         `json:"sum"`
}
