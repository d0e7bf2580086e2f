package transport

import (
	"github.com/google/uuid"

	"marketplace_backend/internal/locationintel/scoring"
)

type MatchesQuery struct {
	MinScore     *int   `form:"minScore" json:"minScore" validate:"omitempty,min=0,max=100"`
	Limit        int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	PropertyType string `form:"propertyType" json:"propertyType" validate:"omitempty,max=64"`
}

type MatchResponse struct {
	PropertyID    uuid.UUID      `json:"propertyId"`
	Title         string         `json:"title"`
	City          string         `json:"city"`
	PropertyType  string         `json:"propertyType"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	BrandFitScore int            `json:"brandFitScore"`
	Scores        scoring.Result `json:"scores"`
}

type MatchListResponse struct {
	BrandID   uuid.UUID       `json:"brandId"`
	BrandName string          `json:"brandName"`
	Weights   scoring.Weights `json:"weights"`
	MinScore  int             `json:"minScore"`
	Evaluated int             `json:"evaluated"`
	Skipped   int             `json:"skipped"`
	Items     []MatchResponse `json:"items"`
}
