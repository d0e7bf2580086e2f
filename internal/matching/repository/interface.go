package repository

import (
	"context"

	"github.com/google/uuid"
)

// Brand is a brand profile looking for locations.
type Brand struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	BusinessType    string    `db:"business_type"`
	WeightOverrides []byte    `db:"weight_overrides"`
	CreatedAt       string    `db:"created_at"`
	UpdatedAt       string    `db:"updated_at"`
}

// Property is a listed location that can be matched against brands.
type Property struct {
	ID           uuid.UUID `db:"id"`
	Title        string    `db:"title"`
	City         string    `db:"city"`
	PropertyType string    `db:"property_type"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
}

// PropertyFilter narrows the candidate set for a match run.
type PropertyFilter struct {
	PropertyType string
	Limit        int
}

// Repository defines the matching data access.
type Repository interface {
	GetBrand(ctx context.Context, id uuid.UUID) (Brand, error)
	ListCandidateProperties(ctx context.Context, filter PropertyFilter) ([]Property, error)
}
