package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

const (
	brandNotFoundMessage = "brand not found"

	// MaxCandidates bounds a single match run.
	MaxCandidates = 1000
)

// Repo implements the matching repository.
type Repo struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a new matching repository.
func New(pool *pgxpool.Pool, log *logger.Logger) *Repo {
	return &Repo{pool: pool, log: log}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetBrand retrieves a brand profile by ID.
func (r *Repo) GetBrand(ctx context.Context, id uuid.UUID) (Brand, error) {
	query := `
		SELECT id, name, business_type, weight_overrides, created_at, updated_at
		FROM brands
		WHERE id = $1`

	var brand Brand
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&brand.ID, &brand.Name, &brand.BusinessType, &brand.WeightOverrides, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, apperr.NotFound(brandNotFoundMessage)
		}
		r.log.DatabaseError("get brand", err)
		return Brand{}, fmt.Errorf("get brand: %w", err)
	}

	brand.CreatedAt = createdAt.Format(time.RFC3339)
	brand.UpdatedAt = updatedAt.Format(time.RFC3339)
	return brand, nil
}

// ListCandidateProperties lists active properties, optionally of one type.
func (r *Repo) ListCandidateProperties(ctx context.Context, filter PropertyFilter) ([]Property, error) {
	limit := filter.Limit
	if limit <= 0 || limit > MaxCandidates {
		limit = MaxCandidates
	}

	query := `
		SELECT id, title, city, property_type, latitude, longitude
		FROM properties
		WHERE is_active
			AND ($1::text = '' OR property_type = $1::text)
		ORDER BY id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, filter.PropertyType, limit)
	if err != nil {
		r.log.DatabaseError("list candidate properties", err)
		return nil, fmt.Errorf("list candidate properties: %w", err)
	}
	defer rows.Close()

	properties := make([]Property, 0)
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.Title, &p.City, &p.PropertyType, &p.Latitude, &p.Longitude); err != nil {
			r.log.DatabaseError("scan candidate property", err)
			return nil, fmt.Errorf("scan candidate property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		r.log.DatabaseError("iterate candidate properties", err)
		return nil, fmt.Errorf("iterate candidate properties: %w", err)
	}

	return properties, nil
}
