// Package matching provides the brand matching bounded context module.
package matching

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/matching/handler"
	"marketplace_backend/internal/matching/ports"
	"marketplace_backend/internal/matching/repository"
	"marketplace_backend/internal/matching/service"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Module is the matching bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the matching module.
func NewModule(pool *pgxpool.Pool, scorer ports.LocationScorer, cfg config.MatchingConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool, log)
	svc := service.New(repo, scorer, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "matching"
}

// Service returns the matching service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts matching routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/brands/:id/matches", m.handler.ListMatches)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
