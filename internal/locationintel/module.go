// Package locationintel provides the location intelligence bounded context
// module: scoring, brand classification and cache-fronted signal lookups.
package locationintel

import (
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/locationintel/cache"
	"marketplace_backend/internal/locationintel/client"
	"marketplace_backend/internal/locationintel/handler"
	"marketplace_backend/internal/locationintel/service"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// Config combines the settings the module needs.
type Config interface {
	config.LocationCacheConfig
	config.GeodataConfig
}

// Module is the location intelligence module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cache   *cache.Cache
}

// NewModule creates and initializes the location intelligence module.
// Without a geodata source only inline signals can be analysed.
func NewModule(cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	var source service.SignalSource
	if cfg.IsGeodataEnabled() {
		source = client.New(cfg, log)
		log.Info("geodata source configured", "url", cfg.GetGeodataAPIURL())
	} else {
		log.Info("geodata source disabled: GEODATA_API_URL not configured")
	}

	c := cache.New(cfg, log)
	svc := service.New(source, c, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		cache:   c,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "location-intel"
}

// Service returns the location intelligence service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Close releases the cache backend's connections.
func (m *Module) Close() error {
	return m.cache.Close()
}

// RegisterRoutes mounts location intelligence routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/location-intel")
	group.POST("/analyze", m.handler.Analyze)
	group.GET("/classify", m.handler.Classify)
	group.GET("/weights", m.handler.GetWeights)
	group.POST("/weights", m.handler.ResolveWeights)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
