package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/matching/service"
	"marketplace_backend/internal/matching/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid brand id"
)

// Handler handles HTTP requests for brand matching.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new matching handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListMatches ranks candidate properties for a brand.
// GET /api/v1/brands/:id/matches
func (h *Handler) ListMatches(c *gin.Context) {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidID))
		return
	}

	var req transport.MatchesQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	result, err := h.svc.Match(c.Request.Context(), brandID, service.MatchRequest{
		MinScore:     req.MinScore,
		Limit:        req.Limit,
		PropertyType: req.PropertyType,
	})
	if httpkit.HandleError(c, err) {
		_ = c.Error(err)
		return
	}

	httpkit.OK(c, toMatchListResponse(result))
}

func toMatchListResponse(result service.MatchResult) transport.MatchListResponse {
	items := make([]transport.MatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		items = append(items, transport.MatchResponse{
			PropertyID:    m.Property.ID,
			Title:         m.Property.Title,
			City:          m.Property.City,
			PropertyType:  m.Property.PropertyType,
			Latitude:      m.Property.Latitude,
			Longitude:     m.Property.Longitude,
			BrandFitScore: m.Result.BrandFitScore,
			Scores:        m.Result,
		})
	}

	return transport.MatchListResponse{
		BrandID:   result.Brand.ID,
		BrandName: result.Brand.Name,
		Weights:   result.Weights,
		MinScore:  result.MinScore,
		Evaluated: result.Evaluated,
		Skipped:   result.Skipped,
		Items:     items,
	}
}
