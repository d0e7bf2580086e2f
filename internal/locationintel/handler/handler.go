package handler

import (
	"github.com/gin-gonic/gin"

	"marketplace_backend/internal/locationintel/client"
	"marketplace_backend/internal/locationintel/scoring"
	"marketplace_backend/internal/locationintel/service"
	"marketplace_backend/internal/locationintel/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidWeights   = "invalid weight overrides"
)

// Handler handles HTTP requests for location intelligence.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new location intelligence handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Analyze scores one location.
// POST /api/v1/location-intel/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req transport.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	analysis, err := h.svc.Analyze(c.Request.Context(), toAnalyzeParams(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AnalyzeResponse{
		Key:     analysis.Key,
		Cached:  analysis.Cached,
		Weights: analysis.Weights,
		Signal:  analysis.Signal,
		Result:  analysis.Result,
	})
}

// Classify returns the tier of a brand name.
// GET /api/v1/location-intel/classify?name=...&reviews=...
func (h *Handler) Classify(c *gin.Context) {
	var req transport.ClassifyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	httpkit.OK(c, transport.ClassifyResponse{
		Name:      req.Name,
		Tier:      h.svc.Classify(req.Name, req.Reviews),
		Threshold: scoring.PopularReviewThreshold,
	})
}

// GetWeights returns the default Brand-Fit weights.
// GET /api/v1/location-intel/weights
func (h *Handler) GetWeights(c *gin.Context) {
	weights := scoring.DefaultWeights()
	httpkit.OK(c, transport.WeightsResponse{Weights: weights, Sum: weights.Sum()})
}

// ResolveWeights merges the posted overrides into the defaults.
// POST /api/v1/location-intel/weights
func (h *Handler) ResolveWeights(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	overrides, err := scoring.ParseWeightOverrides(raw)
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidWeights))
		return
	}

	weights := scoring.ResolveWeights(overrides)
	httpkit.OK(c, transport.WeightsResponse{Weights: weights, Sum: weights.Sum()})
}

func toAnalyzeParams(req transport.AnalyzeRequest) service.AnalyzeParams {
	params := service.AnalyzeParams{
		Query: client.Query{
			Lat:          *req.Lat,
			Lng:          *req.Lng,
			PropertyType: req.PropertyType,
			BusinessType: req.BusinessType,
		},
		Weights:            req.Weights,
		CaptureRatePercent: req.CaptureRatePercent,
		AvgTicketSize:      req.AvgTicketSize,
	}

	if req.Signals != nil {
		competitors := make([]scoring.Competitor, 0, len(req.Signals.Competitors))
		for _, comp := range req.Signals.Competitors {
			competitors = append(competitors, scoring.Competitor{
				Name:             comp.Name,
				UserRatingsTotal: comp.UserRatingsTotal,
			})
		}
		params.Inline = &client.Snapshot{Signal: req.Signals.Signal, Competitors: competitors}
	}

	return params
}
