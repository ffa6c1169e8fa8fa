package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"
	"github.com/bikelogic/garage-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	extraction *services.ExtractionService
	logger     ports.LoggerPort
	metrics    ports.MetricsPort
}

func NewAIHandler(extraction *services.ExtractionService, logger ports.LoggerPort, metrics ports.MetricsPort) *AIHandler {
	return &AIHandler{
		extraction: extraction,
		logger:     logger,
		metrics:    metrics,
	}
}

type ExtractBikeRequest struct {
	Query string `json:"query" binding:"required" example:"Canyon Grizl CF SL 8 2023"`
}

type DealSearchRequest struct {
	ProductName string `json:"product_name" binding:"required" example:"Shimano GRX RX820 groupset"`
}

type PartImageRequest struct {
	Image string `json:"image" binding:"required"`
}

type PartImageResponse struct {
	Analysis string `json:"analysis"`
}

func (h *AIHandler) writeExtractionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		newErrorResponse(c, http.StatusTooManyRequests, "Quota exhausted, retry later")
	case errors.Is(err, domain.ErrAPIKeyMissing):
		newErrorResponse(c, http.StatusServiceUnavailable, "Extraction service not configured")
	case errors.Is(err, domain.ErrModelNotFound):
		newErrorResponse(c, http.StatusBadGateway, "Extraction model unavailable")
	default:
		newErrorResponse(c, http.StatusBadGateway, "Extraction failed")
	}
}

// @Summary Extract bike data
// @Description Web-grounded spec lookup for a free-text bike description
// @Tags ai
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ExtractBikeRequest true "Search query"
// @Success 200 {object} domain.ExtractedBike
// @Failure 429 {object} errorResponse "Quota exhausted"
// @Failure 502 {object} errorResponse "Extraction failed"
// @Router /ai/extract [post]
func (h *AIHandler) ExtractBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ExtractBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	// The raw extraction endpoint surfaces every failure; the silent
	// manual fallback only applies inside the add-bike flow.
	extracted, err := h.extraction.Extract(c.Request.Context(), req.Query)
	if err != nil {
		h.writeExtractionError(c, err)
		return
	}
	c.JSON(http.StatusOK, extracted)
}

// @Summary Search product deals
// @Tags ai
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DealSearchRequest true "Product name"
// @Success 200 {object} domain.DealReport
// @Failure 429 {object} errorResponse "Quota exhausted"
// @Router /ai/deals [post]
func (h *AIHandler) SearchDeals(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req DealSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	report, err := h.extraction.ProductDeals(c.Request.Context(), req.ProductName)
	if err != nil {
		h.writeExtractionError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Analyze part photo
// @Description Vision wear assessment of a component photo (base64, data-URI accepted)
// @Tags ai
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PartImageRequest true "Base64 image"
// @Success 200 {object} PartImageResponse
// @Failure 429 {object} errorResponse "Quota exhausted"
// @Router /ai/vision [post]
func (h *AIHandler) AnalyzePart(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PartImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	analysis, err := h.extraction.AnalyzePartImage(c.Request.Context(), req.Image)
	if err != nil {
		h.writeExtractionError(c, err)
		return
	}
	c.JSON(http.StatusOK, PartImageResponse{Analysis: analysis})
}
