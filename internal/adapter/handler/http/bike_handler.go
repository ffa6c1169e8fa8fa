package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"
	"github.com/bikelogic/garage-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BikeHandler struct {
	gateway     *services.PersistenceGateway
	maintenance *services.MaintenanceService
	extraction  *services.ExtractionService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewBikeHandler(
	gateway *services.PersistenceGateway,
	maintenance *services.MaintenanceService,
	extraction *services.ExtractionService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		gateway:     gateway,
		maintenance: maintenance,
		extraction:  extraction,
		logger:      logger,
		metrics:     metrics,
	}
}

type CreateBikeRequest struct {
	// Query enables AI extraction; the remaining fields are the manual
	// fallback and always win when extraction has nothing better.
	Query      string  `json:"query,omitempty" example:"Trek Emonda SL6 2022"`
	Name       string  `json:"name,omitempty" example:"Emonda"`
	Type       string  `json:"type" binding:"required" example:"road"`
	TotalKm    float64 `json:"total_km" example:"1500"`
	ProductURL string  `json:"product_url,omitempty"`
}

type UpdateBikeRequest struct {
	Name         *string           `json:"name,omitempty"`
	Type         *string           `json:"type,omitempty"`
	StravaGearID *string           `json:"strava_gear_id,omitempty"`
	TotalKm      *float64          `json:"total_km,omitempty"`
	ProductURL   *string           `json:"product_url,omitempty"`
	Specs        *domain.BikeSpecs `json:"specs,omitempty"`
}

type BikeListResponse struct {
	Bikes []*domain.Bike `json:"bikes"`
	Count int            `json:"count"`
}

type WearReportResponse struct {
	Bike       *domain.Bike           `json:"bike"`
	Components []domain.ComponentWear `json:"components"`
}

// @Summary Create bike
// @Description Creates a bike, optionally auto-filled by the AI extraction service
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBikeRequest true "Bike data"
// @Success 201 {object} successResponse "Bike created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 429 {object} errorResponse "Extraction quota exhausted, retry later"
// @Failure 502 {object} errorResponse "Remote store write failed"
// @Router /bikes [post]
func (h *BikeHandler) CreateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike := &domain.Bike{
		Name:       req.Name,
		Type:       domain.BikeType(req.Type),
		TotalKm:    req.TotalKm,
		ProductURL: req.ProductURL,
	}

	if req.Query != "" {
		draft, err := h.extraction.BuildBikeDraft(c.Request.Context(), req.Query, bike)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQuotaExceeded):
				newErrorResponse(c, http.StatusTooManyRequests, "Extraction quota exhausted, retry later")
			case errors.Is(err, domain.ErrAPIKeyMissing):
				newErrorResponse(c, http.StatusServiceUnavailable, "Extraction service not configured")
			default:
				newErrorResponse(c, http.StatusBadGateway, "Extraction failed")
			}
			return
		}
		bike = draft
	}

	if err := h.gateway.SaveBike(c.Request.Context(), bike); err != nil {
		newSaveErrorResponse(c, err)
		return
	}

	h.maintenance.SeedDefaults(c.Request.Context(), bike)

	newSuccessResponse(c, http.StatusCreated, "Bike created", bike)
}

// @Summary List bikes
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} BikeListResponse
// @Router /bikes [get]
func (h *BikeHandler) ListBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikes := h.gateway.ListBikes(c.Request.Context())
	c.JSON(http.StatusOK, BikeListResponse{Bikes: bikes, Count: len(bikes)})
}

// @Summary Get bike
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} domain.Bike
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	bike, err := h.gateway.GetBike(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}
	c.JSON(http.StatusOK, bike)
}

// @Summary Wear report
// @Description Bike with derived wear numbers per tracked component, sorted by wear
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} WearReportResponse
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id}/wear [get]
func (h *BikeHandler) GetBikeWear(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	bike, report, err := h.maintenance.WearReport(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}
	c.JSON(http.StatusOK, WearReportResponse{Bike: bike, Components: report})
}

// @Summary Update bike
// @Description Partial update merged into the stored bike and upserted whole
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body UpdateBikeRequest true "Fields to update"
// @Success 200 {object} successResponse "Bike updated"
// @Failure 404 {object} errorResponse "Bike not found"
// @Failure 502 {object} errorResponse "Remote store write failed"
// @Router /bikes/{id} [put]
func (h *BikeHandler) UpdateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	bike, err := h.gateway.GetBike(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	var req UpdateBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if req.Name != nil {
		bike.Name = *req.Name
	}
	if req.Type != nil {
		bike.Type = domain.BikeType(*req.Type)
	}
	if req.StravaGearID != nil {
		if *req.StravaGearID == "" {
			bike.StravaGearID = nil
		} else {
			bike.StravaGearID = req.StravaGearID
		}
	}
	if req.TotalKm != nil {
		bike.TotalKm = *req.TotalKm
	}
	if req.ProductURL != nil {
		bike.ProductURL = *req.ProductURL
	}
	if req.Specs != nil {
		bike.Specs = req.Specs
	}

	if err := h.gateway.SaveBike(c.Request.Context(), bike); err != nil {
		newSaveErrorResponse(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Bike updated", bike)
}

// @Summary Delete bike
// @Description Deletes a bike and cascades its maintenance records and history
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} successResponse "Bike deleted"
// @Router /bikes/{id} [delete]
func (h *BikeHandler) DeleteBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	h.gateway.DeleteBike(c.Request.Context(), bikeID)
	newSuccessResponse(c, http.StatusOK, "Bike deleted", nil)
}
