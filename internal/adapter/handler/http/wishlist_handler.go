package http

import (
	"net/http"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"
	"github.com/bikelogic/garage-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistHandler struct {
	gateway *services.PersistenceGateway
	logger  ports.LoggerPort
	metrics ports.MetricsPort
}

func NewWishlistHandler(gateway *services.PersistenceGateway, logger ports.LoggerPort, metrics ports.MetricsPort) *WishlistHandler {
	return &WishlistHandler{
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}
}

type CreateWishlistItemRequest struct {
	Name          string   `json:"name" binding:"required" example:"Carbon wheelset"`
	Category      string   `json:"category,omitempty" example:"wheels"`
	PriceEstimate *float64 `json:"price_estimate,omitempty" example:"1200"`
	ProductURL    string   `json:"product_url,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type UpdateWishlistItemRequest struct {
	Name          *string  `json:"name,omitempty"`
	Category      *string  `json:"category,omitempty"`
	IsPurchased   *bool    `json:"is_purchased,omitempty"`
	PriceEstimate *float64 `json:"price_estimate,omitempty"`
	ProductURL    *string  `json:"product_url,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// @Summary Create wishlist item
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateWishlistItemRequest true "Item data"
// @Success 201 {object} successResponse "Item created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Router /wishlist [post]
func (h *WishlistHandler) CreateItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	item := &domain.WishlistItem{
		Name:          req.Name,
		Category:      req.Category,
		PriceEstimate: req.PriceEstimate,
		ProductURL:    req.ProductURL,
		Notes:         req.Notes,
	}
	if err := h.gateway.SaveWishlistItem(c.Request.Context(), item); err != nil {
		newSaveErrorResponse(c, err)
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Item created", item)
}

// @Summary List wishlist
// @Tags wishlist
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.WishlistItem
// @Router /wishlist [get]
func (h *WishlistHandler) ListItems(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, h.gateway.ListWishlist(c.Request.Context()))
}

// @Summary Update wishlist item
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body UpdateWishlistItemRequest true "Fields to update"
// @Success 200 {object} successResponse "Item updated"
// @Failure 404 {object} errorResponse "Item not found"
// @Router /wishlist/{id} [put]
func (h *WishlistHandler) UpdateItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid item ID")
		return
	}
	item, err := h.gateway.GetWishlistItem(c.Request.Context(), itemID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Item not found")
		return
	}

	var req UpdateWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.IsPurchased != nil {
		item.IsPurchased = *req.IsPurchased
	}
	if req.PriceEstimate != nil {
		item.PriceEstimate = req.PriceEstimate
	}
	if req.ProductURL != nil {
		item.ProductURL = *req.ProductURL
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := h.gateway.SaveWishlistItem(c.Request.Context(), item); err != nil {
		newSaveErrorResponse(c, err)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Item updated", item)
}

// @Summary Delete wishlist item
// @Tags wishlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} successResponse "Item deleted"
// @Router /wishlist/{id} [delete]
func (h *WishlistHandler) DeleteItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid item ID")
		return
	}
	h.gateway.DeleteWishlistItem(c.Request.Context(), itemID)
	newSuccessResponse(c, http.StatusOK, "Item deleted", nil)
}
