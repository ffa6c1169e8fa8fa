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

type MaintenanceHandler struct {
	gateway     *services.PersistenceGateway
	maintenance *services.MaintenanceService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewMaintenanceHandler(
	gateway *services.PersistenceGateway,
	maintenance *services.MaintenanceService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		gateway:     gateway,
		maintenance: maintenance,
		logger:      logger,
		metrics:     metrics,
	}
}

type CreateMaintenanceRequest struct {
	ComponentName string  `json:"component_name" binding:"required" example:"chain"`
	KmAtInstall   float64 `json:"km_at_install" example:"1500"`
	LifespanLimit float64 `json:"lifespan_limit" binding:"required,gt=0" example:"3000"`
	Notes         string  `json:"notes,omitempty"`
}

type UpdateMaintenanceRequest struct {
	ComponentName *string  `json:"component_name,omitempty"`
	KmAtInstall   *float64 `json:"km_at_install,omitempty"`
	LastCheckKm   *float64 `json:"last_check_km,omitempty"`
	LifespanLimit *float64 `json:"lifespan_limit,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type ReplaceComponentRequest struct {
	AtKm  float64 `json:"at_km" binding:"min=0" example:"4500"`
	Notes string  `json:"notes,omitempty" example:"KMC X11 installed"`
}

type ReplaceComponentResponse struct {
	Record  *domain.MaintenanceRecord  `json:"record"`
	History *domain.MaintenanceHistory `json:"history"`
}

// @Summary Create maintenance record
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body CreateMaintenanceRequest true "Component data"
// @Success 201 {object} successResponse "Record created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 404 {object} errorResponse "Bike not found"
// @Failure 502 {object} errorResponse "Remote store write failed"
// @Router /bikes/{id}/maintenance [post]
func (h *MaintenanceHandler) CreateRecord(c *gin.Context) {
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
	if _, err := h.gateway.GetBike(c.Request.Context(), bikeID); err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	var req CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	record := &domain.MaintenanceRecord{
		BikeID:        bikeID,
		ComponentName: req.ComponentName,
		KmAtInstall:   req.KmAtInstall,
		LastCheckKm:   req.KmAtInstall,
		LifespanLimit: req.LifespanLimit,
		Notes:         req.Notes,
	}
	if err := h.gateway.SaveMaintenance(c.Request.Context(), record); err != nil {
		newSaveErrorResponse(c, err)
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Record created", record)
}

// @Summary List maintenance records for a bike
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.MaintenanceRecord
// @Router /bikes/{id}/maintenance [get]
func (h *MaintenanceHandler) ListRecords(c *gin.Context) {
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
	c.JSON(http.StatusOK, h.gateway.ListMaintenance(c.Request.Context(), bikeID))
}

// @Summary Update maintenance record
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param request body UpdateMaintenanceRequest true "Fields to update"
// @Success 200 {object} successResponse "Record updated"
// @Failure 404 {object} errorResponse "Record not found"
// @Router /maintenance/{id} [put]
func (h *MaintenanceHandler) UpdateRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid record ID")
		return
	}
	record, err := h.gateway.GetMaintenanceRecord(c.Request.Context(), recordID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Record not found")
		return
	}

	var req UpdateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.ComponentName != nil {
		record.ComponentName = *req.ComponentName
	}
	if req.KmAtInstall != nil {
		record.KmAtInstall = *req.KmAtInstall
	}
	if req.LastCheckKm != nil {
		record.LastCheckKm = *req.LastCheckKm
	}
	if req.LifespanLimit != nil {
		record.LifespanLimit = *req.LifespanLimit
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := h.gateway.SaveMaintenance(c.Request.Context(), record); err != nil {
		newSaveErrorResponse(c, err)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Record updated", record)
}

// @Summary Delete maintenance record
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} successResponse "Record deleted"
// @Router /maintenance/{id} [delete]
func (h *MaintenanceHandler) DeleteRecord(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid record ID")
		return
	}
	h.gateway.DeleteMaintenance(c.Request.Context(), recordID)
	newSuccessResponse(c, http.StatusOK, "Record deleted", nil)
}

// @Summary Mark component replaced
// @Description Logs a history entry for the removed part and restarts the wear counter
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param request body ReplaceComponentRequest true "Replacement data"
// @Success 200 {object} successResponse "Component replaced"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 404 {object} errorResponse "Record not found"
// @Router /maintenance/{id}/replace [post]
func (h *MaintenanceHandler) ReplaceComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid record ID")
		return
	}

	var req ReplaceComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	record, entry, err := h.maintenance.MarkReplaced(c.Request.Context(), recordID, req.AtKm, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			newErrorResponse(c, http.StatusNotFound, "Record not found")
		case errors.Is(err, domain.ErrRemoteWrite):
			// Local state already holds both writes; the remote store lagged.
			newErrorResponse(c, http.StatusBadGateway, "Replaced locally, remote store write failed")
		default:
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	newSuccessResponse(c, http.StatusOK, "Component replaced", ReplaceComponentResponse{Record: record, History: entry})
}

// @Summary List replacement history for a bike
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.MaintenanceHistory
// @Router /bikes/{id}/history [get]
func (h *MaintenanceHandler) ListHistory(c *gin.Context) {
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
	c.JSON(http.StatusOK, h.gateway.ListHistory(c.Request.Context(), bikeID))
}

// @Summary Delete history entry
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "History entry ID"
// @Success 200 {object} successResponse "History entry deleted"
// @Router /history/{id} [delete]
func (h *MaintenanceHandler) DeleteHistory(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid history entry ID")
		return
	}
	h.gateway.DeleteHistory(c.Request.Context(), entryID)
	newSuccessResponse(c, http.StatusOK, "History entry deleted", nil)
}
