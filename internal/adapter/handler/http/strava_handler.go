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

type StravaHandler struct {
	tokens  *services.TokenManager
	sync    *services.SyncService
	strava  ports.StravaPort
	logger  ports.LoggerPort
	metrics ports.MetricsPort
}

func NewStravaHandler(
	tokens *services.TokenManager,
	sync *services.SyncService,
	strava ports.StravaPort,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *StravaHandler {
	return &StravaHandler{
		tokens:  tokens,
		sync:    sync,
		strava:  strava,
		logger:  logger,
		metrics: metrics,
	}
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type StravaStatusResponse struct {
	Connected bool  `json:"connected"`
	AthleteID int64 `json:"athlete_id,omitempty"`
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// @Summary Strava authorization URL
// @Description Consent URL to start the OAuth flow
// @Tags strava
// @Security BearerAuth
// @Produce json
// @Param state query string false "Opaque state echoed back on the redirect"
// @Success 200 {object} AuthURLResponse
// @Router /strava/auth-url [get]
func (h *StravaHandler) AuthURL(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, AuthURLResponse{URL: h.strava.AuthURL(c.Query("state"))})
}

// @Summary Exchange authorization code
// @Description Completes the OAuth flow after the consent redirect and stores the credential
// @Tags strava
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} successResponse "Strava connected"
// @Failure 400 {object} errorResponse "Exchange rejected"
// @Failure 502 {object} errorResponse "Token stored locally, remote store write failed"
// @Router /strava/callback [post]
func (h *StravaHandler) ExchangeCode(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	token, err := h.tokens.ExchangeAuthorizationCode(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteWrite) {
			newErrorResponse(c, http.StatusBadGateway, "Token stored locally, remote store write failed")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Code exchange rejected")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Strava connected", StravaStatusResponse{
		Connected: true,
		AthleteID: token.AthleteID,
		ExpiresAt: token.ExpiresAt,
	})
}

// @Summary Connection status
// @Tags strava
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StravaStatusResponse
// @Router /strava/status [get]
func (h *StravaHandler) Status(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token := h.tokens.GetValidToken(c.Request.Context())
	if token == nil {
		c.JSON(http.StatusOK, StravaStatusResponse{Connected: false})
		return
	}
	c.JSON(http.StatusOK, StravaStatusResponse{
		Connected: true,
		AthleteID: token.AthleteID,
		ExpiresAt: token.ExpiresAt,
	})
}

// @Summary Trigger gear sync
// @Description Pulls linked-gear mileage from Strava; best-effort, never fails the request
// @Tags strava
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.SyncResult
// @Router /strava/sync [post]
func (h *StravaHandler) Sync(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, h.sync.SyncLinkedGear(c.Request.Context()))
}

// @Summary Disconnect Strava
// @Description Drops the stored credential; linked gear ids stay on the bikes
// @Tags strava
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse "Strava disconnected"
// @Router /strava/token [delete]
func (h *StravaHandler) Disconnect(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.tokens.Disconnect(c.Request.Context())
	newSuccessResponse(c, http.StatusOK, "Strava disconnected", nil)
}
