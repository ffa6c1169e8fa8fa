package http

import (
	"errors"
	"net/http"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

func newSuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, successResponse{Message: message, Data: data})
}

// newSaveErrorResponse maps a gateway save failure. Only a failure
// marked domain.ErrRemoteWrite means the data reached the local cache;
// anything else (validation) rejected the input outright and gets 400.
func newSaveErrorResponse(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrRemoteWrite) {
		newErrorResponse(c, http.StatusBadGateway, "Saved locally, remote store write failed")
		return
	}
	newErrorResponse(c, http.StatusBadRequest, err.Error())
}

const authPayloadKey = "authorization_payload"

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	return payload, ok
}
