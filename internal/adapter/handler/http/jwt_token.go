package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTTokenService struct {
	secretKey []byte
	logger    ports.LoggerPort
}

func NewJWTTokenService(secretKey string, logger ports.LoggerPort) *JWTTokenService {
	return &JWTTokenService{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (j *JWTTokenService) VerifyToken(token string) (*domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		j.logger.Error("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return nil, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to read claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user_id claim")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user_id format")
	}

	return &domain.TokenPayload{UserID: userID}, nil
}

// AuthMiddleware guards routes with a bearer JWT when a secret is
// configured. Without a secret the deployment is open and every request
// runs as the fixed synthetic owner.
func AuthMiddleware(tokenService ports.TokenService, secretConfigured bool, ownerID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !secretConfigured {
			c.Set(authPayloadKey, &domain.TokenPayload{UserID: ownerID})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		payload, err := tokenService.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(authPayloadKey, payload)
		c.Next()
	}
}
