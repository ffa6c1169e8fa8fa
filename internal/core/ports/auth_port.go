package ports

import "github.com/bikelogic/garage-service/internal/core/domain"

type TokenService interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}
