package ports

import (
	"context"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

// StravaPort is the slice of the Strava REST API the core consumes:
// the token endpoint plus the athlete and gear reads.
type StravaPort interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*domain.StravaToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.StravaToken, error)
	GetAthlete(ctx context.Context, accessToken string) (*domain.Athlete, error)
	GetGear(ctx context.Context, accessToken, gearID string) (*domain.Gear, error)
}
