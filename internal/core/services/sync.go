package services

import (
	"context"
	"errors"
	"math"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"

	"github.com/google/uuid"
)

// Gear distances arrive in meters and bike totals are km; comparing at
// 0.1 km granularity avoids oscillating writes from float noise.
const syncKmTolerance = 0.1

// SyncResult is the aggregate outcome of one sync pass. Per-bike
// failures are not reported individually; a failed gear fetch only
// drops that bike from the pass.
type SyncResult struct {
	Changed      bool        `json:"changed"`
	UpdatedBikes []uuid.UUID `json:"updated_bikes"`
}

// SyncService pulls linked-gear mileage from Strava and writes changed
// totals back through the gateway. Sync is best-effort: without a valid
// token it does nothing and surfaces no error.
type SyncService struct {
	gateway *PersistenceGateway
	tokens  *TokenManager
	strava  ports.StravaPort
	logger  ports.LoggerPort
}

func NewSyncService(gateway *PersistenceGateway, tokens *TokenManager, strava ports.StravaPort, logger ports.LoggerPort) *SyncService {
	return &SyncService{
		gateway: gateway,
		tokens:  tokens,
		strava:  strava,
		logger:  logger,
	}
}

// SyncLinkedGear runs one sync pass over every bike with a linked gear
// id.
func (s *SyncService) SyncLinkedGear(ctx context.Context) *SyncResult {
	result := &SyncResult{UpdatedBikes: []uuid.UUID{}}

	token := s.tokens.GetValidToken(ctx)
	if token == nil {
		s.logger.Info("Gear sync skipped, no valid token", nil)
		return result
	}

	athlete, err := s.getAthleteRetryingAuth(ctx, token)
	if err != nil {
		s.logger.Warn("Gear sync skipped, athlete fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return result
	}

	gearKm := make(map[string]float64, len(athlete.Bikes))
	for _, gear := range athlete.Bikes {
		gearKm[gear.ID] = gear.DistanceKm()
	}

	for _, bike := range s.gateway.ListBikes(ctx) {
		if bike.StravaGearID == nil || *bike.StravaGearID == "" {
			continue
		}
		km, ok := gearKm[*bike.StravaGearID]
		if !ok {
			// Gear missing from the athlete profile (e.g. retired
			// gear): fall back to the single-gear endpoint, isolated
			// per bike.
			gear, err := s.strava.GetGear(ctx, token.AccessToken, *bike.StravaGearID)
			if err != nil {
				s.logger.Warn("Gear fetch failed, skipping bike", map[string]interface{}{
					"bike_id": bike.ID.String(),
					"gear_id": *bike.StravaGearID,
					"error":   err.Error(),
				})
				continue
			}
			km = gear.DistanceKm()
		}

		if math.Abs(km-bike.TotalKm) < syncKmTolerance {
			continue
		}

		bike.TotalKm = km
		if err := s.gateway.SaveBike(ctx, bike); err != nil {
			// Background write: the cache already reflects the new
			// total, the remote store catches up on the next save or
			// list.
			s.logger.Warn("Synced mileage not persisted remotely", map[string]interface{}{
				"bike_id": bike.ID.String(),
				"error":   err.Error(),
			})
		}
		result.Changed = true
		result.UpdatedBikes = append(result.UpdatedBikes, bike.ID)
	}

	s.logger.Info("Gear sync finished", map[string]interface{}{
		"changed":       result.Changed,
		"updated_bikes": len(result.UpdatedBikes),
	})
	return result
}

// getAthleteRetryingAuth fetches the athlete, forcing one token refresh
// when the provider rejects the access token.
func (s *SyncService) getAthleteRetryingAuth(ctx context.Context, token *domain.StravaToken) (*domain.Athlete, error) {
	athlete, err := s.strava.GetAthlete(ctx, token.AccessToken)
	if err == nil || !errors.Is(err, domain.ErrUnauthorized) {
		return athlete, err
	}
	refreshed := s.tokens.ForceRefresh(ctx)
	if refreshed == nil {
		return nil, err
	}
	*token = *refreshed
	return s.strava.GetAthlete(ctx, refreshed.AccessToken)
}
