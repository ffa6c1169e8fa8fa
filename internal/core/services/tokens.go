package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"
)

// refreshSafetyMargin is the lead time before expiry at which a refresh
// is triggered preemptively.
const refreshSafetyMargin = 5 * time.Minute

// TokenManager owns the Strava OAuth credential lifecycle. Every
// successful exchange or refresh is persisted through the gateway
// before the token is handed to the caller, so a later session or
// another device sharing the remote store can reuse it.
type TokenManager struct {
	gateway *PersistenceGateway
	strava  ports.StravaPort
	logger  ports.LoggerPort
}

func NewTokenManager(gateway *PersistenceGateway, strava ports.StravaPort, logger ports.LoggerPort) *TokenManager {
	return &TokenManager{
		gateway: gateway,
		strava:  strava,
		logger:  logger,
	}
}

// GetValidToken returns a usable credential or nil. A token expiring
// beyond the safety margin is returned unchanged; otherwise the refresh
// flow runs. A failed refresh returns nil and leaves the stale token in
// place rather than forcing a re-authentication on a transient error.
func (m *TokenManager) GetValidToken(ctx context.Context) *domain.StravaToken {
	token := m.gateway.LoadToken(ctx)
	if token == nil {
		return nil
	}
	if !token.ExpiresWithin(refreshSafetyMargin) {
		return token
	}
	return m.refresh(ctx, token)
}

// ForceRefresh refreshes regardless of expiry, for the case where the
// provider rejected an access token that looked valid locally.
func (m *TokenManager) ForceRefresh(ctx context.Context) *domain.StravaToken {
	token := m.gateway.LoadToken(ctx)
	if token == nil {
		return nil
	}
	return m.refresh(ctx, token)
}

func (m *TokenManager) refresh(ctx context.Context, stale *domain.StravaToken) *domain.StravaToken {
	refreshed, err := m.strava.RefreshToken(ctx, stale.RefreshToken)
	if err != nil {
		m.logger.Warn("Token refresh failed, keeping stale token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if refreshed.AthleteID == 0 {
		refreshed.AthleteID = stale.AthleteID
	}
	// Refresh runs unattended: a remote persist failure is logged by
	// the gateway and the new token is still returned, the cache copy
	// is durable enough for this device.
	if err := m.gateway.SaveToken(ctx, refreshed); err != nil {
		m.logger.Warn("Refreshed token not persisted remotely", map[string]interface{}{
			"error": err.Error(),
		})
	}
	m.logger.Info("Access token refreshed", map[string]interface{}{
		"expires_at": refreshed.ExpiresAt,
	})
	return refreshed
}

// ExchangeAuthorizationCode performs the one-shot code exchange after
// the consent redirect and persists the result. A remote persist
// failure is surfaced: this is a user-triggered mutation.
func (m *TokenManager) ExchangeAuthorizationCode(ctx context.Context, code string) (*domain.StravaToken, error) {
	token, err := m.strava.ExchangeCode(ctx, code)
	if err != nil {
		m.logger.Error("Authorization code exchange failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	if err := m.gateway.SaveToken(ctx, token); err != nil {
		return token, err
	}
	m.logger.Info("Strava account connected", map[string]interface{}{
		"athlete_id": token.AthleteID,
	})
	return token, nil
}

// Disconnect drops the stored credential.
func (m *TokenManager) Disconnect(ctx context.Context) {
	m.gateway.DeleteToken(ctx)
	m.logger.Info("Strava account disconnected", nil)
}
