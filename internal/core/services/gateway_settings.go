package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

// The settings collection is the generic key/value bucket of the remote
// schema. Locally it is cached like every other collection: one array
// of rows under a single key.

func (g *PersistenceGateway) loadSetting(ctx context.Context, id string) json.RawMessage {
	if g.remote != nil {
		value, err := g.remote.Settings.GetSetting(ctx, g.userID, id)
		if err == nil {
			g.putCachedSetting(id, value)
			return value
		}
		g.logger.Warn("Remote setting read failed, serving cache", map[string]interface{}{
			"setting_id": id,
			"error":      err.Error(),
		})
	}
	settings := []*domain.Setting{}
	g.readCollection(cacheKeySettings, &settings)
	for _, s := range settings {
		if s.ID == id {
			return s.Value
		}
	}
	return nil
}

func (g *PersistenceGateway) putCachedSetting(id string, value json.RawMessage) {
	settings := []*domain.Setting{}
	g.readCollection(cacheKeySettings, &settings)
	row := &domain.Setting{ID: id, UserID: g.userID, Value: value, UpdatedAt: time.Now().UTC()}
	for i := range settings {
		if settings[i].ID == id {
			settings[i] = row
			g.writeCollection(cacheKeySettings, settings)
			return
		}
	}
	g.writeCollection(cacheKeySettings, append(settings, row))
}

func (g *PersistenceGateway) deleteCachedSetting(id string) {
	settings := []*domain.Setting{}
	g.readCollection(cacheKeySettings, &settings)
	kept := settings[:0]
	for _, s := range settings {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	g.writeCollection(cacheKeySettings, kept)
}

// LoadToken returns the persisted Strava credential, or nil when none
// exists or the stored value does not decode.
func (g *PersistenceGateway) LoadToken(ctx context.Context) *domain.StravaToken {
	value := g.loadSetting(ctx, domain.SettingStravaToken)
	if len(value) == 0 {
		return nil
	}
	var token domain.StravaToken
	if err := json.Unmarshal(value, &token); err != nil {
		g.logger.Warn("Discarding undecodable stored token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if token.AccessToken == "" {
		return nil
	}
	return &token
}

// SaveToken persists the credential to the cache first and then to the
// remote settings bucket for cross-device continuity. A remote failure
// is returned; the local copy already holds the new token.
func (g *PersistenceGateway) SaveToken(ctx context.Context, token *domain.StravaToken) error {
	value, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	g.putCachedSetting(domain.SettingStravaToken, value)

	if g.remote == nil {
		return nil
	}
	if err := g.remote.Settings.PutSetting(ctx, g.userID, domain.SettingStravaToken, value); err != nil {
		g.logger.Error("Remote token persist failed, cache is ahead", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	return nil
}

// DeleteToken removes the credential from both stores (explicit
// disconnect). The remote delete is best-effort.
func (g *PersistenceGateway) DeleteToken(ctx context.Context) {
	g.deleteCachedSetting(domain.SettingStravaToken)

	if g.remote == nil {
		return
	}
	if err := g.remote.Settings.DeleteSetting(ctx, g.userID, domain.SettingStravaToken); err != nil {
		g.logger.Warn("Remote token delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
