package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Cache keys, one JSON-serialized array per collection. Callers filter
// after load (maintenance by bike id, settings by row id).
const (
	cacheKeyBikes       = "bikelogic:bikes"
	cacheKeyMaintenance = "bikelogic:maintenance"
	cacheKeyHistory     = "bikelogic:maintenance_history"
	cacheKeyWishlist    = "bikelogic:wishlist"
	cacheKeySettings    = "bikelogic:settings"
)

// RemoteStores bundles the remote-store handles. A nil *RemoteStores
// means the remote side is unconfigured and the gateway runs as a pure
// local-cache store.
type RemoteStores struct {
	Bikes       ports.BikeStore
	Maintenance ports.MaintenanceStore
	Wishlist    ports.WishlistStore
	Settings    ports.SettingStore
}

// PersistenceGateway mediates every read and write between callers and
// the {local cache, remote store} pair.
//
// The contract per collection:
//   - list: remote reachable → read remote, overwrite the cache with
//     the result; otherwise read the cache unmodified. Never fails; a
//     remote error is logged and falls back silently.
//   - save: cache first (optimistic, immediate), then remote upsert by
//     id. A remote failure leaves the cache ahead of the remote store
//     and is returned to the caller so the UI can warn; background
//     callers log and move on.
//   - delete: cache immediately, best-effort remote, not retried.
//
// Within one call the local write always precedes the remote attempt.
// Across calls there is no mutual exclusion: last write wins, both
// locally and remotely.
type PersistenceGateway struct {
	remote   *RemoteStores
	cache    ports.CachePort
	logger   ports.LoggerPort
	validate *validator.Validate
	userID   uuid.UUID
}

func NewPersistenceGateway(
	remote *RemoteStores,
	cache ports.CachePort,
	logger ports.LoggerPort,
	validate *validator.Validate,
	userID uuid.UUID,
) *PersistenceGateway {
	return &PersistenceGateway{
		remote:   remote,
		cache:    cache,
		logger:   logger,
		validate: validate,
		userID:   userID,
	}
}

// RemoteConfigured reports whether a remote store is wired in.
func (g *PersistenceGateway) RemoteConfigured() bool {
	return g.remote != nil
}

// UserID returns the fixed synthetic owner id of this deployment.
func (g *PersistenceGateway) UserID() uuid.UUID {
	return g.userID
}

// readCollection loads a cached collection into dst (a pointer to a
// slice). A missing key or undecodable payload yields the empty
// collection; the cache is never authoritative enough to fail a read.
func (g *PersistenceGateway) readCollection(key string, dst interface{}) {
	data, err := g.cache.Get(key)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		g.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// writeCollection overwrites a cached collection. Cache write failures
// are logged, not surfaced: the remote store (when configured) is the
// durable side.
func (g *PersistenceGateway) writeCollection(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		g.logger.Error("Failed to marshal collection for cache", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := g.cache.Set(key, data, 0); err != nil {
		g.logger.Warn("Failed to write cache", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// ListBikes returns every bike of the owner. Read-through refresh: a
// successful remote read overwrites the cache snapshot.
func (g *PersistenceGateway) ListBikes(ctx context.Context) []*domain.Bike {
	if g.remote != nil {
		bikes, err := g.remote.Bikes.ListBikes(ctx, g.userID)
		if err == nil {
			g.writeCollection(cacheKeyBikes, bikes)
			return bikes
		}
		g.logger.Warn("Remote bike list failed, serving cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	bikes := []*domain.Bike{}
	g.readCollection(cacheKeyBikes, &bikes)
	return bikes
}

// GetBike returns one bike from the current snapshot.
func (g *PersistenceGateway) GetBike(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	for _, b := range g.ListBikes(ctx) {
		if b.ID == bikeID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("bike %s: %w", bikeID, domain.ErrNotFound)
}

// SaveBike validates and upserts a bike: cache first, then remote. A
// validation failure touches neither store; a failure marked
// domain.ErrRemoteWrite means the cache already holds the new state.
func (g *PersistenceGateway) SaveBike(ctx context.Context, bike *domain.Bike) error {
	if bike.ID == uuid.Nil {
		bike.ID = uuid.New()
	}
	bike.UserID = g.userID
	if bike.CreatedAt.IsZero() {
		bike.CreatedAt = time.Now().UTC()
	}
	if err := g.validate.Struct(bike); err != nil {
		g.logger.Error("Bike validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("validation error: %w", err)
	}

	bikes := []*domain.Bike{}
	g.readCollection(cacheKeyBikes, &bikes)
	g.writeCollection(cacheKeyBikes, upsertByID(bikes, bike, func(b *domain.Bike) uuid.UUID { return b.ID }))

	if g.remote == nil {
		return nil
	}
	if err := g.remote.Bikes.UpsertBike(ctx, bike); err != nil {
		g.logger.Error("Remote bike upsert failed, cache is ahead", map[string]interface{}{
			"bike_id": bike.ID.String(),
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	return nil
}

// DeleteBike removes a bike and cascades its maintenance records and
// history. The remote delete is best-effort; the relational store
// cascades children through its foreign keys.
func (g *PersistenceGateway) DeleteBike(ctx context.Context, bikeID uuid.UUID) {
	bikes := []*domain.Bike{}
	g.readCollection(cacheKeyBikes, &bikes)
	g.writeCollection(cacheKeyBikes, removeByID(bikes, bikeID, func(b *domain.Bike) uuid.UUID { return b.ID }))

	records := []*domain.MaintenanceRecord{}
	g.readCollection(cacheKeyMaintenance, &records)
	kept := records[:0]
	for _, r := range records {
		if r.BikeID != bikeID {
			kept = append(kept, r)
		}
	}
	g.writeCollection(cacheKeyMaintenance, kept)

	history := []*domain.MaintenanceHistory{}
	g.readCollection(cacheKeyHistory, &history)
	keptHist := history[:0]
	for _, h := range history {
		if h.BikeID != bikeID {
			keptHist = append(keptHist, h)
		}
	}
	g.writeCollection(cacheKeyHistory, keptHist)

	if g.remote == nil {
		return
	}
	if err := g.remote.Bikes.DeleteBike(ctx, bikeID); err != nil {
		g.logger.Warn("Remote bike delete failed", map[string]interface{}{
			"bike_id": bikeID.String(),
			"error":   err.Error(),
		})
	}
}

// upsertByID replaces the element with a matching id or appends.
func upsertByID[T any](items []T, item T, id func(T) uuid.UUID) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// removeByID drops the element with a matching id, preserving order.
func removeByID[T any](items []T, target uuid.UUID, id func(T) uuid.UUID) []T {
	kept := items[:0]
	for _, it := range items {
		if id(it) != target {
			kept = append(kept, it)
		}
	}
	return kept
}
