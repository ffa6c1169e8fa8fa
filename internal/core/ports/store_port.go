package ports

import (
	"context"
	"encoding/json"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
)

// Remote store ports. Every write is an upsert-by-id: insert or full
// replace, no partial updates. The gateway treats any of these being
// unavailable as "remote unconfigured" and runs cache-only.

type BikeStore interface {
	ListBikes(ctx context.Context, userID uuid.UUID) ([]*domain.Bike, error)
	UpsertBike(ctx context.Context, bike *domain.Bike) error
	DeleteBike(ctx context.Context, bikeID uuid.UUID) error
}

type MaintenanceStore interface {
	ListRecords(ctx context.Context) ([]*domain.MaintenanceRecord, error)
	UpsertRecord(ctx context.Context, record *domain.MaintenanceRecord) error
	DeleteRecord(ctx context.Context, recordID uuid.UUID) error

	ListHistory(ctx context.Context) ([]*domain.MaintenanceHistory, error)
	UpsertHistory(ctx context.Context, entry *domain.MaintenanceHistory) error
	DeleteHistory(ctx context.Context, entryID uuid.UUID) error
}

type WishlistStore interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
	UpsertItem(ctx context.Context, item *domain.WishlistItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type SettingStore interface {
	GetSetting(ctx context.Context, userID uuid.UUID, id string) (json.RawMessage, error)
	PutSetting(ctx context.Context, userID uuid.UUID, id string, value json.RawMessage) error
	DeleteSetting(ctx context.Context, userID uuid.UUID, id string) error
}
