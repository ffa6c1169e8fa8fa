package services

import (
	"context"
	"fmt"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListMaintenance returns the records of one bike, newest snapshot
// first refreshed from the remote store when it is reachable. The whole
// collection is loaded and filtered by bike id after load.
func (g *PersistenceGateway) ListMaintenance(ctx context.Context, bikeID uuid.UUID) []*domain.MaintenanceRecord {
	records := g.listAllMaintenance(ctx)
	filtered := make([]*domain.MaintenanceRecord, 0, len(records))
	for _, r := range records {
		if r.BikeID == bikeID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (g *PersistenceGateway) listAllMaintenance(ctx context.Context) []*domain.MaintenanceRecord {
	if g.remote != nil {
		records, err := g.remote.Maintenance.ListRecords(ctx)
		if err == nil {
			g.writeCollection(cacheKeyMaintenance, records)
			return records
		}
		g.logger.Warn("Remote maintenance list failed, serving cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	records := []*domain.MaintenanceRecord{}
	g.readCollection(cacheKeyMaintenance, &records)
	return records
}

// GetMaintenanceRecord returns one record from the current snapshot.
func (g *PersistenceGateway) GetMaintenanceRecord(ctx context.Context, recordID uuid.UUID) (*domain.MaintenanceRecord, error) {
	for _, r := range g.listAllMaintenance(ctx) {
		if r.ID == recordID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("maintenance record %s: %w", recordID, domain.ErrNotFound)
}

func (g *PersistenceGateway) SaveMaintenance(ctx context.Context, record *domain.MaintenanceRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := g.validate.Struct(record); err != nil {
		g.logger.Error("Maintenance record validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("validation error: %w", err)
	}

	records := []*domain.MaintenanceRecord{}
	g.readCollection(cacheKeyMaintenance, &records)
	g.writeCollection(cacheKeyMaintenance,
		upsertByID(records, record, func(r *domain.MaintenanceRecord) uuid.UUID { return r.ID }))

	if g.remote == nil {
		return nil
	}
	if err := g.remote.Maintenance.UpsertRecord(ctx, record); err != nil {
		g.logger.Error("Remote maintenance upsert failed, cache is ahead", map[string]interface{}{
			"record_id": record.ID.String(),
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	return nil
}

func (g *PersistenceGateway) DeleteMaintenance(ctx context.Context, recordID uuid.UUID) {
	records := []*domain.MaintenanceRecord{}
	g.readCollection(cacheKeyMaintenance, &records)
	g.writeCollection(cacheKeyMaintenance,
		removeByID(records, recordID, func(r *domain.MaintenanceRecord) uuid.UUID { return r.ID }))

	if g.remote == nil {
		return
	}
	if err := g.remote.Maintenance.DeleteRecord(ctx, recordID); err != nil {
		g.logger.Warn("Remote maintenance delete failed", map[string]interface{}{
			"record_id": recordID.String(),
			"error":     err.Error(),
		})
	}
}

// ListHistory returns the replacement log of one bike, newest entries
// in insertion order.
func (g *PersistenceGateway) ListHistory(ctx context.Context, bikeID uuid.UUID) []*domain.MaintenanceHistory {
	entries := g.listAllHistory(ctx)
	filtered := make([]*domain.MaintenanceHistory, 0, len(entries))
	for _, e := range entries {
		if e.BikeID == bikeID {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (g *PersistenceGateway) listAllHistory(ctx context.Context) []*domain.MaintenanceHistory {
	if g.remote != nil {
		entries, err := g.remote.Maintenance.ListHistory(ctx)
		if err == nil {
			g.writeCollection(cacheKeyHistory, entries)
			return entries
		}
		g.logger.Warn("Remote history list failed, serving cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	entries := []*domain.MaintenanceHistory{}
	g.readCollection(cacheKeyHistory, &entries)
	return entries
}

// SaveHistory appends a replacement log entry. Entries are immutable;
// an id collision still upserts so the call is idempotent.
func (g *PersistenceGateway) SaveHistory(ctx context.Context, entry *domain.MaintenanceHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := g.validate.Struct(entry); err != nil {
		g.logger.Error("History entry validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("validation error: %w", err)
	}

	entries := []*domain.MaintenanceHistory{}
	g.readCollection(cacheKeyHistory, &entries)
	g.writeCollection(cacheKeyHistory,
		upsertByID(entries, entry, func(e *domain.MaintenanceHistory) uuid.UUID { return e.ID }))

	if g.remote == nil {
		return nil
	}
	if err := g.remote.Maintenance.UpsertHistory(ctx, entry); err != nil {
		g.logger.Error("Remote history upsert failed, cache is ahead", map[string]interface{}{
			"entry_id": entry.ID.String(),
			"error":    err.Error(),
		})
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	return nil
}

func (g *PersistenceGateway) DeleteHistory(ctx context.Context, entryID uuid.UUID) {
	entries := []*domain.MaintenanceHistory{}
	g.readCollection(cacheKeyHistory, &entries)
	g.writeCollection(cacheKeyHistory,
		removeByID(entries, entryID, func(e *domain.MaintenanceHistory) uuid.UUID { return e.ID }))

	if g.remote == nil {
		return
	}
	if err := g.remote.Maintenance.DeleteHistory(ctx, entryID); err != nil {
		g.logger.Warn("Remote history delete failed", map[string]interface{}{
			"entry_id": entryID.String(),
			"error":    err.Error(),
		})
	}
}
