package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"

	"github.com/google/uuid"
)

// defaultComponents is the tracked set seeded for a new bike, with the
// expected lifespan in km.
var defaultComponents = []struct {
	name     string
	lifespan float64
}{
	{"chain", 3000},
	{"tires", 4000},
	{"brake pads", 2000},
}

// MaintenanceService implements the component tracking operations on
// top of the gateway: seeding, the wear report, and the replacement
// transition.
type MaintenanceService struct {
	gateway *PersistenceGateway
	logger  ports.LoggerPort
}

func NewMaintenanceService(gateway *PersistenceGateway, logger ports.LoggerPort) *MaintenanceService {
	return &MaintenanceService{
		gateway: gateway,
		logger:  logger,
	}
}

// SeedDefaults creates the default component set for a bike at its
// current mileage. Remote write failures are logged per component and
// do not abort the rest; the cache already holds every record.
func (s *MaintenanceService) SeedDefaults(ctx context.Context, bike *domain.Bike) {
	for _, c := range defaultComponents {
		record := &domain.MaintenanceRecord{
			BikeID:        bike.ID,
			ComponentName: c.name,
			KmAtInstall:   bike.TotalKm,
			LastCheckKm:   bike.TotalKm,
			LifespanLimit: c.lifespan,
		}
		if err := s.gateway.SaveMaintenance(ctx, record); err != nil {
			s.logger.Warn("Seeded component not persisted remotely", map[string]interface{}{
				"bike_id":   bike.ID.String(),
				"component": c.name,
				"error":     err.Error(),
			})
		}
	}
	s.logger.Info("Seeded default components", map[string]interface{}{
		"bike_id": bike.ID.String(),
		"count":   len(defaultComponents),
	})
}

// WearReport joins a bike with its maintenance records and returns the
// derived wear numbers, sorted descending by wear percent.
func (s *MaintenanceService) WearReport(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, []domain.ComponentWear, error) {
	bike, err := s.gateway.GetBike(ctx, bikeID)
	if err != nil {
		return nil, nil, err
	}
	records := s.gateway.ListMaintenance(ctx, bikeID)
	return bike, domain.BuildWearReport(bike, records), nil
}

// MarkReplaced performs the replacement transition at the user-supplied
// distance: it appends exactly one history entry covering the removed
// part and resets the record's install distance. The history log is
// append-only, so the input is rejected before anything lands; after
// that the append precedes the record reset so an interrupted call can
// never lose the covered distance.
func (s *MaintenanceService) MarkReplaced(ctx context.Context, recordID uuid.UUID, atKm float64, notes string) (*domain.MaintenanceRecord, *domain.MaintenanceHistory, error) {
	if atKm < 0 {
		return nil, nil, fmt.Errorf("replacement distance %.1f km must not be negative", atKm)
	}
	record, err := s.gateway.GetMaintenanceRecord(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}

	covered := atKm - record.KmAtInstall
	if covered < 0 {
		covered = 0
	}
	entry := &domain.MaintenanceHistory{
		BikeID:          record.BikeID,
		ComponentName:   record.ComponentName,
		ReplacedAtKm:    atKm,
		DistanceCovered: covered,
		Notes:           notes,
		ReplacementDate: time.Now().UTC(),
	}
	if err := s.gateway.SaveHistory(ctx, entry); err != nil {
		s.logger.Warn("Replacement history not persisted remotely", map[string]interface{}{
			"record_id": recordID.String(),
			"error":     err.Error(),
		})
	}

	record.KmAtInstall = atKm
	record.LastCheckKm = atKm
	if err := s.gateway.SaveMaintenance(ctx, record); err != nil {
		return record, entry, fmt.Errorf("component reset not persisted remotely: %w", err)
	}

	s.logger.Info("Component marked replaced", map[string]interface{}{
		"record_id": record.ID.String(),
		"component": record.ComponentName,
		"at_km":     atKm,
		"covered":   covered,
	})
	return record, entry, nil
}
