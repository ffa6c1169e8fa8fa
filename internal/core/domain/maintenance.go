package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecord is the current install state of one tracked
// component on one bike. KmAtInstall is reset when the component is
// marked replaced; everything before the reset lives on as a
// MaintenanceHistory entry.
type MaintenanceRecord struct {
	ID            uuid.UUID `json:"id"`
	BikeID        uuid.UUID `json:"bike_id" validate:"required"`
	ComponentName string    `json:"component_name" validate:"required,max=100"`
	KmAtInstall   float64   `json:"km_at_install" validate:"min=0"`
	LastCheckKm   float64   `json:"last_check_km" validate:"min=0"`
	LifespanLimit float64   `json:"lifespan_limit" validate:"required,gt=0"`
	Notes         string    `json:"notes,omitempty" validate:"max=500"`
}

// MaintenanceHistory records a past replacement. Entries are append-only
// and never mutated; they may be deleted individually for corrections.
type MaintenanceHistory struct {
	ID              uuid.UUID `json:"id"`
	BikeID          uuid.UUID `json:"bike_id" validate:"required"`
	ComponentName   string    `json:"component_name" validate:"required,max=100"`
	ReplacedAtKm    float64   `json:"replaced_at_km"`
	DistanceCovered float64   `json:"distance_covered"`
	Notes           string    `json:"notes,omitempty" validate:"max=500"`
	ReplacementDate time.Time `json:"replacement_date"`
}
