package domain

import (
	"time"

	"github.com/google/uuid"
)

// swagger:model domain.Bike
type Bike struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name" validate:"required,max=200"`
	Type         BikeType   `json:"type" validate:"required,oneof=road gravel mtb"`
	StravaGearID *string    `json:"strava_gear_id,omitempty"`
	TotalKm      float64    `json:"total_km" validate:"min=0"`
	ProductURL   string     `json:"product_url,omitempty" validate:"omitempty,url"`
	Specs        *BikeSpecs `json:"specs,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type BikeType string

const (
	Road   BikeType = "road"
	Gravel BikeType = "gravel"
	MTB    BikeType = "mtb"
)

func (t BikeType) Valid() bool {
	switch t {
	case Road, Gravel, MTB:
		return true
	}
	return false
}

// BikeSpecs is the free-form spec bundle attached to a bike. Everything
// here is optional and may come from the extraction service, so the
// fields are plain strings rather than parsed measurements.
type BikeSpecs struct {
	Frame        string       `json:"frame,omitempty"`
	Fork         string       `json:"fork,omitempty"`
	Groupset     string       `json:"groupset,omitempty"`
	Brakes       string       `json:"brakes,omitempty"`
	Wheels       string       `json:"wheels,omitempty"`
	Tires        string       `json:"tires,omitempty"`
	ClearanceMax string       `json:"clearance_max,omitempty"`
	Weight       string       `json:"weight,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Photos       []string     `json:"photos,omitempty"`
	Sources      []SpecSource `json:"sources,omitempty"`
}

// SpecSource is a provenance link for extracted specs.
type SpecSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
