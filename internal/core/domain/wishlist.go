package domain

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name" validate:"required,max=200"`
	Category      string    `json:"category,omitempty" validate:"max=100"`
	IsPurchased   bool      `json:"is_purchased"`
	PriceEstimate *float64  `json:"price_estimate,omitempty"`
	ProductURL    string    `json:"product_url,omitempty" validate:"omitempty,url"`
	Notes         string    `json:"notes,omitempty" validate:"max=500"`
	CreatedAt     time.Time `json:"created_at"`
}
