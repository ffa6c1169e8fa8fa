package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Setting is a row in the generic key/value bucket. The Strava token is
// stored here so it follows the user across devices.
type Setting struct {
	ID        string          `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingStravaToken is the settings row id under which the OAuth
// credential is persisted.
const SettingStravaToken = "strava_token"
