package domain

import "time"

// StravaToken is the OAuth credential for the Strava API. ExpiresAt is
// the absolute expiry instant in unix seconds, exactly as the token
// endpoint reports it.
type StravaToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	AthleteID    int64  `json:"athlete_id,omitempty"`
}

// ExpiresWithin reports whether the token expires within the given
// margin from now (or has already expired).
func (t *StravaToken) ExpiresWithin(margin time.Duration) bool {
	return time.Now().Add(margin).Unix() >= t.ExpiresAt
}

// Gear is a bike as Strava reports it: lifetime distance in meters.
type Gear struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance"`
}

func (g *Gear) DistanceKm() float64 {
	return g.DistanceMeters / 1000
}

// Athlete is the authenticated Strava profile with its linked gear.
type Athlete struct {
	ID    int64  `json:"id"`
	Bikes []Gear `json:"bikes"`
}
