package domain

import (
	"github.com/google/uuid"
)

// TokenPayload is what the optional bearer-token middleware extracts
// from a verified JWT. The deployment is single-tenant, so the payload
// is just the owner identity.
type TokenPayload struct {
	UserID uuid.UUID
}
