package models

import "github.com/google/uuid"

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}
