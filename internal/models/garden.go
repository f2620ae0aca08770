package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMembers is applied when a garden is created without a member limit.
const DefaultMaxMembers = 10

// Garden is a community garden plot that users can join.
type Garden struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Region      string    `json:"region"`
	MaxMembers  int       `json:"max_members"`
	CreatedBy   uuid.UUID `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GardenRole is a user's role inside a single garden.
type GardenRole string

const (
	GardenRoleCoordinator GardenRole = "coordinator"
	GardenRoleMember      GardenRole = "member"
)

// Membership links a user to a garden.
type Membership struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	GardenID  uuid.UUID  `json:"garden_id"`
	Role      GardenRole `json:"role"`
	IsActive  bool       `json:"is_active"`
	JoinDate  time.Time  `json:"join_date"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Member is an active membership joined with the member's username (for GET /gardens/:id/members).
type Member struct {
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username"`
	Role     GardenRole `json:"role"`
	JoinDate time.Time  `json:"join_date"`
}
