// Package store defines the persistence contract used by the domain services.
//
// Reads of soft-deletable entities (gardens, discussions, replies) return active rows only
// unless IncludeInactive is passed. Delete follows lifecycle.ModeOf for the entity and reports
// which mode was applied.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
)

var (
	// ErrNotFound is returned when no (visible) row matches.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("store: conflict")
	// ErrUnknownField is returned when a Patch names a column the entity does not have.
	ErrUnknownField = errors.New("store: unknown field")
)

// Store is the unit-of-work boundary. Repositories obtained from the tx passed to WithTx
// run inside one transaction; a nested WithTx reuses it.
type Store interface {
	Users() UserRepository
	Gardens() GardenRepository
	Memberships() MembershipRepository
	Discussions() DiscussionRepository
	Replies() ReplyRepository
	Events() EventRepository
	Attendees() AttendeeRepository
	Photos() PhotoRepository
	Resources() ResourceRepository
	Guides() GuideRepository
	Stats() StatRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// ListFilter narrows list queries. Zero values mean "no filter".
type ListFilter struct {
	GardenID      *uuid.UUID
	AuthorID      *uuid.UUID
	Category      string
	Region        string
	StatType      string
	Search        string
	PublicOnly    bool
	PublishedOnly bool
	// VisibleTo keeps hidden (private or unpublished) rows only when this user owns them
	// or, for garden rows, is an active member of the garden.
	VisibleTo *uuid.UUID
	Limit         int
	Offset        int
}

// DefaultLimit caps list queries that do not set Limit.
const DefaultLimit = 50

// PageLimit returns the effective limit.
func (f ListFilter) PageLimit() int {
	if f.Limit <= 0 || f.Limit > 200 {
		return DefaultLimit
	}
	return f.Limit
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByLogin matches either username or email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context, f ListFilter) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type GardenRepository interface {
	Create(ctx context.Context, g *models.Garden) error
	Get(ctx context.Context, id uuid.UUID, opts ...Option) (*models.Garden, error)
	List(ctx context.Context, f ListFilter, opts ...Option) ([]models.Garden, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Garden, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type MembershipRepository interface {
	// Get returns the membership row for the pair, active or not.
	Get(ctx context.Context, userID, gardenID uuid.UUID) (*models.Membership, error)
	// ActiveRole returns "" without error when there is no active membership.
	ActiveRole(ctx context.Context, userID, gardenID uuid.UUID) (models.GardenRole, error)
	CountActive(ctx context.Context, gardenID uuid.UUID) (int, error)
	Insert(ctx context.Context, m *models.Membership) error
	// Reactivate flips an inactive row back to an active member and resets its join date.
	Reactivate(ctx context.Context, userID, gardenID uuid.UUID) (*models.Membership, error)
	// Deactivate returns ErrNotFound when there is no active row for the pair.
	Deactivate(ctx context.Context, userID, gardenID uuid.UUID) error
	ListActive(ctx context.Context, gardenID uuid.UUID) ([]models.Member, error)
}

type DiscussionRepository interface {
	Create(ctx context.Context, d *models.Discussion) error
	Get(ctx context.Context, id uuid.UUID, opts ...Option) (*models.Discussion, error)
	List(ctx context.Context, f ListFilter, opts ...Option) ([]models.Discussion, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Discussion, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type ReplyRepository interface {
	Create(ctx context.Context, r *models.DiscussionReply) error
	Get(ctx context.Context, id uuid.UUID, opts ...Option) (*models.DiscussionReply, error)
	ListByDiscussion(ctx context.Context, discussionID uuid.UUID, opts ...Option) ([]models.DiscussionReply, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.DiscussionReply, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	Get(ctx context.Context, id uuid.UUID, opts ...Option) (*models.Event, error)
	List(ctx context.Context, f ListFilter) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type AttendeeRepository interface {
	Get(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendee, error)
	CountAttending(ctx context.Context, eventID uuid.UUID) (int, error)
	// Upsert inserts the RSVP or updates status and date of the existing (event, user) row.
	Upsert(ctx context.Context, a *models.EventAttendee) error
	List(ctx context.Context, eventID uuid.UUID) ([]models.EventAttendee, error)
}

type PhotoRepository interface {
	Create(ctx context.Context, p *models.Photo) error
	Get(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	List(ctx context.Context, f ListFilter) ([]models.Photo, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, r *models.Resource) error
	Get(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	List(ctx context.Context, f ListFilter) ([]models.Resource, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type GuideRepository interface {
	Create(ctx context.Context, g *models.Guide) error
	Get(ctx context.Context, id uuid.UUID) (*models.Guide, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.Guide, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Guide, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}

type StatRepository interface {
	Create(ctx context.Context, s *models.Stat) error
	Get(ctx context.Context, id uuid.UUID) (*models.Stat, error)
	List(ctx context.Context, f ListFilter) ([]models.Stat, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Stat, error)
	Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error)
}
