package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a garden workday, workshop or meetup.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	GardenID     *uuid.UUID `json:"garden_id,omitempty"`
	CreatedBy    uuid.UUID  `json:"created_by"`
	MaxAttendees *int       `json:"max_attendees,omitempty"` // nil = unlimited
	IsPublic     bool       `json:"is_public"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RSVPStatus is an attendee's stated intent.
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAttending, RSVPMaybe, RSVPDeclined:
		return true
	}
	return false
}

// EventAttendee is one user's RSVP to an event (unique per event+user).
type EventAttendee struct {
	EventID    uuid.UUID  `json:"event_id"`
	UserID     uuid.UUID  `json:"user_id"`
	RSVPStatus RSVPStatus `json:"rsvp_status"`
	RSVPDate   time.Time  `json:"rsvp_date"`
}
