// Package capacity admits joins and RSVPs against member and attendee limits.
package capacity

import (
	"fmt"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
)

// Admit returns nil when one more admission fits under limit.
// A limit <= 0 means unlimited. kind selects the rejection error (GardenFull or EventFull).
func Admit(current, limit int, kind apperr.Kind) error {
	if limit <= 0 || current < limit {
		return nil
	}
	switch kind {
	case apperr.GardenFull:
		return apperr.New(kind, fmt.Sprintf("garden has reached its limit of %d members", limit))
	case apperr.EventFull:
		return apperr.New(kind, fmt.Sprintf("event has reached its limit of %d attendees", limit))
	}
	return apperr.New(kind, "capacity reached")
}

// MaxMembers resolves a requested garden member limit. Absent means the default;
// an explicit non-positive value is invalid.
func MaxMembers(requested *int) (int, error) {
	if requested == nil {
		return models.DefaultMaxMembers, nil
	}
	if *requested <= 0 {
		return 0, apperr.Validation("max_members must be a positive integer")
	}
	return *requested, nil
}

// NeedsAttendeeCheck reports whether moving from prev to next consumes an attendee slot.
// prev is empty when the user has no RSVP yet.
func NeedsAttendeeCheck(prev, next models.RSVPStatus) bool {
	return next == models.RSVPAttending && prev != models.RSVPAttending
}
