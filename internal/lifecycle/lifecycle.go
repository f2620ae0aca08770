// Package lifecycle decides whether deleting an entity flips its active flag or removes the row.
package lifecycle

import "github.com/gardenhub/backend/internal/models"

// Mode is how an entity is deleted.
type Mode int

const (
	// HardDelete removes the row permanently.
	HardDelete Mode = iota
	// SoftDelete sets is_active = false and keeps the row resolvable.
	SoftDelete
)

func (m Mode) String() string {
	if m == SoftDelete {
		return "soft_deleted"
	}
	return "hard_deleted"
}

// Entities that other rows reference keep their rows.
var modes = map[models.Entity]Mode{
	models.EntityGarden:     SoftDelete,
	models.EntityDiscussion: SoftDelete,
	models.EntityReply:      SoftDelete,
	models.EntityMembership: SoftDelete,

	models.EntityEvent:    HardDelete,
	models.EntityAttendee: HardDelete,
	models.EntityPhoto:    HardDelete,
	models.EntityResource: HardDelete,
	models.EntityGuide:    HardDelete,
	models.EntityStat:     HardDelete,
	models.EntityUser:     HardDelete,
}

// ModeOf returns the delete mode for an entity. Unknown entities are hard-deleted.
func ModeOf(e models.Entity) Mode {
	return modes[e]
}
