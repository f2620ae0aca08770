package policy

import (
	"context"

	"github.com/gardenhub/backend/internal/models"
)

// SeesHidden reports whether role reads every private or unpublished row of entity. These
// are the roles elevated for updating it.
func SeesHidden(entity models.Entity, role models.Role) bool {
	rule, ok := RuleFor(entity, ActionUpdate)
	return ok && rule.IsElevated(role)
}

// CanView decides whether viewer may read a row that is hidden from the public. A nil
// viewer is anonymous. Owners, roles that see hidden rows and active members of the row's
// garden may read it.
func CanView(ctx context.Context, members MembershipReader, viewer *models.Identity, res Resource) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	if res.OwnerID == viewer.ID || SeesHidden(res.Entity, viewer.Role) {
		return true, nil
	}
	if res.GardenID == nil {
		return false, nil
	}
	role, err := members.ActiveRole(ctx, viewer.ID, *res.GardenID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}
