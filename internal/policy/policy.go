package policy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
)

// Actor is the caller with its membership in the resource's garden resolved.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
	// GardenRole is empty when the actor has no active membership in the garden in scope.
	GardenRole models.GardenRole
}

// Resource describes the entity being mutated.
type Resource struct {
	Entity models.Entity
	// OwnerID is the creator/author/uploader/recorder; uuid.Nil on create.
	OwnerID uuid.UUID
	// GardenID is the garden the entity belongs to, or the garden itself for EntityGarden.
	GardenID *uuid.UUID
}

// MembershipReader resolves a user's active role in a garden. It returns an empty role
// (and no error) when there is no active membership.
type MembershipReader interface {
	ActiveRole(ctx context.Context, userID, gardenID uuid.UUID) (models.GardenRole, error)
}

// Check evaluates the table rule for actor, action and resource.
func Check(actor Actor, action Action, res Resource) error {
	rule, ok := RuleFor(res.Entity, action)
	if !ok {
		return apperr.Forbid(fmt.Sprintf("%s on %s is not permitted", action, res.Entity))
	}
	if rule.IsElevated(actor.Role) {
		return nil
	}
	if rule.Member && res.GardenID != nil && actor.GardenRole == "" {
		return apperr.Forbid("active membership in this garden is required")
	}
	if rule.AnyUser {
		return nil
	}
	if rule.Owner && res.OwnerID != uuid.Nil && res.OwnerID == actor.ID {
		return nil
	}
	if rule.Coordinator && actor.GardenRole == models.GardenRoleCoordinator {
		return nil
	}
	return apperr.Forbid(fmt.Sprintf("you do not have permission to %s this %s", action, res.Entity))
}

// Authorize resolves the caller's membership in res.GardenID (when the rule depends on it)
// and evaluates Check. Membership is read on every call.
func Authorize(ctx context.Context, members MembershipReader, who models.Identity, action Action, res Resource) error {
	actor := Actor{ID: who.ID, Role: who.Role}
	rule, ok := RuleFor(res.Entity, action)
	if ok && !rule.IsElevated(who.Role) && rule.needsMembership() && res.GardenID != nil {
		role, err := members.ActiveRole(ctx, who.ID, *res.GardenID)
		if err != nil {
			return err
		}
		actor.GardenRole = role
	}
	return Check(actor, action, res)
}
