// Package policy decides who may create, update or delete each kind of entity.
//
// The rules live in one table keyed by entity and action. Check evaluates a rule for an
// actor whose garden membership has already been resolved; Authorize resolves that
// membership from the store on every call and then delegates to Check.
package policy

import "github.com/gardenhub/backend/internal/models"

// Action is a mutation kind.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionPin        Action = "pin"
	ActionChangeRole Action = "change_role"
)

// Rule lists the relationships that admit an actor.
type Rule struct {
	// AnyUser admits every authenticated actor (subject to Member).
	AnyUser bool
	// Owner admits the entity's creator/author/uploader/recorder.
	Owner bool
	// Coordinator admits an active coordinator of the garden in scope.
	Coordinator bool
	// Member requires an active membership in the entity's garden, when it has one.
	// Elevated actors are exempt.
	Member bool
	// Elevated roles are admitted regardless of ownership or membership.
	Elevated []models.Role
}

var (
	contentModerators = []models.Role{models.RoleModerator, models.RoleAdmin}
	adminsOnly        = []models.Role{models.RoleAdmin}
)

// Table is the authoritative permission table.
var Table = map[models.Entity]map[Action]Rule{
	models.EntityGarden: {
		ActionCreate: {AnyUser: true},
		ActionUpdate: {Owner: true, Coordinator: true, Elevated: adminsOnly},
		ActionDelete: {Owner: true, Elevated: adminsOnly},
	},
	models.EntityDiscussion: {
		ActionCreate: {AnyUser: true, Member: true},
		ActionUpdate: {Owner: true, Member: true, Elevated: contentModerators},
		ActionDelete: {Owner: true, Member: true, Elevated: contentModerators},
		ActionPin:    {Elevated: contentModerators},
	},
	models.EntityReply: {
		ActionCreate: {AnyUser: true, Member: true},
		ActionUpdate: {Owner: true, Member: true, Elevated: contentModerators},
		ActionDelete: {Owner: true, Member: true, Elevated: contentModerators},
	},
	models.EntityEvent: {
		ActionCreate: {AnyUser: true, Member: true},
		ActionUpdate: {Owner: true, Member: true, Elevated: adminsOnly},
		ActionDelete: {Owner: true, Member: true, Elevated: adminsOnly},
	},
	models.EntityPhoto: {
		ActionCreate: {AnyUser: true, Member: true},
		ActionUpdate: {Owner: true, Member: true, Elevated: contentModerators},
		ActionDelete: {Owner: true, Member: true, Elevated: contentModerators},
	},
	models.EntityResource: {
		ActionCreate: {AnyUser: true},
		ActionUpdate: {Owner: true, Elevated: contentModerators},
		ActionDelete: {Owner: true, Elevated: contentModerators},
	},
	// Guide ownership is the parent resource's author.
	models.EntityGuide: {
		ActionCreate: {Owner: true, Elevated: contentModerators},
		ActionUpdate: {Owner: true, Elevated: contentModerators},
		ActionDelete: {Owner: true, Elevated: contentModerators},
	},
	models.EntityStat: {
		ActionCreate: {AnyUser: true, Member: true},
		ActionUpdate: {Owner: true, Member: true, Elevated: adminsOnly},
		ActionDelete: {Owner: true, Member: true, Elevated: adminsOnly},
	},
	models.EntityUser: {
		ActionUpdate:     {Owner: true, Elevated: adminsOnly},
		ActionDelete:     {Elevated: adminsOnly},
		ActionChangeRole: {Elevated: adminsOnly},
	},
}

// RuleFor returns the rule for an entity and action.
func RuleFor(e models.Entity, a Action) (Rule, bool) {
	actions, ok := Table[e]
	if !ok {
		return Rule{}, false
	}
	r, ok := actions[a]
	return r, ok
}

// IsElevated reports whether role is one of the rule's elevated roles.
func (r Rule) IsElevated(role models.Role) bool {
	for _, e := range r.Elevated {
		if e == role {
			return true
		}
	}
	return false
}

// needsMembership reports whether evaluating the rule requires the actor's garden role.
func (r Rule) needsMembership() bool {
	return r.Member || r.Coordinator
}
