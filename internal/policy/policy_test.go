package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
)

type fakeMembers struct {
	roles map[[2]uuid.UUID]models.GardenRole
	calls int
	err   error
}

func (f *fakeMembers) ActiveRole(_ context.Context, userID, gardenID uuid.UUID) (models.GardenRole, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.roles[[2]uuid.UUID{userID, gardenID}], nil
}

func TestElevatedRolesPerEntity(t *testing.T) {
	owner := uuid.New()
	garden := uuid.New()
	tests := []struct {
		entity models.Entity
		role   models.Role
		allow  bool
	}{
		{models.EntityDiscussion, models.RoleModerator, true},
		{models.EntityDiscussion, models.RoleAdmin, true},
		{models.EntityReply, models.RoleModerator, true},
		{models.EntityPhoto, models.RoleModerator, true},
		{models.EntityResource, models.RoleModerator, true},
		{models.EntityGuide, models.RoleModerator, true},
		{models.EntityGarden, models.RoleModerator, false},
		{models.EntityGarden, models.RoleAdmin, true},
		{models.EntityStat, models.RoleModerator, false},
		{models.EntityStat, models.RoleAdmin, true},
		{models.EntityEvent, models.RoleModerator, false},
		{models.EntityEvent, models.RoleAdmin, true},
		{models.EntityUser, models.RoleModerator, false},
		{models.EntityUser, models.RoleAdmin, true},
		{models.EntityDiscussion, models.RoleMember, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.entity)+"/"+string(tt.role), func(t *testing.T) {
			actor := Actor{ID: uuid.New(), Role: tt.role}
			err := Check(actor, ActionDelete, Resource{Entity: tt.entity, OwnerID: owner, GardenID: &garden})
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.Forbidden), "want forbidden, got %v", err)
		})
	}
}

func TestOwnerNeedsActiveMembershipInScopedGarden(t *testing.T) {
	owner := uuid.New()
	garden := uuid.New()
	res := Resource{Entity: models.EntityDiscussion, OwnerID: owner, GardenID: &garden}

	err := Check(Actor{ID: owner, Role: models.RoleMember, GardenRole: models.GardenRoleMember}, ActionUpdate, res)
	assert.NoError(t, err)

	err = Check(Actor{ID: owner, Role: models.RoleMember}, ActionUpdate, res)
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	unscoped := Resource{Entity: models.EntityDiscussion, OwnerID: owner}
	assert.NoError(t, Check(Actor{ID: owner, Role: models.RoleMember}, ActionUpdate, unscoped))
}

func TestCreateRequiresMembershipEvenForAdmin(t *testing.T) {
	garden := uuid.New()
	for _, entity := range []models.Entity{models.EntityDiscussion, models.EntityEvent, models.EntityPhoto, models.EntityStat, models.EntityReply} {
		for _, role := range []models.Role{models.RoleMember, models.RoleModerator, models.RoleAdmin} {
			err := Check(Actor{ID: uuid.New(), Role: role}, ActionCreate, Resource{Entity: entity, GardenID: &garden})
			assert.True(t, apperr.Is(err, apperr.Forbidden), "%s/%s", entity, role)
		}
	}
}

func TestGardenCoordinatorMayUpdateButNotDelete(t *testing.T) {
	garden := uuid.New()
	res := Resource{Entity: models.EntityGarden, OwnerID: uuid.New(), GardenID: &garden}
	coord := Actor{ID: uuid.New(), Role: models.RoleMember, GardenRole: models.GardenRoleCoordinator}

	assert.NoError(t, Check(coord, ActionUpdate, res))
	assert.True(t, apperr.Is(Check(coord, ActionDelete, res), apperr.Forbidden))
}

func TestPinIsModeratorsOnly(t *testing.T) {
	author := uuid.New()
	res := Resource{Entity: models.EntityDiscussion, OwnerID: author}
	assert.True(t, apperr.Is(Check(Actor{ID: author, Role: models.RoleMember}, ActionPin, res), apperr.Forbidden))
	assert.NoError(t, Check(Actor{ID: uuid.New(), Role: models.RoleModerator}, ActionPin, res))
}

func TestUnknownActionIsForbidden(t *testing.T) {
	err := Check(Actor{ID: uuid.New(), Role: models.RoleAdmin}, ActionPin, Resource{Entity: models.EntityStat})
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestAuthorizeReadsMembershipEveryCall(t *testing.T) {
	user := models.Identity{ID: uuid.New(), Role: models.RoleMember}
	garden := uuid.New()
	members := &fakeMembers{roles: map[[2]uuid.UUID]models.GardenRole{
		{user.ID, garden}: models.GardenRoleMember,
	}}
	res := Resource{Entity: models.EntityDiscussion, GardenID: &garden}
	ctx := context.Background()

	require.NoError(t, Authorize(ctx, members, user, ActionCreate, res))

	delete(members.roles, [2]uuid.UUID{user.ID, garden})
	err := Authorize(ctx, members, user, ActionCreate, res)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, 2, members.calls)
}

func TestAuthorizeSkipsLookupForElevatedAndUnscoped(t *testing.T) {
	members := &fakeMembers{}
	garden := uuid.New()
	mod := models.Identity{ID: uuid.New(), Role: models.RoleModerator}

	require.NoError(t, Authorize(context.Background(), members, mod, ActionDelete,
		Resource{Entity: models.EntityDiscussion, OwnerID: uuid.New(), GardenID: &garden}))
	require.NoError(t, Authorize(context.Background(), members, models.Identity{ID: uuid.New(), Role: models.RoleMember}, ActionCreate,
		Resource{Entity: models.EntityResource}))
	assert.Zero(t, members.calls)
}

func TestAuthorizePropagatesLookupError(t *testing.T) {
	boom := errors.New("pool exhausted")
	garden := uuid.New()
	err := Authorize(context.Background(), &fakeMembers{err: boom}, models.Identity{ID: uuid.New(), Role: models.RoleMember},
		ActionCreate, Resource{Entity: models.EntityStat, GardenID: &garden})
	assert.ErrorIs(t, err, boom)
}
