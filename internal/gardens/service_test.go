package gardens

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/internal/store/memory"
)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, zap.NewNop()), st
}

func intPtr(n int) *int { return &n }

func TestCreateMakesCreatorCoordinator(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)

	g, err := svc.Create(ctx, alice, CreateInput{Name: "Rooftop", Location: "Downtown"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMaxMembers, g.MaxMembers)
	assert.True(t, g.IsActive)

	role, err := st.Memberships().ActiveRole(ctx, alice.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GardenRoleCoordinator, role)
}

func TestCreateValidation(t *testing.T) {
	svc, st := setup(t)
	alice := st.SeedUser("alice", models.RoleMember)

	_, err := svc.Create(context.Background(), alice, CreateInput{Name: " ", Location: "Downtown"})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), alice, CreateInput{Name: "Rooftop", Location: "Downtown", MaxMembers: intPtr(0)})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
}

func TestJoinIsIdempotentAndReactivates(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)
	gardenID := st.SeedGarden(owner, 10)

	first, err := svc.Join(ctx, bob, gardenID)
	require.NoError(t, err)
	again, err := svc.Join(ctx, bob, gardenID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.NoError(t, svc.Leave(ctx, bob, gardenID))
	rejoined, err := svc.Join(ctx, bob, gardenID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, rejoined.ID, "reactivates the same row")
	assert.True(t, rejoined.IsActive)
	assert.True(t, rejoined.JoinDate.After(first.JoinDate))

	members, err := svc.Members(ctx, gardenID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestJoinMissingOrDeletedGarden(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)

	_, err := svc.Join(ctx, bob, uuid.New())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	gardenID := st.SeedGarden(owner, 10)
	_, err = svc.Delete(ctx, owner, gardenID)
	require.NoError(t, err)
	_, err = svc.Join(ctx, bob, gardenID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestJoinFullGarden(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	gardenID := st.SeedGarden(owner, 2)

	second := st.SeedUser("second", models.RoleMember)
	_, err := svc.Join(ctx, second, gardenID)
	require.NoError(t, err)

	third := st.SeedUser("third", models.RoleAdmin)
	_, err = svc.Join(ctx, third, gardenID)
	assert.Equal(t, apperr.GardenFull, apperr.KindOf(err))

	n, err := st.Memberships().CountActive(ctx, gardenID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A leave frees the slot.
	require.NoError(t, svc.Leave(ctx, second, gardenID))
	_, err = svc.Join(ctx, third, gardenID)
	assert.NoError(t, err)
}

func TestConcurrentJoinsRespectLimit(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	gardenID := st.SeedGarden(owner, 5)

	const joiners = 20
	users := make([]models.Identity, joiners)
	for i := range users {
		users[i] = st.SeedUser("user"+uuid.NewString()[:8], models.RoleMember)
	}

	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, users[i], gardenID)
		}(i)
	}
	wg.Wait()

	admitted, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case apperr.Is(err, apperr.GardenFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 4, admitted)
	assert.Equal(t, joiners-4, full)

	n, err := st.Memberships().CountActive(ctx, gardenID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestLeaveWithoutMembership(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)
	gardenID := st.SeedGarden(owner, 10)

	err := svc.Leave(ctx, bob, gardenID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUpdatePermissions(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	coordinator := st.SeedUser("coord", models.RoleMember)
	member := st.SeedUser("member", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(coordinator, gardenID, models.GardenRoleCoordinator)
	st.SeedMember(member, gardenID, models.GardenRoleMember)

	name := "Renamed"
	tests := []struct {
		name string
		who  models.Identity
		kind apperr.Kind
	}{
		{"owner", owner, ""},
		{"coordinator", coordinator, ""},
		{"plain member", member, apperr.Forbidden},
		{"moderator", moderator, apperr.Forbidden},
		{"admin", admin, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.who, gardenID, UpdateInput{Name: &name})
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestUpdateMaxMembers(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(st.SeedUser("b", models.RoleMember), gardenID, models.GardenRoleMember)
	st.SeedMember(st.SeedUser("c", models.RoleMember), gardenID, models.GardenRoleMember)

	_, err := svc.Update(ctx, owner, gardenID, UpdateInput{MaxMembers: intPtr(-1)})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = svc.Update(ctx, owner, gardenID, UpdateInput{MaxMembers: intPtr(2)})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err), "below the 3 active members")

	g, err := svc.Update(ctx, owner, gardenID, UpdateInput{MaxMembers: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, g.MaxMembers)
}

func TestUpdateWithoutFields(t *testing.T) {
	svc, st := setup(t)
	owner := st.SeedUser("owner", models.RoleMember)
	gardenID := st.SeedGarden(owner, 10)

	_, err := svc.Update(context.Background(), owner, gardenID, UpdateInput{})
	assert.Equal(t, apperr.NoFieldsToUpdate, apperr.KindOf(err))
}

func TestDeleteOwnerOrAdminOnly(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	coordinator := st.SeedUser("coord", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(coordinator, gardenID, models.GardenRoleCoordinator)

	_, err := svc.Delete(ctx, coordinator, gardenID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	_, err = svc.Delete(ctx, moderator, gardenID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	mode, err := svc.Delete(ctx, admin, gardenID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.SoftDelete, mode)

	_, err = svc.Get(ctx, gardenID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDatabaseUnavailable(t *testing.T) {
	svc, st := setup(t)
	alice := st.SeedUser("alice", models.RoleMember)
	gardenID := st.SeedGarden(alice, 10)
	st.FailWith(apperr.New(apperr.DatabaseUnavailable, "database unavailable, retry later"))

	_, err := svc.Join(context.Background(), alice, gardenID)
	assert.Equal(t, apperr.DatabaseUnavailable, apperr.KindOf(err))
	_, err = svc.List(context.Background(), store.ListFilter{})
	assert.Equal(t, apperr.DatabaseUnavailable, apperr.KindOf(err))
}
