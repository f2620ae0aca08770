package resources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/internal/store/memory"
)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, zap.NewNop()), st
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateNormalizesTags(t *testing.T) {
	svc, st := setup(t)
	alice := st.SeedUser("alice", models.RoleMember)

	r, err := svc.Create(context.Background(), alice, CreateInput{
		Title: "Composting 101", Content: "Greens and browns", Category: "soil",
		Tags: []string{" Compost", "compost", "", "Soil"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"compost", "soil"}, r.Tags)
	assert.True(t, r.IsPublished)
}

func TestListHidesDraftsFromAnonymous(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)
	_, err := svc.Create(ctx, alice, CreateInput{Title: "Live", Content: "c", Category: "soil"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, CreateInput{Title: "Draft", Content: "c", Category: "soil", IsPublished: boolPtr(false)})
	require.NoError(t, err)

	anon, err := svc.List(ctx, store.ListFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, anon, 1)

	all, err := svc.List(ctx, store.ListFilter{}, &alice)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDraftsReadAsMissing(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	draft, err := svc.Create(ctx, alice, CreateInput{Title: "Draft", Content: "c", Category: "soil", IsPublished: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.AddGuide(ctx, alice, draft.ID, GuideInput{StepNumber: 1, Title: "Dig", Content: "deep"})
	require.NoError(t, err)

	for _, who := range []*models.Identity{nil, &bob} {
		_, err := svc.Get(ctx, who, draft.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
		_, err = svc.Guides(ctx, who, draft.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
		list, err := svc.List(ctx, store.ListFilter{}, who)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
	for _, who := range []*models.Identity{&alice, &moderator} {
		_, err := svc.Get(ctx, who, draft.ID)
		require.NoError(t, err)
		guides, err := svc.Guides(ctx, who, draft.ID)
		require.NoError(t, err)
		assert.Len(t, guides, 1)
		list, err := svc.List(ctx, store.ListFilter{}, who)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
}

func TestResourcePermissions(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	r, err := svc.Create(ctx, alice, CreateInput{Title: "Mulch", Content: "c", Category: "soil"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, r.ID, UpdateInput{Title: strPtr("mine now")})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	_, err = svc.Update(ctx, alice, r.ID, UpdateInput{})
	assert.Equal(t, apperr.NoFieldsToUpdate, apperr.KindOf(err))

	updated, err := svc.Update(ctx, moderator, r.ID, UpdateInput{Tags: &[]string{"Mulch"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mulch"}, updated.Tags)

	_, err = svc.Delete(ctx, bob, r.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	_, err = svc.Delete(ctx, alice, r.ID)
	require.NoError(t, err)
}

func TestGuidesBelongToResourceAuthor(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)
	bob := st.SeedUser("bob", models.RoleMember)
	admin := st.SeedUser("admin", models.RoleAdmin)
	r, err := svc.Create(ctx, alice, CreateInput{Title: "Raised beds", Content: "c", Category: "build"})
	require.NoError(t, err)

	_, err = svc.AddGuide(ctx, bob, r.ID, GuideInput{StepNumber: 1, Title: "Cut", Content: "wood"})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	_, err = svc.AddGuide(ctx, alice, r.ID, GuideInput{StepNumber: 0, Title: "Cut", Content: "wood"})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	second, err := svc.AddGuide(ctx, alice, r.ID, GuideInput{StepNumber: 2, Title: "Fill", Content: "soil"})
	require.NoError(t, err)
	first, err := svc.AddGuide(ctx, alice, r.ID, GuideInput{StepNumber: 1, Title: "Cut", Content: "wood"})
	require.NoError(t, err)

	list, err := svc.Guides(ctx, &bob, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = svc.UpdateGuide(ctx, bob, first.ID, GuideUpdate{Title: strPtr("nope")})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	g, err := svc.UpdateGuide(ctx, alice, first.ID, GuideUpdate{Title: strPtr("Measure and cut")})
	require.NoError(t, err)
	assert.Equal(t, "Measure and cut", g.Title)

	_, err = svc.DeleteGuide(ctx, admin, second.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, alice, r.ID)
	require.NoError(t, err)
	_, err = svc.Guides(ctx, &bob, r.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = svc.UpdateGuide(ctx, alice, first.ID, GuideUpdate{Title: strPtr("gone")})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
