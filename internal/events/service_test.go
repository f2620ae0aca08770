package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
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

func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func newEvent(t *testing.T, svc *Service, who models.Identity, in CreateInput) *models.Event {
	t.Helper()
	if in.Title == "" {
		in.Title = "Spring workday"
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now().Add(24 * time.Hour)
	}
	e, err := svc.Create(context.Background(), who, in)
	require.NoError(t, err)
	return e
}

func TestCreateValidation(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alice := st.SeedUser("alice", models.RoleMember)
	start := time.Now().Add(time.Hour)
	before := start.Add(-time.Minute)

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"no title", CreateInput{StartDate: start}},
		{"no start", CreateInput{Title: "x"}},
		{"end before start", CreateInput{Title: "x", StartDate: start, EndDate: &before}},
		{"zero capacity", CreateInput{Title: "x", StartDate: start, MaxAttendees: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, tt.in)
			assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
		})
	}
}

func TestCreateGardenEventNeedsMembership(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)

	_, err := svc.Create(ctx, admin, CreateInput{Title: "x", StartDate: time.Now(), GardenID: &gardenID})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	e := newEvent(t, svc, owner, CreateInput{GardenID: &gardenID})
	assert.True(t, e.IsPublic)
	assert.Nil(t, e.MaxAttendees)
}

func TestRSVPUpsertKeepsOneRow(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	host := st.SeedUser("host", models.RoleMember)
	guest := st.SeedUser("guest", models.RoleMember)
	e := newEvent(t, svc, host, CreateInput{})

	for _, status := range []models.RSVPStatus{models.RSVPAttending, models.RSVPMaybe, models.RSVPDeclined, models.RSVPAttending} {
		a, err := svc.RSVP(ctx, guest, e.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, a.RSVPStatus)
	}
	list, err := svc.Attendees(ctx, &guest, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RSVPAttending, list[0].RSVPStatus)
}

func TestRSVPInvalidStatus(t *testing.T) {
	svc, st := setup(t)
	host := st.SeedUser("host", models.RoleMember)
	e := newEvent(t, svc, host, CreateInput{})

	_, err := svc.RSVP(context.Background(), host, e.ID, "interested")
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
	_, err = svc.RSVP(context.Background(), host, uuid.New(), models.RSVPAttending)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestRSVPFullEventAndDeclineFreesSlot(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	host := st.SeedUser("host", models.RoleMember)
	u1 := st.SeedUser("u1", models.RoleMember)
	u2 := st.SeedUser("u2", models.RoleMember)
	u3 := st.SeedUser("u3", models.RoleAdmin)
	e := newEvent(t, svc, host, CreateInput{MaxAttendees: intPtr(2)})

	_, err := svc.RSVP(ctx, u1, e.ID, models.RSVPAttending)
	require.NoError(t, err)
	_, err = svc.RSVP(ctx, u2, e.ID, models.RSVPAttending)
	require.NoError(t, err)

	_, err = svc.RSVP(ctx, u3, e.ID, models.RSVPAttending)
	assert.Equal(t, apperr.EventFull, apperr.KindOf(err))

	// Other statuses are never capacity-checked.
	_, err = svc.RSVP(ctx, u3, e.ID, models.RSVPMaybe)
	require.NoError(t, err)
	// Re-affirming attending does not count against the limit.
	_, err = svc.RSVP(ctx, u1, e.ID, models.RSVPAttending)
	require.NoError(t, err)

	_, err = svc.RSVP(ctx, u2, e.ID, models.RSVPDeclined)
	require.NoError(t, err)
	_, err = svc.RSVP(ctx, u3, e.ID, models.RSVPAttending)
	require.NoError(t, err)

	n, err := st.Attendees().CountAttending(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConcurrentRSVPsRespectLimit(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	host := st.SeedUser("host", models.RoleMember)
	e := newEvent(t, svc, host, CreateInput{MaxAttendees: intPtr(3)})

	const guests = 15
	ids := make([]models.Identity, guests)
	for i := range ids {
		ids[i] = st.SeedUser("guest"+uuid.NewString()[:8], models.RoleMember)
	}
	var wg sync.WaitGroup
	for _, who := range ids {
		wg.Add(1)
		go func(who models.Identity) {
			defer wg.Done()
			_, _ = svc.RSVP(ctx, who, e.ID, models.RSVPAttending)
		}(who)
	}
	wg.Wait()

	n, err := st.Attendees().CountAttending(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRSVPPrivateEvents(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	member := st.SeedUser("member", models.RoleMember)
	outsider := st.SeedUser("outsider", models.RoleMember)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(member, gardenID, models.GardenRoleMember)

	gardenOnly := newEvent(t, svc, owner, CreateInput{GardenID: &gardenID, IsPublic: boolPtr(false)})
	_, err := svc.RSVP(ctx, member, gardenOnly.ID, models.RSVPAttending)
	require.NoError(t, err)
	_, err = svc.RSVP(ctx, outsider, gardenOnly.ID, models.RSVPAttending)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	personal := newEvent(t, svc, owner, CreateInput{IsPublic: boolPtr(false)})
	_, err = svc.RSVP(ctx, owner, personal.ID, models.RSVPAttending)
	require.NoError(t, err)
	_, err = svc.RSVP(ctx, member, personal.ID, models.RSVPAttending)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestListHidesPrivateEventsFromAnonymous(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	host := st.SeedUser("host", models.RoleMember)
	newEvent(t, svc, host, CreateInput{Title: "open"})
	newEvent(t, svc, host, CreateInput{Title: "closed", IsPublic: boolPtr(false)})

	anon, err := svc.List(ctx, store.ListFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "open", anon[0].Title)

	all, err := svc.List(ctx, store.ListFilter{}, &host)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPrivateEventsReadAsMissing(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	member := st.SeedUser("member", models.RoleMember)
	outsider := st.SeedUser("outsider", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(member, gardenID, models.GardenRoleMember)

	e := newEvent(t, svc, owner, CreateInput{GardenID: &gardenID, IsPublic: boolPtr(false)})
	_, err := svc.RSVP(ctx, member, e.ID, models.RSVPAttending)
	require.NoError(t, err)

	for _, who := range []*models.Identity{nil, &outsider, &moderator} {
		_, err := svc.Get(ctx, who, e.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
		_, err = svc.Attendees(ctx, who, e.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	}
	for _, who := range []*models.Identity{&owner, &member, &admin} {
		got, err := svc.Get(ctx, who, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
		list, err := svc.Attendees(ctx, who, e.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
}

func TestListShowsPrivateEventsOnlyToThoseWhoMaySeeThem(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	member := st.SeedUser("member", models.RoleMember)
	outsider := st.SeedUser("outsider", models.RoleMember)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)
	st.SeedMember(member, gardenID, models.GardenRoleMember)

	newEvent(t, svc, owner, CreateInput{Title: "open"})
	newEvent(t, svc, owner, CreateInput{Title: "garden only", GardenID: &gardenID, IsPublic: boolPtr(false)})
	newEvent(t, svc, member, CreateInput{Title: "personal", IsPublic: boolPtr(false)})

	titles := func(who *models.Identity) []string {
		t.Helper()
		list, err := svc.List(ctx, store.ListFilter{}, who)
		require.NoError(t, err)
		var out []string
		for _, e := range list {
			out = append(out, e.Title)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"open"}, titles(&outsider))
	assert.ElementsMatch(t, []string{"open", "garden only"}, titles(&owner))
	assert.ElementsMatch(t, []string{"open", "garden only", "personal"}, titles(&member))
	assert.ElementsMatch(t, []string{"open", "garden only", "personal"}, titles(&admin))
}

func TestUpdateAndDeleteAreAdminElevatedOnly(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := st.SeedUser("owner", models.RoleMember)
	moderator := st.SeedUser("mod", models.RoleModerator)
	admin := st.SeedUser("admin", models.RoleAdmin)
	gardenID := st.SeedGarden(owner, 10)
	e := newEvent(t, svc, owner, CreateInput{GardenID: &gardenID})

	_, err := svc.Update(ctx, moderator, e.ID, UpdateInput{Title: strPtr("mod edit")})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	_, err = svc.Delete(ctx, moderator, e.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	updated, err := svc.Update(ctx, admin, e.ID, UpdateInput{MaxAttendees: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, *updated.MaxAttendees)

	_, err = svc.Update(ctx, owner, e.ID, UpdateInput{MaxAttendees: intPtr(-2)})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = svc.RSVP(ctx, owner, e.ID, models.RSVPAttending)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, owner, e.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, &owner, e.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	n, err := st.Attendees().CountAttending(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateEndBeforeStart(t *testing.T) {
	svc, st := setup(t)
	host := st.SeedUser("host", models.RoleMember)
	e := newEvent(t, svc, host, CreateInput{})
	end := e.StartDate.Add(-time.Hour)

	_, err := svc.Update(context.Background(), host, e.ID, UpdateInput{EndDate: &end})
	assert.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
}
