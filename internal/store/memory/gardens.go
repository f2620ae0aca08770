package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type gardens struct{ st *state }

func (r gardens) Create(_ context.Context, g *models.Garden) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	g.ID = uuid.New()
	g.IsActive = true
	g.CreatedAt = r.st.now()
	g.UpdatedAt = g.CreatedAt
	t.gardens[g.ID] = *g
	return nil
}

func (r gardens) Get(_ context.Context, id uuid.UUID, opts ...store.Option) (*models.Garden, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	g, ok := t.gardens[id]
	if !ok || (!g.IsActive && !store.Apply(opts).IncludeInactive) {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (r gardens) List(_ context.Context, f store.ListFilter, opts ...store.Option) ([]models.Garden, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	all := store.Apply(opts).IncludeInactive
	var list []models.Garden
	for _, g := range t.gardens {
		switch {
		case !g.IsActive && !all,
			f.Region != "" && g.Region != f.Region,
			f.AuthorID != nil && g.CreatedBy != *f.AuthorID,
			f.Search != "" && !contains(g.Name, f.Search) && !contains(g.Location, f.Search):
			continue
		}
		list = append(list, g)
	}
	sortBy(list, func(a, b models.Garden) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(list, f), nil
}

func (r gardens) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Garden, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.gardens, id, p, setGarden,
		func(g models.Garden) bool { return g.IsActive },
		func(g *models.Garden, at time.Time) { g.UpdatedAt = at })
}

func (r gardens) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.SoftDelete, err
	}
	defer r.st.unlock()
	return remove(t.gardens, id, models.EntityGarden, func(g *models.Garden) bool {
		if !g.IsActive {
			return false
		}
		g.IsActive = false
		g.UpdatedAt = r.st.now()
		return true
	})
}

type memberships struct{ st *state }

func (r memberships) Get(_ context.Context, userID, gardenID uuid.UUID) (*models.Membership, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	m, ok := t.memberships[pair{userID, gardenID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (r memberships) ActiveRole(_ context.Context, userID, gardenID uuid.UUID) (models.GardenRole, error) {
	t, err := r.st.lock()
	if err != nil {
		return "", err
	}
	defer r.st.unlock()
	m, ok := t.memberships[pair{userID, gardenID}]
	if !ok || !m.IsActive {
		return "", nil
	}
	return m.Role, nil
}

func (r memberships) CountActive(_ context.Context, gardenID uuid.UUID) (int, error) {
	t, err := r.st.lock()
	if err != nil {
		return 0, err
	}
	defer r.st.unlock()
	n := 0
	for k, m := range t.memberships {
		if k.b == gardenID && m.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memberships) Insert(_ context.Context, m *models.Membership) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	key := pair{m.UserID, m.GardenID}
	if _, ok := t.memberships[key]; ok {
		return store.ErrConflict
	}
	m.ID = uuid.New()
	m.IsActive = true
	m.JoinDate = r.st.now()
	m.UpdatedAt = m.JoinDate
	t.memberships[key] = *m
	return nil
}

func (r memberships) Reactivate(_ context.Context, userID, gardenID uuid.UUID) (*models.Membership, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	key := pair{userID, gardenID}
	m, ok := t.memberships[key]
	if !ok || m.IsActive {
		return nil, store.ErrNotFound
	}
	m.IsActive = true
	m.Role = models.GardenRoleMember
	m.JoinDate = r.st.now()
	m.UpdatedAt = m.JoinDate
	t.memberships[key] = m
	return &m, nil
}

func (r memberships) Deactivate(_ context.Context, userID, gardenID uuid.UUID) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	key := pair{userID, gardenID}
	m, ok := t.memberships[key]
	if !ok || !m.IsActive {
		return store.ErrNotFound
	}
	m.IsActive = false
	m.UpdatedAt = r.st.now()
	t.memberships[key] = m
	return nil
}

func (r memberships) ListActive(_ context.Context, gardenID uuid.UUID) ([]models.Member, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Member
	for k, m := range t.memberships {
		if k.b != gardenID || !m.IsActive {
			continue
		}
		list = append(list, models.Member{
			UserID:   m.UserID,
			Username: t.users[m.UserID].Username,
			Role:     m.Role,
			JoinDate: m.JoinDate,
		})
	}
	sortBy(list, func(a, b models.Member) bool {
		if (a.Role == models.GardenRoleCoordinator) != (b.Role == models.GardenRoleCoordinator) {
			return a.Role == models.GardenRoleCoordinator
		}
		return a.JoinDate.Before(b.JoinDate)
	})
	return list, nil
}
