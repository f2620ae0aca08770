package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type users struct{ st *state }

func (r users) Create(_ context.Context, u *models.User) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	for _, other := range t.users {
		if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.IsActive = true
	u.CreatedAt = r.st.now()
	u.UpdatedAt = u.CreatedAt
	t.users[u.ID] = *u
	return nil
}

func (r users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	u, ok := t.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r users) GetByLogin(_ context.Context, login string) (*models.User, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	for _, u := range t.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) List(_ context.Context, f store.ListFilter) ([]models.User, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.User
	for _, u := range t.users {
		if f.Search != "" && !contains(u.Username, f.Search) && !contains(u.Email, f.Search) {
			continue
		}
		list = append(list, u)
	}
	sortBy(list, func(a, b models.User) bool { return a.Username < b.Username })
	return page(list, f), nil
}

func (r users) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.User, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	if p.Has("email") {
		for _, f := range p.Fields() {
			if f.Column != "email" {
				continue
			}
			email, _ := f.Value.(string)
			for _, other := range t.users {
				if other.ID != id && strings.EqualFold(other.Email, email) {
					return nil, store.ErrConflict
				}
			}
		}
	}
	return update(r.st, t.users, id, p, setUser, nil, func(u *models.User, at time.Time) { u.UpdatedAt = at })
}

func (r users) TouchLogin(_ context.Context, id uuid.UUID) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	u, ok := t.users[id]
	if !ok {
		return nil
	}
	at := r.st.now()
	u.LastLoginAt = &at
	t.users[id] = u
	return nil
}

// Delete removes the user along with memberships and RSVPs, mirroring ON DELETE CASCADE.
func (r users) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	mode, err := remove(t.users, id, models.EntityUser, nil)
	if err != nil {
		return mode, err
	}
	for k := range t.memberships {
		if k.a == id {
			delete(t.memberships, k)
		}
	}
	for k := range t.attendees {
		if k.b == id {
			delete(t.attendees, k)
		}
	}
	return mode, nil
}
