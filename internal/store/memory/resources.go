package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type resources struct{ st *state }

func (r resources) Create(_ context.Context, res *models.Resource) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	if res.Tags == nil {
		res.Tags = []string{}
	}
	res.ID = uuid.New()
	res.CreatedAt = r.st.now()
	res.UpdatedAt = res.CreatedAt
	t.resources[res.ID] = *res
	return nil
}

func (r resources) Get(_ context.Context, id uuid.UUID) (*models.Resource, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	res, ok := t.resources[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &res, nil
}

func (r resources) List(_ context.Context, f store.ListFilter) ([]models.Resource, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Resource
	for _, res := range t.resources {
		switch {
		case f.PublishedOnly && !res.IsPublished,
			!res.IsPublished && !t.visibleTo(f.VisibleTo, res.AuthorID, nil),
			f.AuthorID != nil && res.AuthorID != *f.AuthorID,
			f.Category != "" && res.Category != f.Category,
			f.Search != "" && !contains(res.Title, f.Search) && !slices.Contains(res.Tags, f.Search):
			continue
		}
		list = append(list, res)
	}
	sortBy(list, func(a, b models.Resource) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(list, f), nil
}

func (r resources) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Resource, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.resources, id, p, setResource, nil,
		func(res *models.Resource, at time.Time) { res.UpdatedAt = at })
}

// Delete removes the resource and its guides.
func (r resources) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	mode, err := remove(t.resources, id, models.EntityResource, nil)
	if err != nil {
		return mode, err
	}
	for gid, g := range t.guides {
		if g.ResourceID == id {
			delete(t.guides, gid)
		}
	}
	return mode, nil
}

type guides struct{ st *state }

func (r guides) Create(_ context.Context, g *models.Guide) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	if _, ok := t.resources[g.ResourceID]; !ok {
		return store.ErrNotFound
	}
	g.ID = uuid.New()
	g.CreatedAt = r.st.now()
	g.UpdatedAt = g.CreatedAt
	t.guides[g.ID] = *g
	return nil
}

func (r guides) Get(_ context.Context, id uuid.UUID) (*models.Guide, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	g, ok := t.guides[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (r guides) ListByResource(_ context.Context, resourceID uuid.UUID) ([]models.Guide, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Guide
	for _, g := range t.guides {
		if g.ResourceID == resourceID {
			list = append(list, g)
		}
	}
	sortBy(list, func(a, b models.Guide) bool {
		if a.StepNumber != b.StepNumber {
			return a.StepNumber < b.StepNumber
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return list, nil
}

func (r guides) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Guide, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.guides, id, p, setGuide, nil,
		func(g *models.Guide, at time.Time) { g.UpdatedAt = at })
}

func (r guides) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	return remove(t.guides, id, models.EntityGuide, nil)
}
