package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type photos struct{ st *state }

func (r photos) Create(_ context.Context, p *models.Photo) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	p.ID = uuid.New()
	p.CreatedAt = r.st.now()
	p.UpdatedAt = p.CreatedAt
	t.photos[p.ID] = *p
	return nil
}

func (r photos) Get(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	p, ok := t.photos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r photos) List(_ context.Context, f store.ListFilter) ([]models.Photo, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Photo
	for _, p := range t.photos {
		switch {
		case !sameGarden(p.GardenID, f.GardenID),
			f.AuthorID != nil && p.UploadedBy != *f.AuthorID,
			f.PublicOnly && !p.IsPublic,
			!p.IsPublic && !t.visibleTo(f.VisibleTo, p.UploadedBy, p.GardenID):
			continue
		}
		list = append(list, p)
	}
	sortBy(list, func(a, b models.Photo) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(list, f), nil
}

func (r photos) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Photo, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.photos, id, p, setPhoto, nil,
		func(ph *models.Photo, at time.Time) { ph.UpdatedAt = at })
}

func (r photos) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	return remove(t.photos, id, models.EntityPhoto, nil)
}
