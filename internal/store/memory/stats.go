package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type stats struct{ st *state }

func (r stats) Create(_ context.Context, s *models.Stat) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	s.ID = uuid.New()
	now := r.st.now()
	if s.RecordedAt.IsZero() {
		s.RecordedAt = now
	}
	s.UpdatedAt = now
	t.stats[s.ID] = *s
	return nil
}

func (r stats) Get(_ context.Context, id uuid.UUID) (*models.Stat, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	s, ok := t.stats[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (r stats) List(_ context.Context, f store.ListFilter) ([]models.Stat, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Stat
	for _, s := range t.stats {
		switch {
		case f.GardenID != nil && s.GardenID != *f.GardenID,
			f.StatType != "" && s.StatType != f.StatType,
			f.AuthorID != nil && s.RecordedBy != *f.AuthorID:
			continue
		}
		list = append(list, s)
	}
	sortBy(list, func(a, b models.Stat) bool { return a.RecordedAt.After(b.RecordedAt) })
	return page(list, f), nil
}

func (r stats) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Stat, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.stats, id, p, setStat, nil,
		func(s *models.Stat, at time.Time) { s.UpdatedAt = at })
}

func (r stats) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	return remove(t.stats, id, models.EntityStat, nil)
}
