package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type discussions struct{ st *state }

func (r discussions) Create(_ context.Context, d *models.Discussion) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	d.ID = uuid.New()
	d.IsActive = true
	d.IsPinned = false
	if d.Category == "" {
		d.Category = "general"
	}
	d.CreatedAt = r.st.now()
	d.UpdatedAt = d.CreatedAt
	t.discussions[d.ID] = *d
	return nil
}

func (r discussions) Get(_ context.Context, id uuid.UUID, opts ...store.Option) (*models.Discussion, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	d, ok := t.discussions[id]
	if !ok || (!d.IsActive && !store.Apply(opts).IncludeInactive) {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (r discussions) List(_ context.Context, f store.ListFilter, opts ...store.Option) ([]models.Discussion, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	all := store.Apply(opts).IncludeInactive
	var list []models.Discussion
	for _, d := range t.discussions {
		switch {
		case !d.IsActive && !all,
			!sameGarden(d.GardenID, f.GardenID),
			f.AuthorID != nil && d.AuthorID != *f.AuthorID,
			f.Category != "" && d.Category != f.Category,
			f.Search != "" && !contains(d.Title, f.Search) && !contains(d.Content, f.Search):
			continue
		}
		list = append(list, d)
	}
	sortBy(list, func(a, b models.Discussion) bool {
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(list, f), nil
}

func (r discussions) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Discussion, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.discussions, id, p, setDiscussion,
		func(d models.Discussion) bool { return d.IsActive },
		func(d *models.Discussion, at time.Time) { d.UpdatedAt = at })
}

func (r discussions) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.SoftDelete, err
	}
	defer r.st.unlock()
	return remove(t.discussions, id, models.EntityDiscussion, func(d *models.Discussion) bool {
		if !d.IsActive {
			return false
		}
		d.IsActive = false
		d.UpdatedAt = r.st.now()
		return true
	})
}

type replies struct{ st *state }

func (r replies) Create(_ context.Context, rp *models.DiscussionReply) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	if _, ok := t.discussions[rp.DiscussionID]; !ok {
		return store.ErrNotFound
	}
	rp.ID = uuid.New()
	rp.IsActive = true
	rp.CreatedAt = r.st.now()
	rp.UpdatedAt = rp.CreatedAt
	t.replies[rp.ID] = *rp
	return nil
}

func (r replies) Get(_ context.Context, id uuid.UUID, opts ...store.Option) (*models.DiscussionReply, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	rp, ok := t.replies[id]
	if !ok || (!rp.IsActive && !store.Apply(opts).IncludeInactive) {
		return nil, store.ErrNotFound
	}
	return &rp, nil
}

func (r replies) ListByDiscussion(_ context.Context, discussionID uuid.UUID, opts ...store.Option) ([]models.DiscussionReply, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	all := store.Apply(opts).IncludeInactive
	var list []models.DiscussionReply
	for _, rp := range t.replies {
		if rp.DiscussionID == discussionID && (rp.IsActive || all) {
			list = append(list, rp)
		}
	}
	sortBy(list, func(a, b models.DiscussionReply) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return list, nil
}

func (r replies) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.DiscussionReply, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.replies, id, p, setReply,
		func(rp models.DiscussionReply) bool { return rp.IsActive },
		func(rp *models.DiscussionReply, at time.Time) { rp.UpdatedAt = at })
}

func (r replies) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.SoftDelete, err
	}
	defer r.st.unlock()
	return remove(t.replies, id, models.EntityReply, func(rp *models.DiscussionReply) bool {
		if !rp.IsActive {
			return false
		}
		rp.IsActive = false
		rp.UpdatedAt = r.st.now()
		return true
	})
}
