package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type events struct{ st *state }

func (r events) Create(_ context.Context, e *models.Event) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	e.ID = uuid.New()
	e.CreatedAt = r.st.now()
	e.UpdatedAt = e.CreatedAt
	t.events[e.ID] = *e
	return nil
}

func (r events) Get(_ context.Context, id uuid.UUID, _ ...store.Option) (*models.Event, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	e, ok := t.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (r events) List(_ context.Context, f store.ListFilter) ([]models.Event, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.Event
	for _, e := range t.events {
		switch {
		case !sameGarden(e.GardenID, f.GardenID),
			f.AuthorID != nil && e.CreatedBy != *f.AuthorID,
			f.PublicOnly && !e.IsPublic,
			!e.IsPublic && !t.visibleTo(f.VisibleTo, e.CreatedBy, e.GardenID),
			f.Search != "" && !contains(e.Title, f.Search):
			continue
		}
		list = append(list, e)
	}
	sortBy(list, func(a, b models.Event) bool { return a.StartDate.Before(b.StartDate) })
	return page(list, f), nil
}

func (r events) Update(_ context.Context, id uuid.UUID, p store.Patch) (*models.Event, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	return update(r.st, t.events, id, p, setEvent, nil,
		func(e *models.Event, at time.Time) { e.UpdatedAt = at })
}

// Delete removes the event and its RSVPs.
func (r events) Delete(_ context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	t, err := r.st.lock()
	if err != nil {
		return lifecycle.HardDelete, err
	}
	defer r.st.unlock()
	mode, err := remove(t.events, id, models.EntityEvent, nil)
	if err != nil {
		return mode, err
	}
	for k := range t.attendees {
		if k.a == id {
			delete(t.attendees, k)
		}
	}
	return mode, nil
}

type attendees struct{ st *state }

func (r attendees) Get(_ context.Context, eventID, userID uuid.UUID) (*models.EventAttendee, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	a, ok := t.attendees[pair{eventID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (r attendees) CountAttending(_ context.Context, eventID uuid.UUID) (int, error) {
	t, err := r.st.lock()
	if err != nil {
		return 0, err
	}
	defer r.st.unlock()
	n := 0
	for k, a := range t.attendees {
		if k.a == eventID && a.RSVPStatus == models.RSVPAttending {
			n++
		}
	}
	return n, nil
}

func (r attendees) Upsert(_ context.Context, a *models.EventAttendee) error {
	t, err := r.st.lock()
	if err != nil {
		return err
	}
	defer r.st.unlock()
	if _, ok := t.events[a.EventID]; !ok {
		return store.ErrNotFound
	}
	a.RSVPDate = r.st.now()
	t.attendees[pair{a.EventID, a.UserID}] = *a
	return nil
}

func (r attendees) List(_ context.Context, eventID uuid.UUID) ([]models.EventAttendee, error) {
	t, err := r.st.lock()
	if err != nil {
		return nil, err
	}
	defer r.st.unlock()
	var list []models.EventAttendee
	for k, a := range t.attendees {
		if k.a == eventID {
			list = append(list, a)
		}
	}
	sortBy(list, func(a, b models.EventAttendee) bool { return a.RSVPDate.Before(b.RSVPDate) })
	return list, nil
}
