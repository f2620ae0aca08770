package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const eventColumns = `id, title, COALESCE(description,''), COALESCE(location,''), start_date, end_date,
	garden_id, created_by, max_attendees, is_public, created_at, updated_at`

var eventUpdatable = map[string]bool{
	"title": true, "description": true, "location": true, "start_date": true, "end_date": true,
	"max_attendees": true, "is_public": true,
}

type events struct{ db }

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartDate, &e.EndDate,
		&e.GardenID, &e.CreatedBy, &e.MaxAttendees, &e.IsPublic, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// Create inserts an event.
func (r events) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, location, start_date, end_date, garden_id, created_by, max_attendees, is_public)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
		e.GardenID, e.CreatedBy, e.MaxAttendees, e.IsPublic).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return translate(err)
}

// Get returns an event. store.ForUpdate locks it inside a transaction.
func (r events) Get(ctx context.Context, id uuid.UUID, opts ...store.Option) (*models.Event, error) {
	q := r.visibility(`SELECT `+eventColumns+` FROM events WHERE id = $1`, store.Apply(opts), false)
	return scanEvent(r.q.QueryRow(ctx, q, id))
}

// List returns events ordered by start date.
func (r events) List(ctx context.Context, f store.ListFilter) ([]models.Event, error) {
	var w where
	if f.GardenID != nil {
		w.add("garden_id = $%d", *f.GardenID)
	}
	if f.AuthorID != nil {
		w.add("created_by = $%d", *f.AuthorID)
	}
	if f.PublicOnly {
		w.raw("is_public")
	}
	if f.VisibleTo != nil {
		w.add(`(is_public OR created_by = $%[1]d OR garden_id IN (
			SELECT garden_id FROM garden_members WHERE user_id = $%[1]d AND is_active))`, *f.VisibleTo)
	}
	if f.Search != "" {
		w.add("title ILIKE $%d", "%"+f.Search+"%")
	}
	tail, args := listTail("start_date ASC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+eventColumns+` FROM events`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, translate(rows.Err())
}

// Update applies a partial update.
func (r events) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Event, error) {
	q, args, err := buildUpdate("events", eventUpdatable, id, p, false, eventColumns)
	if err != nil {
		return nil, err
	}
	return scanEvent(r.q.QueryRow(ctx, q, args...))
}

// Delete removes the event; attendee rows cascade.
func (r events) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "events", models.EntityEvent, id)
}

type attendees struct{ db }

// Get returns the RSVP row for the pair.
func (r attendees) Get(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendee, error) {
	const q = `SELECT event_id, user_id, rsvp_status, rsvp_date FROM event_attendees WHERE event_id = $1 AND user_id = $2`
	var a models.EventAttendee
	err := r.q.QueryRow(ctx, q, eventID, userID).Scan(&a.EventID, &a.UserID, &a.RSVPStatus, &a.RSVPDate)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// CountAttending counts RSVPs with status attending.
func (r attendees) CountAttending(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM event_attendees WHERE event_id = $1 AND rsvp_status = 'attending'`, eventID).Scan(&n)
	return n, translate(err)
}

// Upsert inserts or updates the RSVP for (event, user).
func (r attendees) Upsert(ctx context.Context, a *models.EventAttendee) error {
	const q = `INSERT INTO event_attendees (event_id, user_id, rsvp_status, rsvp_date)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, user_id) DO UPDATE SET rsvp_status = EXCLUDED.rsvp_status, rsvp_date = NOW()
		RETURNING rsvp_date`
	err := r.q.QueryRow(ctx, q, a.EventID, a.UserID, string(a.RSVPStatus)).Scan(&a.RSVPDate)
	return translate(err)
}

// List returns all RSVPs for an event.
func (r attendees) List(ctx context.Context, eventID uuid.UUID) ([]models.EventAttendee, error) {
	rows, err := r.q.Query(ctx, `SELECT event_id, user_id, rsvp_status, rsvp_date FROM event_attendees
		WHERE event_id = $1 ORDER BY rsvp_date ASC`, eventID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.EventAttendee
	for rows.Next() {
		var a models.EventAttendee
		if err := rows.Scan(&a.EventID, &a.UserID, &a.RSVPStatus, &a.RSVPDate); err != nil {
			return nil, translate(err)
		}
		list = append(list, a)
	}
	return list, translate(rows.Err())
}
