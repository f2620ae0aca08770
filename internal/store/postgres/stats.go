package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const statColumns = `id, garden_id, stat_type, value, COALESCE(unit,''), COALESCE(notes,''),
	recorded_by, recorded_at, updated_at`

var statUpdatable = map[string]bool{
	"stat_type": true, "value": true, "unit": true, "notes": true, "recorded_at": true,
}

type stats struct{ db }

func scanStat(row pgx.Row) (*models.Stat, error) {
	var s models.Stat
	err := row.Scan(&s.ID, &s.GardenID, &s.StatType, &s.Value, &s.Unit, &s.Notes,
		&s.RecordedBy, &s.RecordedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Create inserts a measurement. A zero RecordedAt means now.
func (r stats) Create(ctx context.Context, s *models.Stat) error {
	const q = `INSERT INTO garden_stats (garden_id, stat_type, value, unit, notes, recorded_by, recorded_at)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6, COALESCE($7, NOW()))
		RETURNING id, recorded_at, updated_at`
	var recordedAt *time.Time
	if !s.RecordedAt.IsZero() {
		recordedAt = &s.RecordedAt
	}
	err := r.q.QueryRow(ctx, q, s.GardenID, s.StatType, s.Value, s.Unit, s.Notes, s.RecordedBy, recordedAt).
		Scan(&s.ID, &s.RecordedAt, &s.UpdatedAt)
	return translate(err)
}

func (r stats) Get(ctx context.Context, id uuid.UUID) (*models.Stat, error) {
	return scanStat(r.q.QueryRow(ctx, `SELECT `+statColumns+` FROM garden_stats WHERE id = $1`, id))
}

// List returns a garden's measurements, most recent first.
func (r stats) List(ctx context.Context, f store.ListFilter) ([]models.Stat, error) {
	var w where
	if f.GardenID != nil {
		w.add("garden_id = $%d", *f.GardenID)
	}
	if f.StatType != "" {
		w.add("stat_type = $%d", f.StatType)
	}
	if f.AuthorID != nil {
		w.add("recorded_by = $%d", *f.AuthorID)
	}
	tail, args := listTail("recorded_at DESC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+statColumns+` FROM garden_stats`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Stat
	for rows.Next() {
		s, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, translate(rows.Err())
}

func (r stats) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Stat, error) {
	q, args, err := buildUpdate("garden_stats", statUpdatable, id, p, false, statColumns)
	if err != nil {
		return nil, err
	}
	return scanStat(r.q.QueryRow(ctx, q, args...))
}

func (r stats) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "garden_stats", models.EntityStat, id)
}
