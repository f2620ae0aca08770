package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const photoColumns = `id, title, COALESCE(description,''), url, storage_key, content_type, file_size,
	uploaded_by, garden_id, is_public, created_at, updated_at`

var photoUpdatable = map[string]bool{"title": true, "description": true, "is_public": true}

type photos struct{ db }

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.URL, &p.StorageKey, &p.ContentType, &p.FileSize,
		&p.UploadedBy, &p.GardenID, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create inserts photo metadata after the blob was stored.
func (r photos) Create(ctx context.Context, p *models.Photo) error {
	const q = `INSERT INTO photos (title, description, url, storage_key, content_type, file_size, uploaded_by, garden_id, is_public)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, p.Title, p.Description, p.URL, p.StorageKey, p.ContentType, p.FileSize,
		p.UploadedBy, p.GardenID, p.IsPublic).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r photos) Get(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	return scanPhoto(r.q.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
}

// List returns photos, newest first.
func (r photos) List(ctx context.Context, f store.ListFilter) ([]models.Photo, error) {
	var w where
	if f.GardenID != nil {
		w.add("garden_id = $%d", *f.GardenID)
	}
	if f.AuthorID != nil {
		w.add("uploaded_by = $%d", *f.AuthorID)
	}
	if f.PublicOnly {
		w.raw("is_public")
	}
	if f.VisibleTo != nil {
		w.add(`(is_public OR uploaded_by = $%[1]d OR garden_id IN (
			SELECT garden_id FROM garden_members WHERE user_id = $%[1]d AND is_active))`, *f.VisibleTo)
	}
	tail, args := listTail("created_at DESC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+photoColumns+` FROM photos`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, translate(rows.Err())
}

func (r photos) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Photo, error) {
	q, args, err := buildUpdate("photos", photoUpdatable, id, p, false, photoColumns)
	if err != nil {
		return nil, err
	}
	return scanPhoto(r.q.QueryRow(ctx, q, args...))
}

// Delete removes the row only; the blob is cleaned up by the caller.
func (r photos) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "photos", models.EntityPhoto, id)
}
