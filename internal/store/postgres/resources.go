package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const resourceColumns = `id, title, content, category, author_id, is_published, tags, created_at, updated_at`

var resourceUpdatable = map[string]bool{
	"title": true, "content": true, "category": true, "is_published": true, "tags": true,
}

type resources struct{ db }

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(&res.ID, &res.Title, &res.Content, &res.Category, &res.AuthorID,
		&res.IsPublished, &res.Tags, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	return &res, nil
}

func (r resources) Create(ctx context.Context, res *models.Resource) error {
	if res.Tags == nil {
		res.Tags = []string{}
	}
	const q = `INSERT INTO resources (title, content, category, author_id, is_published, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, res.Title, res.Content, res.Category, res.AuthorID, res.IsPublished, res.Tags).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	return translate(err)
}

func (r resources) Get(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return scanResource(r.q.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
}

// List returns resources, newest first. Search matches title or a tag.
func (r resources) List(ctx context.Context, f store.ListFilter) ([]models.Resource, error) {
	var w where
	if f.PublishedOnly {
		w.raw("is_published")
	}
	if f.VisibleTo != nil {
		w.add("(is_published OR author_id = $%d)", *f.VisibleTo)
	}
	if f.AuthorID != nil {
		w.add("author_id = $%d", *f.AuthorID)
	}
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}
	if f.Search != "" {
		w.add("(title ILIKE '%%' || $%[1]d || '%%' OR $%[1]d = ANY(tags))", f.Search)
	}
	tail, args := listTail("created_at DESC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+resourceColumns+` FROM resources`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, translate(rows.Err())
}

func (r resources) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Resource, error) {
	q, args, err := buildUpdate("resources", resourceUpdatable, id, p, false, resourceColumns)
	if err != nil {
		return nil, err
	}
	return scanResource(r.q.QueryRow(ctx, q, args...))
}

// Delete removes the resource; its guides cascade.
func (r resources) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "resources", models.EntityResource, id)
}

const guideColumns = `id, resource_id, step_number, COALESCE(title,''), content, created_at, updated_at`

var guideUpdatable = map[string]bool{"step_number": true, "title": true, "content": true}

type guides struct{ db }

func scanGuide(row pgx.Row) (*models.Guide, error) {
	var g models.Guide
	err := row.Scan(&g.ID, &g.ResourceID, &g.StepNumber, &g.Title, &g.Content, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r guides) Create(ctx context.Context, g *models.Guide) error {
	const q = `INSERT INTO guides (resource_id, step_number, title, content)
		VALUES ($1, $2, NULLIF($3,''), $4)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, g.ResourceID, g.StepNumber, g.Title, g.Content).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	return translate(err)
}

func (r guides) Get(ctx context.Context, id uuid.UUID) (*models.Guide, error) {
	return scanGuide(r.q.QueryRow(ctx, `SELECT `+guideColumns+` FROM guides WHERE id = $1`, id))
}

// ListByResource returns the steps in order.
func (r guides) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.Guide, error) {
	rows, err := r.q.Query(ctx, `SELECT `+guideColumns+` FROM guides WHERE resource_id = $1 ORDER BY step_number, created_at`, resourceID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Guide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, translate(rows.Err())
}

func (r guides) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Guide, error) {
	q, args, err := buildUpdate("guides", guideUpdatable, id, p, false, guideColumns)
	if err != nil {
		return nil, err
	}
	return scanGuide(r.q.QueryRow(ctx, q, args...))
}

func (r guides) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "guides", models.EntityGuide, id)
}
