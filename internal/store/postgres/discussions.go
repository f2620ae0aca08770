package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const discussionColumns = `id, title, content, author_id, garden_id, category, is_pinned, is_active, created_at, updated_at`

var discussionUpdatable = map[string]bool{"title": true, "content": true, "category": true, "is_pinned": true}

type discussions struct{ db }

func scanDiscussion(row pgx.Row) (*models.Discussion, error) {
	var d models.Discussion
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.AuthorID, &d.GardenID, &d.Category,
		&d.IsPinned, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// Create inserts a discussion.
func (r discussions) Create(ctx context.Context, d *models.Discussion) error {
	const q = `INSERT INTO discussions (title, content, author_id, garden_id, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_pinned, is_active, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, d.Title, d.Content, d.AuthorID, d.GardenID, d.Category).
		Scan(&d.ID, &d.IsPinned, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return translate(err)
}

// Get returns a discussion; inactive ones only with store.IncludeInactive.
func (r discussions) Get(ctx context.Context, id uuid.UUID, opts ...store.Option) (*models.Discussion, error) {
	q := r.visibility(`SELECT `+discussionColumns+` FROM discussions WHERE id = $1`, store.Apply(opts), true)
	return scanDiscussion(r.q.QueryRow(ctx, q, id))
}

// List returns discussions, pinned first then newest.
func (r discussions) List(ctx context.Context, f store.ListFilter, opts ...store.Option) ([]models.Discussion, error) {
	var w where
	if !store.Apply(opts).IncludeInactive {
		w.raw("is_active")
	}
	if f.GardenID != nil {
		w.add("garden_id = $%d", *f.GardenID)
	}
	if f.AuthorID != nil {
		w.add("author_id = $%d", *f.AuthorID)
	}
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}
	if f.Search != "" {
		w.add("(title ILIKE $%[1]d OR content ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	tail, args := listTail("is_pinned DESC, created_at DESC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+discussionColumns+` FROM discussions`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Discussion
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, translate(rows.Err())
}

// Update applies a partial update to an active discussion.
func (r discussions) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Discussion, error) {
	q, args, err := buildUpdate("discussions", discussionUpdatable, id, p, true, discussionColumns)
	if err != nil {
		return nil, err
	}
	return scanDiscussion(r.q.QueryRow(ctx, q, args...))
}

// Delete soft-deletes the discussion.
func (r discussions) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "discussions", models.EntityDiscussion, id)
}

const replyColumns = `id, discussion_id, author_id, content, parent_reply_id, is_active, created_at, updated_at`

var replyUpdatable = map[string]bool{"content": true}

type replies struct{ db }

func scanReply(row pgx.Row) (*models.DiscussionReply, error) {
	var rp models.DiscussionReply
	err := row.Scan(&rp.ID, &rp.DiscussionID, &rp.AuthorID, &rp.Content, &rp.ParentReplyID,
		&rp.IsActive, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &rp, nil
}

// Create inserts a reply.
func (r replies) Create(ctx context.Context, rp *models.DiscussionReply) error {
	const q = `INSERT INTO discussion_replies (discussion_id, author_id, content, parent_reply_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, rp.DiscussionID, rp.AuthorID, rp.Content, rp.ParentReplyID).
		Scan(&rp.ID, &rp.IsActive, &rp.CreatedAt, &rp.UpdatedAt)
	return translate(err)
}

// Get returns a reply; inactive ones only with store.IncludeInactive.
func (r replies) Get(ctx context.Context, id uuid.UUID, opts ...store.Option) (*models.DiscussionReply, error) {
	q := r.visibility(`SELECT `+replyColumns+` FROM discussion_replies WHERE id = $1`, store.Apply(opts), true)
	return scanReply(r.q.QueryRow(ctx, q, id))
}

// ListByDiscussion returns replies oldest first.
func (r replies) ListByDiscussion(ctx context.Context, discussionID uuid.UUID, opts ...store.Option) ([]models.DiscussionReply, error) {
	q := `SELECT ` + replyColumns + ` FROM discussion_replies WHERE discussion_id = $1`
	if !store.Apply(opts).IncludeInactive {
		q += " AND is_active"
	}
	rows, err := r.q.Query(ctx, q+" ORDER BY created_at ASC", discussionID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.DiscussionReply
	for rows.Next() {
		rp, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rp)
	}
	return list, translate(rows.Err())
}

// Update applies a partial update to an active reply.
func (r replies) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.DiscussionReply, error) {
	q, args, err := buildUpdate("discussion_replies", replyUpdatable, id, p, true, replyColumns)
	if err != nil {
		return nil, err
	}
	return scanReply(r.q.QueryRow(ctx, q, args...))
}

// Delete soft-deletes the reply.
func (r replies) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "discussion_replies", models.EntityReply, id)
}
