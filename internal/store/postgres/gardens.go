package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const gardenColumns = `id, name, COALESCE(description,''), location, COALESCE(region,''),
	max_members, created_by, is_active, created_at, updated_at`

var gardenUpdatable = map[string]bool{
	"name": true, "description": true, "location": true, "region": true, "max_members": true,
}

type gardens struct{ db }

func scanGarden(row pgx.Row) (*models.Garden, error) {
	var g models.Garden
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Location, &g.Region,
		&g.MaxMembers, &g.CreatedBy, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// Create inserts a garden.
func (r gardens) Create(ctx context.Context, g *models.Garden) error {
	const q = `INSERT INTO gardens (name, description, location, region, max_members, created_by)
		VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), $5, $6)
		RETURNING id, is_active, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, g.Name, g.Description, g.Location, g.Region, g.MaxMembers, g.CreatedBy).
		Scan(&g.ID, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return translate(err)
}

// Get returns a garden; inactive gardens only with store.IncludeInactive.
func (r gardens) Get(ctx context.Context, id uuid.UUID, opts ...store.Option) (*models.Garden, error) {
	q := r.visibility(`SELECT `+gardenColumns+` FROM gardens WHERE id = $1`, store.Apply(opts), true)
	return scanGarden(r.q.QueryRow(ctx, q, id))
}

// List returns gardens, newest first.
func (r gardens) List(ctx context.Context, f store.ListFilter, opts ...store.Option) ([]models.Garden, error) {
	var w where
	if !store.Apply(opts).IncludeInactive {
		w.raw("is_active")
	}
	if f.Region != "" {
		w.add("region = $%d", f.Region)
	}
	if f.AuthorID != nil {
		w.add("created_by = $%d", *f.AuthorID)
	}
	if f.Search != "" {
		w.add("(name ILIKE $%[1]d OR location ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	tail, args := listTail("created_at DESC", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+gardenColumns+` FROM gardens`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Garden
	for rows.Next() {
		g, err := scanGarden(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, translate(rows.Err())
}

// Update applies a partial update to an active garden.
func (r gardens) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.Garden, error) {
	q, args, err := buildUpdate("gardens", gardenUpdatable, id, p, true, gardenColumns)
	if err != nil {
		return nil, err
	}
	return scanGarden(r.q.QueryRow(ctx, q, args...))
}

// Delete soft-deletes the garden.
func (r gardens) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "gardens", models.EntityGarden, id)
}

type memberships struct{ db }

const membershipColumns = `id, user_id, garden_id, role, is_active, join_date, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.GardenID, &m.Role, &m.IsActive, &m.JoinDate, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Get returns the membership row for the pair, active or not.
func (r memberships) Get(ctx context.Context, userID, gardenID uuid.UUID) (*models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM garden_members WHERE user_id = $1 AND garden_id = $2`
	return scanMembership(r.q.QueryRow(ctx, q, userID, gardenID))
}

// ActiveRole returns the user's role in an active membership, or "".
func (r memberships) ActiveRole(ctx context.Context, userID, gardenID uuid.UUID) (models.GardenRole, error) {
	const q = `SELECT role FROM garden_members WHERE user_id = $1 AND garden_id = $2 AND is_active`
	var role models.GardenRole
	err := translate(r.q.QueryRow(ctx, q, userID, gardenID).Scan(&role))
	if err == store.ErrNotFound {
		return "", nil
	}
	return role, err
}

// CountActive counts active memberships of a garden.
func (r memberships) CountActive(ctx context.Context, gardenID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM garden_members WHERE garden_id = $1 AND is_active`, gardenID).Scan(&n)
	return n, translate(err)
}

// Insert adds a new active membership.
func (r memberships) Insert(ctx context.Context, m *models.Membership) error {
	const q = `INSERT INTO garden_members (user_id, garden_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, join_date, updated_at`
	err := r.q.QueryRow(ctx, q, m.UserID, m.GardenID, string(m.Role)).
		Scan(&m.ID, &m.IsActive, &m.JoinDate, &m.UpdatedAt)
	return translate(err)
}

// Reactivate turns an inactive membership back into an active member.
func (r memberships) Reactivate(ctx context.Context, userID, gardenID uuid.UUID) (*models.Membership, error) {
	const q = `UPDATE garden_members
		SET is_active = TRUE, role = 'member', join_date = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND garden_id = $2 AND NOT is_active
		RETURNING ` + membershipColumns
	return scanMembership(r.q.QueryRow(ctx, q, userID, gardenID))
}

// Deactivate marks an active membership inactive.
func (r memberships) Deactivate(ctx context.Context, userID, gardenID uuid.UUID) error {
	const q = `UPDATE garden_members SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND garden_id = $2 AND is_active`
	tag, err := r.q.Exec(ctx, q, userID, gardenID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListActive returns active members with usernames, coordinators first.
func (r memberships) ListActive(ctx context.Context, gardenID uuid.UUID) ([]models.Member, error) {
	const q = `SELECT gm.user_id, u.username, gm.role, gm.join_date
		FROM garden_members gm
		INNER JOIN users u ON u.id = gm.user_id
		WHERE gm.garden_id = $1 AND gm.is_active
		ORDER BY gm.role = 'coordinator' DESC, gm.join_date ASC`
	rows, err := r.q.Query(ctx, q, gardenID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.JoinDate); err != nil {
			return nil, translate(err)
		}
		list = append(list, m)
	}
	return list, translate(rows.Err())
}
