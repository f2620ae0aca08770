package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

const userColumns = `id, username, email, password_hash,
	COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(bio,''), COALESCE(location,''),
	role, is_active, last_login_at, created_at, updated_at`

var userUpdatable = map[string]bool{
	"email": true, "first_name": true, "last_name": true, "bio": true, "location": true,
	"role": true, "is_active": true,
}

type users struct{ db }

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Bio, &u.Location,
		&u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Create inserts a new user.
func (r users) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (username, email, password_hash, first_name, last_name, bio, location, role)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8)
		RETURNING id, is_active, created_at, updated_at`
	err := r.q.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash,
		u.FirstName, u.LastName, u.Bio, u.Location, string(u.Role)).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

// GetByID returns a user by ID.
func (r users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByLogin returns a user by username or email.
func (r users) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR LOWER(email) = LOWER($1)`, login))
}

// List returns users ordered by username.
func (r users) List(ctx context.Context, f store.ListFilter) ([]models.User, error) {
	var w where
	if f.Search != "" {
		w.add("(username ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	tail, args := listTail("username", f, w.args)
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users`+w.String()+tail, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, translate(rows.Err())
}

// Update applies a partial update.
func (r users) Update(ctx context.Context, id uuid.UUID, p store.Patch) (*models.User, error) {
	q, args, err := buildUpdate("users", userUpdatable, id, p, false, userColumns)
	if err != nil {
		return nil, err
	}
	return scanUser(r.q.QueryRow(ctx, q, args...))
}

// TouchLogin records a successful login.
func (r users) TouchLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return translate(err)
}

// Delete removes the user row.
func (r users) Delete(ctx context.Context, id uuid.UUID) (lifecycle.Mode, error) {
	return r.remove(ctx, "users", models.EntityUser, id)
}
