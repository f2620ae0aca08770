// Package postgres implements store.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

// querier is satisfied by boundedPool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// db carries the querier and whether it is a transaction.
type db struct {
	q    querier
	inTx bool
}

// Store is the PostgreSQL-backed store.Store.
type Store struct {
	db
	pool boundedPool
}

// New creates a Store. acquireTimeout bounds the wait for a pooled connection, for single
// statements and for transactions alike; zero means no bound beyond ctx.
func New(pool *pgxpool.Pool, acquireTimeout time.Duration) *Store {
	bp := newBoundedPool(pool, acquireTimeout)
	return &Store{db: db{q: bp}, pool: bp}
}

func (s *Store) Users() store.UserRepository             { return users{s.db} }
func (s *Store) Gardens() store.GardenRepository         { return gardens{s.db} }
func (s *Store) Memberships() store.MembershipRepository { return memberships{s.db} }
func (s *Store) Discussions() store.DiscussionRepository { return discussions{s.db} }
func (s *Store) Replies() store.ReplyRepository          { return replies{s.db} }
func (s *Store) Events() store.EventRepository           { return events{s.db} }
func (s *Store) Attendees() store.AttendeeRepository     { return attendees{s.db} }
func (s *Store) Photos() store.PhotoRepository           { return photos{s.db} }
func (s *Store) Resources() store.ResourceRepository     { return resources{s.db} }
func (s *Store) Guides() store.GuideRepository           { return guides{s.db} }
func (s *Store) Stats() store.StatRepository             { return stats{s.db} }

// WithTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	conn, err := s.pool.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		return fn(&Store{db: db{q: tx, inTx: true}, pool: s.pool})
	})
	return translate(err)
}

// translate maps driver errors onto store and apperr errors. Errors that are already
// *apperr.Error or store sentinels pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrUnknownField) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return apperr.Wrap(apperr.ValidationFailed, "referenced entity is missing or still in use", err)
		case "23514", "22P02":
			return apperr.Wrap(apperr.ValidationFailed, "value rejected by the database", err)
		case "40001", "40P01", "53300", "57P03":
			return apperr.Wrap(apperr.DatabaseUnavailable, "database busy, retry later", err)
		}
		return err
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.DatabaseUnavailable, "database unavailable, retry later", err)
	}
	return err
}

// visibility appends the active filter and row lock to a single-row query.
func (d db) visibility(base string, o store.Options, softDeletable bool) string {
	if softDeletable && !o.IncludeInactive {
		base += " AND is_active"
	}
	if o.ForUpdate && d.inTx {
		base += " FOR UPDATE"
	}
	return base
}

// buildUpdate renders "UPDATE table SET a = $1, ..., updated_at = NOW() WHERE id = $n".
// Only columns in allowed are accepted.
func buildUpdate(table string, allowed map[string]bool, id uuid.UUID, p store.Patch, softDeletable bool, returning string) (string, []any, error) {
	fields := p.Fields()
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		if !allowed[f.Column] {
			return "", nil, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, table, f.Column)
		}
		args = append(args, f.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	if softDeletable {
		q += " AND is_active"
	}
	return q + " RETURNING " + returning, args, nil
}

// remove deletes a row the way lifecycle.ModeOf(entity) prescribes.
func (d db) remove(ctx context.Context, table string, entity models.Entity, id uuid.UUID) (lifecycle.Mode, error) {
	mode := lifecycle.ModeOf(entity)
	var q string
	if mode == lifecycle.SoftDelete {
		q = "UPDATE " + table + " SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active"
	} else {
		q = "DELETE FROM " + table + " WHERE id = $1"
	}
	tag, err := d.q.Exec(ctx, q, id)
	if err != nil {
		return mode, translate(err)
	}
	if tag.RowsAffected() == 0 {
		return mode, store.ErrNotFound
	}
	return mode, nil
}

// listTail appends ORDER BY, LIMIT and OFFSET.
func listTail(orderBy string, f store.ListFilter, args []any) (string, []any) {
	args = append(args, f.PageLimit(), max(f.Offset, 0))
	return fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)-1, len(args)), args
}

// where accumulates AND-ed conditions with positional args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
