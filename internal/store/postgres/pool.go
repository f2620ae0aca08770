package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/internal/apperr"
)

// acquireFunc hands out a pooled connection. *pgxpool.Pool.Acquire satisfies it.
type acquireFunc func(ctx context.Context) (*pgxpool.Conn, error)

// boundedPool runs each statement on its own pooled connection and gives up waiting for one
// after timeout. The statement itself runs under the caller's ctx.
type boundedPool struct {
	acquire acquireFunc
	timeout time.Duration
}

func newBoundedPool(pool *pgxpool.Pool, timeout time.Duration) boundedPool {
	return boundedPool{acquire: pool.Acquire, timeout: timeout}
}

// conn waits at most timeout for a connection. Running out of time while ctx itself is
// still live means the pool is exhausted.
func (b boundedPool) conn(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	c, err := b.acquire(acquireCtx)
	if err != nil {
		if ctx.Err() == nil && acquireCtx.Err() != nil {
			return nil, apperr.Wrap(apperr.DatabaseUnavailable, "database connection pool exhausted, retry later", err)
		}
		return nil, translate(err)
	}
	return c, nil
}

func (b boundedPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c, err := b.conn(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer c.Release()
	return c.Exec(ctx, sql, args...)
}

func (b boundedPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, sql, args...)
	if err != nil {
		c.Release()
		return nil, err
	}
	return &connRows{Rows: rows, conn: c}, nil
}

func (b boundedPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c, err := b.conn(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return connRow{row: c.QueryRow(ctx, sql, args...), conn: c}
}

// connRows returns the connection to the pool once the result set is closed or drained.
type connRows struct {
	pgx.Rows
	conn *pgxpool.Conn
	once sync.Once
}

func (r *connRows) release() { r.once.Do(r.conn.Release) }

func (r *connRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.release()
	return false
}

func (r *connRows) Close() {
	r.Rows.Close()
	r.release()
}

type connRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r connRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
