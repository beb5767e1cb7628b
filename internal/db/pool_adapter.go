package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// PoolAdapter is the connection a setup run holds: the sql handler acquires
// one session per script from it and the version store reads and records
// installed versions through it. The adapter owns the pool.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

var _ cksetup.DBConnection = (*PoolAdapter)(nil)

// NewPoolAdapter takes ownership of pool; Close releases it.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// QueryRow serves the version store lookups. pgx.Row already matches
// cksetup.Row, errors surface on Scan.
func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) cksetup.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Acquire returns a dedicated session so that a script's statements share
// session state. The caller must Release it.
func (p *PoolAdapter) Acquire(ctx context.Context) (cksetup.PooledConnection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close closes the pool. It is safe to call more than once.
func (p *PoolAdapter) Close() { p.pool.Close() }
