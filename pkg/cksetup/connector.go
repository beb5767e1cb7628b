package cksetup

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes a connection pool to the target database.
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
