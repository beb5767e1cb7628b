package testutil

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// FakeDB is an in-memory cksetup.DBConnection recording executed statements.
// ExecErr, when set, is returned for statements it matches.
type FakeDB struct {
	mu         sync.Mutex
	Statements []string
	Acquired   int
	Released   int
	AcquireErr error
	ExecErr    func(sql string) error
	RowFunc    func(sql string, args []any) cksetup.Row
}

func (f *FakeDB) exec(sql string) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ExecErr != nil {
		if err := f.ExecErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	f.Statements = append(f.Statements, sql)
	return pgconn.NewCommandTag("EXEC"), nil
}

func (f *FakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	return f.exec(sql)
}

func (f *FakeDB) QueryRow(_ context.Context, sql string, args ...any) cksetup.Row {
	if f.RowFunc != nil {
		return f.RowFunc(sql, args)
	}
	return RowFunc(func(...any) error { return nil })
}

func (f *FakeDB) Acquire(_ context.Context) (cksetup.PooledConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AcquireErr != nil {
		return nil, f.AcquireErr
	}
	f.Acquired++
	return &fakeConn{db: f}, nil
}

// Outstanding returns the number of acquired, unreleased connections.
func (f *FakeDB) Outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Acquired - f.Released
}

type fakeConn struct {
	db *FakeDB
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	return c.db.exec(sql)
}

func (c *fakeConn) Release() {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.Released++
}

// RowFunc adapts a scan function to cksetup.Row.
type RowFunc func(dest ...any) error

func (f RowFunc) Scan(dest ...any) error { return f(dest...) }

var _ cksetup.DBConnection = (*FakeDB)(nil)
