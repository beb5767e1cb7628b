package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/signature-opensource/cksetup/internal/testutil"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanString(value string, err error) testutil.RowFunc {
	return func(dest ...any) error {
		if err != nil {
			return err
		}
		*(dest[0].(*string)) = value
		return nil
	}
}

func TestVersionStore_VersionState(t *testing.T) {
	tests := []struct {
		name    string
		row     testutil.RowFunc
		want    *cksetup.Version
		wantErr error
	}{
		{"installed", scanString("1.2.3", nil), cksetup.NewVersion(1, 2, 3), nil},
		{"fresh install", scanString("", pgx.ErrNoRows), nil, nil},
		{"schema missing", scanString("", &pgconn.PgError{Code: "42P01"}), nil, nil},
		{"query failure", scanString("", &pgconn.PgError{Code: "42501"}), nil, &pgconn.PgError{}},
		{"corrupt value", scanString("1.2", nil), nil, cksetup.ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &testutil.FakeDB{RowFunc: func(sql string, args []any) cksetup.Row {
				assert.Contains(t, sql, "FROM cksetup_item_version")
				assert.Equal(t, []any{"CK.tUser"}, args)
				return tt.row
			}}
			item := &cksetup.SetupItem{FullName: "CK.tUser", DesiredVersion: cksetup.NewVersion(2, 0, 0)}

			installed, desired, err := NewVersionStore(fake).VersionState(context.Background(), item)

			if tt.wantErr != nil {
				var pgErr *pgconn.PgError
				if errors.As(tt.wantErr, &pgErr) {
					assert.True(t, errors.As(err, &pgErr))
				} else {
					assert.True(t, errors.Is(err, tt.wantErr))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, installed)
			assert.Equal(t, cksetup.NewVersion(2, 0, 0), desired)
		})
	}
}

func TestVersionStore_Writes(t *testing.T) {
	fake := &testutil.FakeDB{}
	store := NewVersionStore(fake)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.RecordVersion(ctx, uuid.New(), "CK.tUser", *cksetup.NewVersion(1, 0, 0)))
	require.NoError(t, store.RecordScript(ctx, cksetup.JournalEntry{ScriptName: "CK.tUser.1.0.0.sql", ExecutedAt: time.Now()}))

	require.Len(t, fake.Statements, 3)
	assert.Contains(t, fake.Statements[0], "CREATE TABLE IF NOT EXISTS cksetup_item_version")
	assert.Contains(t, fake.Statements[1], "ON CONFLICT (full_name)")
	assert.Contains(t, fake.Statements[2], "INSERT INTO cksetup_script_journal")
}

func TestVersionStore_WriteErrors(t *testing.T) {
	fake := &testutil.FakeDB{ExecErr: func(sql string) error {
		if strings.Contains(sql, "cksetup_script_journal (run_id") {
			return errors.New("disk full")
		}
		return nil
	}}

	err := NewVersionStore(fake).RecordScript(context.Background(), cksetup.JournalEntry{ScriptName: "A.sql"})

	assert.ErrorContains(t, err, "A.sql")
	assert.ErrorContains(t, err, "disk full")
	assert.Panics(t, func() { NewVersionStore(nil) })
}

func TestWrapConnectionError(t *testing.T) {
	err := wrapConnectionError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "postgres@localhost:5432/app")

	assert.True(t, errors.Is(err, cksetup.ErrConnectionFailed))
	assert.Contains(t, err.Error(), "postgres@localhost:5432/app")
	assert.Contains(t, err.Error(), "is PostgreSQL running")
	assert.Equal(t, cksetup.ExitConnectionError, cksetup.ExitCodeForError(err))
}

func TestConnector_InvalidConnectionString(t *testing.T) {
	_, err := NewConnector("postgres://%zz", &testutil.RecordingLogger{}).Connect(context.Background())
	assert.True(t, errors.Is(err, cksetup.ErrInvalidConfig))
}
