//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/signature-opensource/cksetup/internal/testinfra"
	"github.com/signature-opensource/cksetup/internal/testutil"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionStore_PostgreSQL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testinfra.StartPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	pool, err := NewConnector(ctr.ConnString, &testutil.RecordingLogger{}).Connect(ctx)
	require.NoError(t, err)
	defer pool.Close()

	store := NewVersionStore(NewPoolAdapter(pool))
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx), "schema creation is idempotent")

	item := &cksetup.SetupItem{FullName: "CK.tUser", DesiredVersion: cksetup.NewVersion(1, 1, 0)}
	installed, _, err := store.VersionState(ctx, item)
	require.NoError(t, err)
	assert.Nil(t, installed)

	run := uuid.New()
	require.NoError(t, store.RecordVersion(ctx, run, "CK.tUser", *cksetup.NewVersion(1, 0, 0)))
	require.NoError(t, store.RecordVersion(ctx, run, "CK.tUser", *cksetup.NewVersion(1, 1, 0)))
	installed, _, err = store.VersionState(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, cksetup.NewVersion(1, 1, 0), installed)

	require.NoError(t, store.RecordScript(ctx, cksetup.JournalEntry{
		RunID:      run,
		ScriptID:   cksetup.ScriptID("base", "CK.tUser.1.0.0.sql"),
		FullName:   "CK.tUser",
		ScriptName: "CK.tUser.1.0.0.sql",
		Phase:      cksetup.PhaseInstall,
		Checksum:   "abc",
		ExecutedAt: time.Now(),
	}))
	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM cksetup_script_journal WHERE run_id = $1`, run).Scan(&count))
	assert.Equal(t, 1, count)
}
