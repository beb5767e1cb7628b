package state

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_VersionState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	item := &cksetup.SetupItem{FullName: "A", DesiredVersion: cksetup.NewVersion(2, 0, 0)}

	installed, desired, err := store.VersionState(ctx, item)
	require.NoError(t, err)
	assert.Nil(t, installed)
	assert.Equal(t, cksetup.NewVersion(2, 0, 0), desired)

	store.SetInstalled("A", *cksetup.NewVersion(1, 0, 0))
	installed, _, err = store.VersionState(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, cksetup.NewVersion(1, 0, 0), installed)
}

func TestMemoryStore_RecordVersion(t *testing.T) {
	store := NewMemoryStore()
	run := uuid.New()

	require.NoError(t, store.RecordVersion(context.Background(), run, "A", *cksetup.NewVersion(1, 2, 3)))

	assert.Equal(t, cksetup.NewVersion(1, 2, 3), store.Installed("A"))
	got, ok := store.LastRun("A")
	require.True(t, ok)
	assert.Equal(t, run, got)
	_, ok = store.LastRun("B")
	assert.False(t, ok)
}

func TestMemoryStore_JournalIsCopied(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.RecordScript(context.Background(), cksetup.JournalEntry{ScriptName: "A.sql"}))

	j := store.Journal()
	j[0].ScriptName = "mutated"

	assert.Equal(t, "A.sql", store.Journal()[0].ScriptName)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.RecordScript(ctx, cksetup.JournalEntry{})
			_ = store.RecordVersion(ctx, uuid.New(), "A", *cksetup.NewVersion(1, 0, uint64(i)))
			_ = store.Installed("A")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Journal(), 50)
	assert.NotNil(t, store.Installed("A"))
}
