// Package state provides an in-memory version store.
package state

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// MemoryStore keeps installed versions and the script journal in memory.
// The desired version of an item is its declared DesiredVersion.
// Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	installed map[string]cksetup.Version
	runs      map[string]uuid.UUID
	journal   []cksetup.JournalEntry
}

// NewMemoryStore creates an empty store: every item is a fresh install.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		installed: make(map[string]cksetup.Version),
		runs:      make(map[string]uuid.UUID),
	}
}

// SetInstalled seeds the installed version of an item.
func (m *MemoryStore) SetInstalled(fullName string, v cksetup.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[fullName] = v
}

// Installed returns the installed version of an item, or nil.
func (m *MemoryStore) Installed(fullName string) *cksetup.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.installed[fullName]; ok {
		return &v
	}
	return nil
}

// LastRun returns the run that last recorded a version of the item.
func (m *MemoryStore) LastRun(fullName string) (uuid.UUID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.runs[fullName]
	return id, ok
}

// Journal returns a copy of the recorded entries in execution order.
func (m *MemoryStore) Journal() []cksetup.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]cksetup.JournalEntry(nil), m.journal...)
}

func (m *MemoryStore) VersionState(_ context.Context, item *cksetup.SetupItem) (*cksetup.Version, *cksetup.Version, error) {
	return m.Installed(item.FullName), item.DesiredVersion, nil
}

func (m *MemoryStore) RecordVersion(_ context.Context, runID uuid.UUID, fullName string, v cksetup.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[fullName] = v
	m.runs[fullName] = runID
	return nil
}

func (m *MemoryStore) RecordScript(_ context.Context, entry cksetup.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, entry)
	return nil
}

var (
	_ cksetup.VersionStateProvider = (*MemoryStore)(nil)
	_ cksetup.VersionRecorder      = (*MemoryStore)(nil)
	_ cksetup.ScriptJournal        = (*MemoryStore)(nil)
)
