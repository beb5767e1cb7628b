package cksetup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VersionStateProvider supplies the from/to inputs of the resolver for an item.
// Either version may be nil: installed is nil for a fresh install, desired is
// nil when only unconditional scripts must run.
type VersionStateProvider interface {
	VersionState(ctx context.Context, item *SetupItem) (installed, desired *Version, err error)
}

// VersionRecorder persists the version reached by an item after a successful run.
type VersionRecorder interface {
	RecordVersion(ctx context.Context, runID uuid.UUID, fullName string, version Version) error
}

// JournalEntry describes one executed script.
type JournalEntry struct {
	RunID      uuid.UUID
	ScriptID   uuid.UUID
	FullName   string
	ScriptName string
	Phase      Phase
	Checksum   string
	ExecutedAt time.Time
}

// ScriptJournal records executed scripts for auditability.
type ScriptJournal interface {
	RecordScript(ctx context.Context, entry JournalEntry) error
}
