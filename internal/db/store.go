package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cksetup_item_version (
    full_name  text PRIMARY KEY,
    version    text NOT NULL,
    run_id     uuid NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS cksetup_script_journal (
    id          bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    run_id      uuid NOT NULL,
    script_id   uuid NOT NULL,
    full_name   text NOT NULL,
    script_name text NOT NULL,
    phase       text NOT NULL,
    checksum    text NOT NULL,
    executed_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS cksetup_script_journal_run ON cksetup_script_journal (run_id);
`

const (
	selectVersionSQL = `SELECT version FROM cksetup_item_version WHERE full_name = $1`

	upsertVersionSQL = `
INSERT INTO cksetup_item_version (full_name, version, run_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (full_name) DO UPDATE
SET version = EXCLUDED.version, run_id = EXCLUDED.run_id, updated_at = EXCLUDED.updated_at`

	insertJournalSQL = `
INSERT INTO cksetup_script_journal (run_id, script_id, full_name, script_name, phase, checksum, executed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// VersionStore keeps installed item versions and the script journal in
// PostgreSQL. The desired version of an item is its declared DesiredVersion.
type VersionStore struct {
	conn cksetup.DBConnection
}

// NewVersionStore creates a store.
//
// Panics if conn is nil.
func NewVersionStore(conn cksetup.DBConnection) *VersionStore {
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &VersionStore{conn: conn}
}

// EnsureSchema creates the store tables when missing.
func (s *VersionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create cksetup tables: %w", err)
	}
	return nil
}

// undefinedTable is the SQLSTATE of a missing relation.
const undefinedTable = "42P01"

// InstalledVersion returns the recorded version of an item, or nil. A
// database without the cksetup tables reads as a fresh install.
func (s *VersionStore) InstalledVersion(ctx context.Context, fullName string) (*cksetup.Version, error) {
	var raw string
	err := s.conn.QueryRow(ctx, selectVersionSQL, fullName).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version of %s: %w", fullName, err)
	}
	v, err := cksetup.ParseVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("stored version of %s: %w", fullName, err)
	}
	return v, nil
}

func (s *VersionStore) VersionState(ctx context.Context, item *cksetup.SetupItem) (*cksetup.Version, *cksetup.Version, error) {
	installed, err := s.InstalledVersion(ctx, item.FullName)
	if err != nil {
		return nil, nil, err
	}
	return installed, item.DesiredVersion, nil
}

func (s *VersionStore) RecordVersion(ctx context.Context, runID uuid.UUID, fullName string, v cksetup.Version) error {
	if _, err := s.conn.Exec(ctx, upsertVersionSQL, fullName, v.String(), runID); err != nil {
		return fmt.Errorf("failed to record version of %s: %w", fullName, err)
	}
	return nil
}

func (s *VersionStore) RecordScript(ctx context.Context, e cksetup.JournalEntry) error {
	_, err := s.conn.Exec(ctx, insertJournalSQL,
		e.RunID, e.ScriptID, e.FullName, e.ScriptName, e.Phase.String(), e.Checksum, e.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to journal %s: %w", e.ScriptName, err)
	}
	return nil
}

var (
	_ cksetup.VersionStateProvider = (*VersionStore)(nil)
	_ cksetup.VersionRecorder      = (*VersionStore)(nil)
	_ cksetup.ScriptJournal        = (*VersionStore)(nil)
)
