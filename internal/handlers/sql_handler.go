package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// SQLScriptType is the script type of PostgreSQL scripts.
const SQLScriptType = cksetup.DefaultScriptType

// SQLHandler runs "sql" scripts against PostgreSQL. Each executor owns a
// dedicated pooled connection for the duration of one phase, so session state
// set by a script is visible to the next scripts of the phase.
type SQLHandler struct {
	conn   cksetup.DBConnection
	logger cksetup.Logger
}

// NewSQLHandler creates a PostgreSQL handler.
//
// Panics if conn or logger is nil.
func NewSQLHandler(conn cksetup.DBConnection, logger cksetup.Logger) *SQLHandler {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SQLHandler{conn: conn, logger: logger}
}

func (h *SQLHandler) ScriptType() string { return SQLScriptType }

func (h *SQLHandler) Requires() []cksetup.Requirement { return nil }

// CreateExecutor acquires a connection for one phase of item.
func (h *SQLHandler) CreateExecutor(ctx context.Context, item *cksetup.SetupItem) (cksetup.ScriptExecutor, error) {
	conn, err := h.conn.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for %s: %w", item.FullName, err)
	}
	return &sqlExecutor{conn: conn, item: item, logger: h.logger}, nil
}

// ReleaseExecutor returns the executor's connection to the pool.
func (h *SQLHandler) ReleaseExecutor(executor cksetup.ScriptExecutor) {
	e, ok := executor.(*sqlExecutor)
	if !ok || e.released {
		return
	}
	e.released = true
	e.conn.Release()
}

type sqlExecutor struct {
	conn     cksetup.PooledConnection
	item     *cksetup.SetupItem
	logger   cksetup.Logger
	released bool
}

func (e *sqlExecutor) Execute(ctx context.Context, script *cksetup.Script) error {
	if e.released {
		return fmt.Errorf("executor for %s already released", e.item.FullName)
	}
	content, err := script.LoadContent()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", script, err)
	}
	if strings.TrimSpace(content) == "" {
		e.logger.Verbose("Skipping empty script %s", script)
		return nil
	}

	e.logger.Verbose("Executing %s", script)
	tag, err := e.conn.Exec(ctx, content)
	if err != nil {
		return err
	}
	e.logger.Verbose("Executed %s (%s)", script, tag.String())
	return nil
}

var _ cksetup.ScriptHandler = (*SQLHandler)(nil)
