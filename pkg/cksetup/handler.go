package cksetup

import "context"

// ScriptExecutor runs scripts of one script type. An executor is acquired for
// one phase of one item and released when the phase completes.
type ScriptExecutor interface {
	// Execute runs the script. A returned error aborts the phase.
	Execute(ctx context.Context, script *Script) error
}

// Requirement declares that a handler must run after another script type.
// Hard requirements fail ordering when the required handler is missing;
// soft requirements are ignored in that case.
type Requirement struct {
	Type string
	Hard bool
}

// ScriptHandler is the capability registered per script type.
type ScriptHandler interface {
	// ScriptType is the handler key, matching the script file extension ("sql").
	ScriptType() string

	// Requires lists the script types this handler runs after.
	Requires() []Requirement

	// CreateExecutor acquires an executor for one phase of item.
	CreateExecutor(ctx context.Context, item *SetupItem) (ScriptExecutor, error)

	// ReleaseExecutor releases what CreateExecutor acquired. Always called,
	// including after a failed phase.
	ReleaseExecutor(executor ScriptExecutor)
}
