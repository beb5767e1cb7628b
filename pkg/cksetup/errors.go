package cksetup

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// Callers distinguish them with errors.Is().
//
//	err := service.Apply(ctx, cfg)
//	if errors.Is(err, cksetup.ErrCaseMismatch) {
//	    // two scripts address the same object with different casing
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidScriptName indicates a script name could not be parsed.
	ErrInvalidScriptName = errors.New("invalid script name")

	// ErrInvalidVersion indicates a malformed X.Y.Z version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrCaseMismatch indicates a target name that differs from a registered one only by case.
	ErrCaseMismatch = errors.New("target name case mismatch")

	// ErrDuplicateSlot indicates two scripts of equal source priority occupy the same slot.
	ErrDuplicateSlot = errors.New("duplicate script slot")

	// ErrShadowedScript indicates a script lost its slot to a higher priority source.
	ErrShadowedScript = errors.New("script shadowed by higher priority source")

	// ErrUnknownSource indicates a script from a source that was never registered.
	ErrUnknownSource = errors.New("unknown script source")

	// ErrRegistryFrozen indicates a registration attempt after the registry was built.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrMissingExecutor indicates no handler is available for a script type.
	ErrMissingExecutor = errors.New("missing script executor")

	// ErrHandlerCycle indicates handler requirements form a cycle.
	ErrHandlerCycle = errors.New("handler requirement cycle")

	// ErrMissingRequirement indicates a hard handler requirement is not registered.
	ErrMissingRequirement = errors.New("missing required handler")

	// ErrPartialMigration indicates the desired version is not reachable.
	ErrPartialMigration = errors.New("desired version not reachable")

	// ErrExecutionFailed indicates a script failed to run.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// usageErrorPrefixes are the messages cobra produces for command line misuse.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"missing required argument",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the exit code for an error.
// Returns ExitSuccess for nil, semantic codes for known errors and
// ExitGeneralError for anything else.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidScriptName),
		errors.Is(err, ErrInvalidVersion),
		errors.Is(err, ErrHandlerCycle),
		errors.Is(err, ErrMissingRequirement):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrCaseMismatch),
		errors.Is(err, ErrDuplicateSlot),
		errors.Is(err, ErrMissingExecutor):
		return ExitRegistryConflict
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrPartialMigration):
		return ExitPartialMigration
	}

	msg := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return ExitUsageError
		}
	}

	if strings.Contains(msg, "failed to connect") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
