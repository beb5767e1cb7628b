package cksetup

import "time"

// Exit codes for semantic error classification.
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Setup completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic
	ExitConfigError      = 10 // Invalid configuration or script names
	ExitConnectionError  = 11 // Failed to connect to database
	ExitRegistryConflict = 12 // Ambiguous script registration escalated to fatal
	ExitExecutionFailed  = 13 // A script failed
	ExitPartialMigration = 14 // Target version not reachable and partial runs refused
)

const (
	// DefaultTimeout bounds a whole setup run.
	DefaultTimeout = 3 * time.Minute

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between connection retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the number of connection retries.
	DefaultRetryMaxAttempts = 3

	// DefaultScriptType is the handler enabled when configuration names none.
	DefaultScriptType = "sql"

	// ApplicationName is reported to PostgreSQL as application_name.
	ApplicationName = "cksetup"
)
