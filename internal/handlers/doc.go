// Package handlers provides the script handlers a setup run executes scripts
// with, and orders them according to their declared requirements.
//
// A handler is keyed by script type (the file extension of its scripts). The
// PostgreSQL handler runs "sql" scripts on a dedicated pooled connection per
// phase; FuncHandler adapts a Go function for custom script types.
//
// Handler ordering:
//
//	set, _ := handlers.NewSet(sqlHandler, psHandler) // ps requires sql
//	ordered, err := set.Order()                     // [sql, ps]
//
// A handler always comes after the handlers it requires. Missing hard
// requirements and requirement cycles are errors; missing soft requirements
// are ignored. Unrelated handlers are ordered by script type.
package handlers
