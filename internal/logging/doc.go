// Package logging provides concrete implementations of the cksetup.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed messages to stderr or any writer, colored on terminals
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
