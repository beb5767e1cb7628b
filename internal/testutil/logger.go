// Package testutil provides shared test doubles.
package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// RecordingLogger captures log lines per level. Safe for concurrent use.
type RecordingLogger struct {
	mu       sync.Mutex
	Verboses []string
	Infos    []string
	Warnings []string
	Errors   []string
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.record(&l.Verboses, format, args)
}

func (l *RecordingLogger) Info(format string, args ...interface{}) {
	l.record(&l.Infos, format, args)
}

func (l *RecordingLogger) Warn(format string, args ...interface{}) {
	l.record(&l.Warnings, format, args)
}

func (l *RecordingLogger) Error(format string, args ...interface{}) {
	l.record(&l.Errors, format, args)
}

func (l *RecordingLogger) record(dst *[]string, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

// HasWarning reports whether a warning containing substr was logged.
func (l *RecordingLogger) HasWarning(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return containsAny(l.Warnings, substr)
}

// HasInfo reports whether an info line containing substr was logged.
func (l *RecordingLogger) HasInfo(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return containsAny(l.Infos, substr)
}

func containsAny(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
