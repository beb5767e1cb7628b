package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"golang.org/x/term"
)

var _ cksetup.Logger = (*ConsoleLogger)(nil)

// ConsoleLogger writes log messages to stderr or an injected writer.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	out     io.Writer
	warn    *color.Color
	err     *color.Color
	mu      sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewWriterLogger(os.Stderr, verbose)
}

// NewWriterLogger creates a ConsoleLogger writing to w. Prefixes are colored
// only when w is a terminal and NO_COLOR is unset.
func NewWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	if w == nil {
		panic("logging: writer cannot be nil")
	}
	l := &ConsoleLogger{
		verbose: verbose,
		out:     w,
		warn:    color.New(color.FgYellow, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
	}
	if isTerminal(w) && os.Getenv("NO_COLOR") == "" {
		l.warn.EnableColor()
		l.err.EnableColor()
	} else {
		l.warn.DisableColor()
		l.err.DisableColor()
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Warn logs recoverable problems.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write(l.warn.Sprint("[WARN]")+" ", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.err.Sprint("[ERROR]")+" ", format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}
