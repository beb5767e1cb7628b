package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/signature-opensource/cksetup/internal/cli"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cksetup.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(cksetup.ExitCodeForError(err))
	}
}
