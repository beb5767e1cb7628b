package testutil

import (
	"testing"

	"github.com/signature-opensource/cksetup/internal/naming"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Script parses raw (with extension) and builds a sql script of source
// whose content is the raw name itself. Fails the test on parse errors.
func Script(t testing.TB, source cksetup.ScriptSource, raw string) *cksetup.Script {
	t.Helper()
	n, err := naming.TryParse(raw, raw, true)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return cksetup.NewScript(n, "sql", source, cksetup.StaticContent(raw))
}

// Names returns the origins of scripts, for compact assertions.
func Names(scripts []*cksetup.Script) []string {
	out := make([]string, len(scripts))
	for i, s := range scripts {
		out[i] = s.Name().Origin
	}
	return out
}
