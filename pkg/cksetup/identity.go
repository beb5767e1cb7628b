package cksetup

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceScriptIdentity is the UUID v5 namespace for script identities.
var NamespaceScriptIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cksetup/script-identity/v1"))

// ScriptID derives a deterministic identity from a source name and the
// script origin. Identity is case-insensitive and ignores a leading "./".
func ScriptID(sourceName, origin string) uuid.UUID {
	normalized := strings.ToLower(strings.TrimPrefix(origin, "./"))
	return uuid.NewSHA1(NamespaceScriptIdentity, []byte(strings.ToLower(sourceName)+"/"+normalized))
}
