package registry

import (
	"sort"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// ScriptSet holds every registered script of one target object, bucketed
// by script type.
type ScriptSet struct {
	fullName string
	handlers map[string]*ForHandler
}

func newScriptSet(fullName string) *ScriptSet {
	return &ScriptSet{fullName: fullName, handlers: make(map[string]*ForHandler)}
}

// FullName returns the target name with the casing that was registered first.
func (s *ScriptSet) FullName() string { return s.fullName }

// ForHandler returns the bucket of a script type, or nil.
func (s *ScriptSet) ForHandler(scriptType string) *ForHandler {
	return s.handlers[scriptType]
}

// ScriptTypes returns the script types present in the set, sorted.
func (s *ScriptSet) ScriptTypes() []string {
	types := make([]string, 0, len(s.handlers))
	for t := range s.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (s *ScriptSet) bucket(scriptType string) *ForHandler {
	h, ok := s.handlers[scriptType]
	if !ok {
		h = newForHandler(scriptType)
		s.handlers[scriptType] = h
	}
	return h
}

// GetScriptVector resolves the vector of a script type; an absent type
// yields an empty vector.
func (s *ScriptSet) GetScriptVector(scriptType string, phase cksetup.Phase, from, to *cksetup.Version) cksetup.ScriptVector {
	h := s.handlers[scriptType]
	if h == nil {
		return cksetup.ScriptVector{}
	}
	return h.GetScriptVector(phase, from, to)
}

// HasVersionedScripts reports whether any script of the set carries a version.
func (s *ScriptSet) HasVersionedScripts() bool {
	for _, h := range s.handlers {
		if h.hasVersioned() {
			return true
		}
	}
	return false
}
