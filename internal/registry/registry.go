package registry

import (
	"fmt"
	"strings"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Registry is the frozen result of a Builder. It is read-only and safe for
// concurrent use.
type Registry struct {
	sets          map[string]*ScriptSet
	folded        map[string]string
	caseConflicts map[string][]*cksetup.Script
	order         []string
}

// Targets returns registered target names in registration order.
func (r *Registry) Targets() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Find returns the script set registered under exactly fullName.
func (r *Registry) Find(fullName string) (*ScriptSet, bool) {
	set, ok := r.sets[fullName]
	return set, ok
}

// Lookup returns the script set of fullName and escalates case ambiguities:
// when fullName is registered with a different casing, or when a script
// addressing it with a different casing was rejected, the target cannot be
// addressed unambiguously and ErrCaseMismatch is returned.
// A target without scripts yields (nil, nil).
func (r *Registry) Lookup(fullName string) (*ScriptSet, error) {
	registered, ok := r.folded[strings.ToLower(fullName)]
	if !ok {
		return nil, nil
	}
	if registered != fullName {
		return nil, fmt.Errorf("item %q is addressed by scripts as %q: %w", fullName, registered, cksetup.ErrCaseMismatch)
	}
	if rejected := r.caseConflicts[registered]; len(rejected) > 0 {
		return nil, fmt.Errorf("target %q: script %s uses target name %q: %w",
			registered, rejected[0], rejected[0].Name().TargetFullName, cksetup.ErrCaseMismatch)
	}
	return r.sets[registered], nil
}

// GetScriptVector resolves the vector of one target, script type and phase.
func (r *Registry) GetScriptVector(fullName, scriptType string, phase cksetup.Phase, from, to *cksetup.Version) (cksetup.ScriptVector, error) {
	set, err := r.Lookup(fullName)
	if err != nil || set == nil {
		return cksetup.ScriptVector{}, err
	}
	return set.GetScriptVector(scriptType, phase, from, to), nil
}

// CaseConflicts returns the scripts rejected because of a casing collision
// with the given registered target.
func (r *Registry) CaseConflicts(fullName string) []*cksetup.Script {
	list := r.caseConflicts[fullName]
	out := make([]*cksetup.Script, len(list))
	copy(out, list)
	return out
}
