package registry

import (
	"github.com/signature-opensource/cksetup/internal/resolver"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// ForHandler holds the scripts of one target for one script type.
type ForHandler struct {
	scriptType string
	byPhase    map[cksetup.Phase][]*cksetup.Script
}

func newForHandler(scriptType string) *ForHandler {
	return &ForHandler{
		scriptType: scriptType,
		byPhase:    make(map[cksetup.Phase][]*cksetup.Script),
	}
}

// ScriptType returns the handler key of the bucket.
func (h *ForHandler) ScriptType() string { return h.scriptType }

// Scripts returns the scripts of a phase in registration order.
func (h *ForHandler) Scripts(phase cksetup.Phase) []*cksetup.Script {
	list := h.byPhase[phase]
	out := make([]*cksetup.Script, len(list))
	copy(out, list)
	return out
}

// Count returns the number of registered scripts over all phases.
func (h *ForHandler) Count() int {
	n := 0
	for _, list := range h.byPhase {
		n += len(list)
	}
	return n
}

func sameSlot(a, b cksetup.ParsedName) bool {
	return a.Phase() == b.Phase() &&
		cksetup.EqualVersions(a.FromVersion, b.FromVersion) &&
		cksetup.EqualVersions(a.Version, b.Version)
}

// slot returns the index of the script occupying the same slot as name, or -1.
func (h *ForHandler) slot(name cksetup.ParsedName) int {
	for i, s := range h.byPhase[name.Phase()] {
		if sameSlot(s.Name(), name) {
			return i
		}
	}
	return -1
}

func (h *ForHandler) unconditional(phase cksetup.Phase) *cksetup.Script {
	for _, s := range h.byPhase[phase] {
		if s.Name().IsUnconditional() {
			return s
		}
	}
	return nil
}

// GetScriptVector returns the scripts to run for phase when moving the
// target from the installed version to the desired version.
//
//   - to == nil: only the unconditional script, when registered.
//   - from == nil: the highest full-install script not above to, followed
//     by the migration chain from its version.
//   - otherwise: the migration chain from from. When the phase has
//     migrations but none starts at or above from, no script runs and
//     Final stays at from.
//
// The unconditional script is appended last whenever something else runs.
func (h *ForHandler) GetScriptVector(phase cksetup.Phase, from, to *cksetup.Version) cksetup.ScriptVector {
	noVersion := h.unconditional(phase)

	if to == nil {
		if noVersion == nil {
			return cksetup.ScriptVector{}
		}
		return cksetup.ScriptVector{
			Scripts:               []*cksetup.Script{noVersion},
			HasTheNoVersionScript: true,
		}
	}

	var versionStep []*cksetup.Script
	for _, s := range h.byPhase[phase] {
		n := s.Name()
		if n.Version == nil || n.IsDowngradeScript() || to.Less(*n.Version) {
			continue
		}
		versionStep = append(versionStep, s)
	}

	var scripts []*cksetup.Script
	var final cksetup.Version

	if from == nil {
		var baseline *cksetup.Script
		for _, s := range versionStep {
			n := s.Name()
			if !n.IsFullInstall() {
				continue
			}
			if baseline == nil || baseline.Name().Version.Less(*n.Version) {
				baseline = s
			}
		}
		if baseline == nil {
			return cksetup.ScriptVector{}
		}

		floor := *baseline.Name().Version
		chain, reached := resolver.Resolve(upgradeEdges(versionStep, floor), floor, *to)
		scripts = append([]*cksetup.Script{baseline}, chainScripts(chain)...)
		final = reached
	} else {
		candidates := upgradeEdges(versionStep, *from)
		if len(candidates) == 0 {
			if !h.hasMigrations(phase) {
				return cksetup.ScriptVector{}
			}
			stuck := *from
			return cksetup.ScriptVector{Final: &stuck}
		}

		chain, reached := resolver.Resolve(candidates, *from, *to)
		scripts = chainScripts(chain)
		final = reached
	}

	vector := cksetup.ScriptVector{Scripts: scripts, Final: &final}
	if len(scripts) > 0 && noVersion != nil {
		vector.Scripts = append(vector.Scripts, noVersion)
		vector.HasTheNoVersionScript = true
	}
	return vector
}

// upgradeEdges keeps the migrations that start at or above floor.
func upgradeEdges(scripts []*cksetup.Script, floor cksetup.Version) []resolver.Edge {
	var edges []resolver.Edge
	for _, s := range scripts {
		n := s.Name()
		if n.FromVersion == nil || n.FromVersion.Less(floor) {
			continue
		}
		if e, ok := resolver.EdgeOf(s); ok {
			edges = append(edges, e)
		}
	}
	return edges
}

func chainScripts(chain []resolver.Edge) []*cksetup.Script {
	out := make([]*cksetup.Script, len(chain))
	for i, e := range chain {
		out[i] = e.Script
	}
	return out
}

// hasMigrations reports whether phase holds at least one upgrade script.
func (h *ForHandler) hasMigrations(phase cksetup.Phase) bool {
	for _, s := range h.byPhase[phase] {
		n := s.Name()
		if n.FromVersion != nil && !n.IsDowngradeScript() {
			return true
		}
	}
	return false
}

func (h *ForHandler) hasVersioned() bool {
	for _, list := range h.byPhase {
		for _, s := range list {
			if !s.Name().IsUnconditional() {
				return true
			}
		}
	}
	return false
}
