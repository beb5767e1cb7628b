// Package resolver selects the shortest chain of migration edges bridging
// an installed version to a target version.
//
// The search is a greedy interval cover over the version line: from the
// current reach, among every edge that starts at or below it, the one that
// lands farthest (without exceeding the target, which callers guarantee by
// filtering) is taken. Shortcut migrations therefore win over step-by-step
// chains. When no edge extends the reach the search stops and reports the
// partial reach instead of failing.
package resolver

import (
	"sort"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Edge is an upgrade migration from From to To carrying its script.
type Edge struct {
	From   cksetup.Version
	To     cksetup.Version
	Script *cksetup.Script
}

// EdgeOf builds the edge of an upgrade script. ok is false for any script
// that is not an upgrade.
func EdgeOf(s *cksetup.Script) (Edge, bool) {
	n := s.Name()
	if !n.IsUpgradeScript() {
		return Edge{}, false
	}
	return Edge{From: *n.FromVersion, To: *n.Version, Script: s}, true
}

// Resolve computes the covering chain from floor towards target.
//
// candidates must only hold upgrade edges with From >= floor and To <= target;
// Resolve performs no direction validation. The candidates slice is not
// modified. reached is the highest version the chain attains and may be
// lower than target.
func Resolve(candidates []Edge, floor, target cksetup.Version) (chain []Edge, reached cksetup.Version) {
	sorted := make([]Edge, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.Less(sorted[j].From)
	})

	reach := floor
	i := 0
	for reach.Less(target) {
		var best *Edge
		bestEnd := reach
		for i < len(sorted) && sorted[i].From.Compare(reach) <= 0 {
			if bestEnd.Less(sorted[i].To) {
				bestEnd = sorted[i].To
				best = &sorted[i]
			}
			i++
		}
		if best == nil {
			break
		}
		chain = append(chain, *best)
		reach = bestEnd
	}
	return chain, reach
}
