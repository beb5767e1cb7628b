package setup

import (
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// ItemState is the version state of one item in a plan.
type ItemState struct {
	Item      *cksetup.SetupItem
	Installed *cksetup.Version
	Desired   *cksetup.Version

	// Reached is the version the item will be at once the plan ran. Nil when
	// no version is involved.
	Reached *cksetup.Version
}

// Partial reports whether the desired version will not be reached.
func (s *ItemState) Partial() bool {
	return s.Desired != nil && (s.Reached == nil || s.Reached.Less(*s.Desired))
}

// Changed reports whether running the plan moves the recorded version.
func (s *ItemState) Changed() bool {
	return s.Reached != nil && !cksetup.EqualVersions(s.Installed, s.Reached)
}

// PlanStep is one non-empty phase of one item for one handler.
type PlanStep struct {
	Item    *cksetup.SetupItem
	Phase   cksetup.Phase
	Handler cksetup.ScriptHandler
	Vector  cksetup.ScriptVector
}

// Plan is the ordered list of steps of a setup run.
type Plan struct {
	Steps  []PlanStep
	States []*ItemState
}

// State returns the state of an item.
func (p *Plan) State(fullName string) (*ItemState, bool) {
	for _, s := range p.States {
		if s.Item.FullName == fullName {
			return s, true
		}
	}
	return nil, false
}

// ScriptCount returns the number of scripts the plan runs.
func (p *Plan) ScriptCount() int {
	n := 0
	for _, step := range p.Steps {
		n += len(step.Vector.Scripts)
	}
	return n
}

// IsEmpty reports whether the plan runs nothing.
func (p *Plan) IsEmpty() bool { return len(p.Steps) == 0 }

// PartialItems returns the states of the items left short of their desired
// version.
func (p *Plan) PartialItems() []*ItemState {
	var out []*ItemState
	for _, s := range p.States {
		if s.Partial() {
			out = append(out, s)
		}
	}
	return out
}
