package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/signature-opensource/cksetup/internal/handlers"
	"github.com/signature-opensource/cksetup/internal/registry"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// PlannerOptions tunes planning.
type PlannerOptions struct {
	// Strict refuses plans that leave an item short of its desired version.
	Strict bool
}

// Planner turns a registry and the items' version state into a Plan.
// Thread-Safety: safe for concurrent Plan calls when the state provider is.
type Planner struct {
	registry *registry.Registry
	handlers *handlers.Set
	state    cksetup.VersionStateProvider
	logger   cksetup.Logger
	opts     PlannerOptions
}

// NewPlanner creates a planner.
//
// Panics on nil dependencies.
func NewPlanner(reg *registry.Registry, hs *handlers.Set, state cksetup.VersionStateProvider, logger cksetup.Logger, opts PlannerOptions) *Planner {
	if reg == nil {
		panic("registry cannot be nil")
	}
	if hs == nil {
		panic("handlers cannot be nil")
	}
	if state == nil {
		panic("state cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Planner{registry: reg, handlers: hs, state: state, logger: logger, opts: opts}
}

type itemContext struct {
	state     *ItemState
	set       *registry.ScriptSet
	reached   *cksetup.Version
	versioned bool
}

// Plan computes the steps of a run over the item trees rooted at roots.
func (p *Planner) Plan(ctx context.Context, roots []*cksetup.SetupItem) (*Plan, error) {
	ordered, err := p.handlers.Order()
	if err != nil {
		return nil, err
	}

	items, err := p.prepare(ctx, roots)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	var visit func(item *cksetup.SetupItem, step cksetup.SetupStep)
	visit = func(item *cksetup.SetupItem, step cksetup.SetupStep) {
		ic := items[item]
		p.addPhase(plan, ic, ordered, cksetup.Phase{Step: step})
		for _, child := range item.Children {
			visit(child, step)
		}
		p.addPhase(plan, ic, ordered, cksetup.Phase{Step: step, Content: true})
	}
	for _, step := range cksetup.ExecutableSteps {
		for _, root := range roots {
			visit(root, step)
		}
	}

	var partial []error
	for _, root := range roots {
		root.Walk(func(item *cksetup.SetupItem) {
			ic := items[item]
			p.settle(ic)
			plan.States = append(plan.States, ic.state)
			if ic.state.Partial() {
				p.logger.Warn("%s: desired version %s is not reachable, stopping at %s",
					item.FullName, cksetup.VersionString(ic.state.Desired), cksetup.VersionString(ic.state.Reached))
				partial = append(partial, fmt.Errorf("%s: reached %s instead of %s: %w",
					item.FullName, cksetup.VersionString(ic.state.Reached), cksetup.VersionString(ic.state.Desired), cksetup.ErrPartialMigration))
			}
		})
	}
	if p.opts.Strict && len(partial) > 0 {
		return nil, errors.Join(partial...)
	}

	p.logger.Verbose("Planned %d step(s), %d script(s) for %d item(s)", len(plan.Steps), plan.ScriptCount(), len(plan.States))
	return plan, nil
}

// prepare validates the items, resolves their script sets and reads their state.
func (p *Planner) prepare(ctx context.Context, roots []*cksetup.SetupItem) (map[*cksetup.SetupItem]*itemContext, error) {
	items := make(map[*cksetup.SetupItem]*itemContext)
	names := make(map[string]bool)
	var errs []error

	for _, root := range roots {
		root.Walk(func(item *cksetup.SetupItem) {
			if item.FullName == "" {
				errs = append(errs, fmt.Errorf("item with empty name: %w", cksetup.ErrInvalidConfig))
				return
			}
			if names[item.FullName] {
				errs = append(errs, fmt.Errorf("item %q declared twice: %w", item.FullName, cksetup.ErrInvalidConfig))
				return
			}
			names[item.FullName] = true

			set, err := p.registry.Lookup(item.FullName)
			if err != nil {
				errs = append(errs, err)
				return
			}
			if set != nil {
				for _, t := range set.ScriptTypes() {
					if _, ok := p.handlers.Get(t); !ok {
						errs = append(errs, fmt.Errorf("%s has %q scripts and no handler runs them: %w",
							item.FullName, t, cksetup.ErrMissingExecutor))
					}
				}
			}
			items[item] = &itemContext{state: &ItemState{Item: item}, set: set}
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, root := range roots {
		var stateErr error
		root.Walk(func(item *cksetup.SetupItem) {
			if stateErr != nil {
				return
			}
			installed, desired, err := p.state.VersionState(ctx, item)
			if err != nil {
				stateErr = fmt.Errorf("failed to read version state of %s: %w", item.FullName, err)
				return
			}
			ic := items[item]
			ic.state.Installed = installed
			ic.state.Desired = desired
		})
		if stateErr != nil {
			return nil, stateErr
		}
	}
	return items, nil
}

func (p *Planner) addPhase(plan *Plan, ic *itemContext, ordered []cksetup.ScriptHandler, phase cksetup.Phase) {
	if ic.set == nil {
		return
	}
	st := ic.state
	for _, h := range ordered {
		vector := ic.set.GetScriptVector(h.ScriptType(), phase, st.Installed, st.Desired)
		gap := vector.IsEmpty() && vector.Final != nil
		if vector.Final != nil && (gap || !vector.IsEmpty()) {
			ic.versioned = true
			if ic.reached == nil || vector.Final.Less(*ic.reached) {
				ic.reached = vector.Final
			}
		}
		if vector.IsEmpty() {
			continue
		}
		p.logger.Verbose("%s %s [%s]: %d script(s)", st.Item.FullName, phase, h.ScriptType(), len(vector.Scripts))
		plan.Steps = append(plan.Steps, PlanStep{Item: st.Item, Phase: phase, Handler: h, Vector: vector})
	}
}

// settle computes the version an item reaches.
func (p *Planner) settle(ic *itemContext) {
	st := ic.state
	switch {
	case st.Desired == nil:
		st.Reached = nil
	case st.Installed != nil && st.Desired.Less(*st.Installed):
		p.logger.Warn("%s: installed version %s is above desired %s, downgrade ignored",
			st.Item.FullName, st.Installed, st.Desired)
		st.Reached = st.Installed
	case ic.versioned:
		st.Reached = ic.reached
	case st.Installed == nil && ic.set != nil && ic.set.HasVersionedScripts():
		// Scripts exist but offer no full install to start from.
		st.Reached = nil
	default:
		st.Reached = st.Desired
	}
}
