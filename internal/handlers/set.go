package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Set is a collection of handlers keyed by script type.
type Set struct {
	handlers map[string]cksetup.ScriptHandler
}

// NewSet creates a set. Script types must be non-empty and unique.
func NewSet(handlers ...cksetup.ScriptHandler) (*Set, error) {
	s := &Set{handlers: make(map[string]cksetup.ScriptHandler, len(handlers))}
	for _, h := range handlers {
		if err := s.Add(h); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a handler.
func (s *Set) Add(h cksetup.ScriptHandler) error {
	if h == nil {
		panic("handler cannot be nil")
	}
	t := h.ScriptType()
	if t == "" {
		return fmt.Errorf("handler with empty script type: %w", cksetup.ErrInvalidConfig)
	}
	if _, exists := s.handlers[t]; exists {
		return fmt.Errorf("handler for script type %q registered twice: %w", t, cksetup.ErrInvalidConfig)
	}
	s.handlers[t] = h
	return nil
}

// Get returns the handler of a script type.
func (s *Set) Get(scriptType string) (cksetup.ScriptHandler, bool) {
	h, ok := s.handlers[scriptType]
	return h, ok
}

// Types returns the registered script types, sorted.
func (s *Set) Types() []string {
	types := make([]string, 0, len(s.handlers))
	for t := range s.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of handlers.
func (s *Set) Len() int { return len(s.handlers) }

// Order returns the handlers so that each one comes after the handlers it
// requires.
func (s *Set) Order() ([]cksetup.ScriptHandler, error) {
	// Depth-first search: permanent holds finished handlers, temporary the
	// current path.
	permanent := make(map[string]bool, len(s.handlers))
	temporary := make(map[string]bool)
	var path []string
	ordered := make([]cksetup.ScriptHandler, 0, len(s.handlers))

	var visit func(t string) error
	visit = func(t string) error {
		if permanent[t] {
			return nil
		}
		if temporary[t] {
			cycle := append(pathFrom(path, t), t)
			return fmt.Errorf("%s: %w", strings.Join(cycle, " -> "), cksetup.ErrHandlerCycle)
		}
		h := s.handlers[t]

		temporary[t] = true
		path = append(path, t)

		requires := h.Requires()
		sorted := make([]cksetup.Requirement, len(requires))
		copy(sorted, requires)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Type < sorted[j].Type })

		for _, req := range sorted {
			if _, ok := s.handlers[req.Type]; !ok {
				if req.Hard {
					return fmt.Errorf("handler %q requires %q: %w", t, req.Type, cksetup.ErrMissingRequirement)
				}
				continue
			}
			if err := visit(req.Type); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(temporary, t)
		permanent[t] = true
		ordered = append(ordered, h)
		return nil
	}

	for _, t := range s.Types() {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func pathFrom(path []string, t string) []string {
	for i, p := range path {
		if p == t {
			return append([]string(nil), path[i:]...)
		}
	}
	return []string{t}
}
