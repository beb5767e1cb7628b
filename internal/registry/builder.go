package registry

import (
	"fmt"
	"strings"

	"github.com/signature-opensource/cksetup/internal/logging"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Builder accumulates scripts during discovery.
// Builder is NOT safe for concurrent use.
type Builder struct {
	sources       map[string]cksetup.ScriptSource
	sets          map[string]*ScriptSet
	folded        map[string]string
	caseConflicts map[string][]*cksetup.Script
	order         []string
	built         bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		sources:       make(map[string]cksetup.ScriptSource),
		sets:          make(map[string]*ScriptSet),
		folded:        make(map[string]string),
		caseConflicts: make(map[string][]*cksetup.Script),
	}
}

// RegisterSource declares a script source. Source names are unique.
func (b *Builder) RegisterSource(source cksetup.ScriptSource) error {
	if b.built {
		return cksetup.ErrRegistryFrozen
	}
	if source.Name == "" {
		return fmt.Errorf("script source name is required: %w", cksetup.ErrInvalidConfig)
	}
	if _, exists := b.sources[source.Name]; exists {
		return fmt.Errorf("script source %q registered twice: %w", source.Name, cksetup.ErrInvalidConfig)
	}
	b.sources[source.Name] = source
	return nil
}

// Add registers a script. A nil error means the script now occupies its
// slot. Rejections are logged as warnings and returned:
//   - ErrUnknownSource: the script's source was never registered
//   - ErrCaseMismatch: the target differs from a registered one only by case
//   - ErrShadowedScript: a higher priority source already holds the slot
//   - ErrDuplicateSlot: a script of equal priority already holds the slot
//
// Overrides are logged in both directions.
func (b *Builder) Add(script *cksetup.Script, logger cksetup.Logger) error {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if b.built {
		return cksetup.ErrRegistryFrozen
	}

	source, ok := b.sources[script.Source().Name]
	if !ok {
		logger.Warn("Ignoring script %s: unknown script source %q", script, script.Source().Name)
		return fmt.Errorf("script %s: source %q: %w", script, script.Source().Name, cksetup.ErrUnknownSource)
	}

	name := script.Name()
	fullName := name.TargetFullName
	key := strings.ToLower(fullName)
	if registered, exists := b.folded[key]; exists && registered != fullName {
		b.caseConflicts[registered] = append(b.caseConflicts[registered], script)
		logger.Warn("Ignoring script %s: target %q differs only by case from registered target %q", script, fullName, registered)
		return fmt.Errorf("script %s: target %q conflicts with %q: %w", script, fullName, registered, cksetup.ErrCaseMismatch)
	}

	set, ok := b.sets[fullName]
	if !ok {
		set = newScriptSet(fullName)
		b.sets[fullName] = set
		b.folded[key] = fullName
		b.order = append(b.order, fullName)
	}

	bucket := set.bucket(script.ScriptType())
	i := bucket.slot(name)
	if i < 0 {
		phase := name.Phase()
		bucket.byPhase[phase] = append(bucket.byPhase[phase], script)
		return nil
	}

	existing := bucket.byPhase[name.Phase()][i]
	existingSource := b.sources[existing.Source().Name]
	switch {
	case source.Index > existingSource.Index:
		logger.Info("Script %s (source %q, index %d) overrides %s (source %q, index %d)",
			script, source.Name, source.Index, existing, existingSource.Name, existingSource.Index)
		bucket.byPhase[name.Phase()][i] = script
		return nil
	case source.Index < existingSource.Index:
		logger.Info("Script %s (source %q, index %d) is overridden by %s (source %q, index %d)",
			script, source.Name, source.Index, existing, existingSource.Name, existingSource.Index)
		return fmt.Errorf("script %s: slot held by %s: %w", script, existing, cksetup.ErrShadowedScript)
	default:
		logger.Warn("Ignoring script %s: same slot as %s with equal source priority %d", script, existing, source.Index)
		return fmt.Errorf("script %s: slot held by %s: %w", script, existing, cksetup.ErrDuplicateSlot)
	}
}

// Build freezes the builder. Subsequent Add and RegisterSource calls fail
// with ErrRegistryFrozen.
func (b *Builder) Build() *Registry {
	b.built = true
	return &Registry{
		sets:          b.sets,
		folded:        b.folded,
		caseConflicts: b.caseConflicts,
		order:         b.order,
	}
}
