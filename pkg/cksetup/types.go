package cksetup

import (
	"fmt"

	"github.com/google/uuid"
)

// ParsedName is the structured form of a script name such as
// "Test.Install.1.1.1.to.1.2.3.sql". It is created once, at discovery time.
type ParsedName struct {
	// TargetFullName identifies the object or container the script applies to.
	TargetFullName string

	// Step is the lifecycle step; StepNone when the name carries no step suffix.
	Step SetupStep

	// IsContent marks the "...Content" variant of the step.
	IsContent bool

	// FromVersion is set only for migration scripts.
	FromVersion *Version

	// Version is the version the script brings the target to.
	// Nil for the unconditional script.
	Version *Version

	// Extension is the stripped file extension without the dot ("" when none).
	Extension string

	// Origin is the free-form discovery context (relative path, resource name).
	Origin string
}

// Phase returns the effective phase of the script.
func (n ParsedName) Phase() Phase {
	return Phase{Step: n.Step.Executable(), Content: n.IsContent}
}

// IsUpgradeScript reports whether the script migrates from a lower version.
func (n ParsedName) IsUpgradeScript() bool {
	return n.FromVersion != nil && n.Version != nil && n.FromVersion.Less(*n.Version)
}

// IsDowngradeScript reports whether the script migrates from a higher version.
// Downgrade scripts are never selected.
func (n ParsedName) IsDowngradeScript() bool {
	return n.FromVersion != nil && n.Version != nil && n.Version.Less(*n.FromVersion)
}

// IsFullInstall reports whether the script establishes Version from scratch.
func (n ParsedName) IsFullInstall() bool {
	return n.FromVersion == nil && n.Version != nil
}

// IsUnconditional reports whether the script runs regardless of versions.
func (n ParsedName) IsUnconditional() bool {
	return n.Version == nil
}

// ScriptSource is the named origin a script was registered from.
// When two sources provide the same slot, the higher Index wins.
type ScriptSource struct {
	Name  string
	Index int
}

// ContentLoader loads the textual content of a script on demand.
type ContentLoader interface {
	LoadContent() (string, error)
}

// ContentLoaderFunc adapts a function to ContentLoader.
type ContentLoaderFunc func() (string, error)

// LoadContent calls f.
func (f ContentLoaderFunc) LoadContent() (string, error) { return f() }

// StaticContent returns a loader that always yields content.
func StaticContent(content string) ContentLoader {
	return ContentLoaderFunc(func() (string, error) { return content, nil })
}

// Script is a discovered, parsed script ready to be registered.
// Scripts are immutable once created.
type Script struct {
	id         uuid.UUID
	name       ParsedName
	scriptType string
	source     ScriptSource
	loader     ContentLoader
}

// NewScript creates a script. The script id is derived from the source name
// and name.Origin.
//
// Panics if loader is nil.
func NewScript(name ParsedName, scriptType string, source ScriptSource, loader ContentLoader) *Script {
	if loader == nil {
		panic("loader cannot be nil")
	}
	return &Script{
		id:         ScriptID(source.Name, name.Origin),
		name:       name,
		scriptType: scriptType,
		source:     source,
		loader:     loader,
	}
}

func (s *Script) ID() uuid.UUID        { return s.id }
func (s *Script) Name() ParsedName     { return s.name }
func (s *Script) ScriptType() string   { return s.scriptType }
func (s *Script) Source() ScriptSource { return s.source }

// LoadContent returns the script content.
func (s *Script) LoadContent() (string, error) {
	return s.loader.LoadContent()
}

// String identifies the script in log and error messages.
func (s *Script) String() string {
	if s.name.Origin != "" {
		return fmt.Sprintf("%s:%s", s.source.Name, s.name.Origin)
	}
	return fmt.Sprintf("%s:%s", s.source.Name, s.name.TargetFullName)
}

// ScriptVector is the ordered list of scripts to run for one phase of one
// target and handler.
type ScriptVector struct {
	Scripts []*Script

	// Final is the version actually reached, which may be short of the
	// requested target. Nil when no version is involved.
	Final *Version

	// HasTheNoVersionScript is true when the unconditional script was
	// appended as the last element.
	HasTheNoVersionScript bool
}

// IsEmpty reports whether there is nothing to run.
func (v ScriptVector) IsEmpty() bool { return len(v.Scripts) == 0 }

// SetupItem is a target object managed by a setup run. Children are
// containers' declared items, in the order the dependency sorter decided.
type SetupItem struct {
	FullName       string
	DesiredVersion *Version
	Children       []*SetupItem
}

// Walk calls fn for the item and all its descendants in pre-order.
func (i *SetupItem) Walk(fn func(*SetupItem)) {
	fn(i)
	for _, child := range i.Children {
		child.Walk(fn)
	}
}
