package scanner

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/signature-opensource/cksetup/internal/files/filesystem"
	"github.com/signature-opensource/cksetup/internal/naming"
	"github.com/signature-opensource/cksetup/internal/registry"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Source is a script source and the directory it is read from.
type Source struct {
	cksetup.ScriptSource
	Path string
}

// Result counts the files seen by a scan.
type Result struct {
	// Discovered is the number of regular files walked.
	Discovered int

	// Registered is the number of scripts the builder accepted.
	Registered int

	// Rejected counts unparsable names and scripts the builder refused.
	Rejected int

	// Skipped counts files without an enabled script type.
	Skipped int
}

// Scanner walks script sources.
// Safe for concurrent use when the provider is; a builder is not.
type Scanner struct {
	fs     filesystem.Provider
	logger cksetup.Logger
	types  map[string]bool
}

// New creates a scanner registering files of the given script types.
//
// Panics if fs or logger is nil.
func New(fs filesystem.Provider, logger cksetup.Logger, scriptTypes ...string) *Scanner {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	types := make(map[string]bool, len(scriptTypes))
	for _, t := range scriptTypes {
		types[strings.ToLower(t)] = true
	}
	return &Scanner{fs: fs, logger: logger, types: types}
}

// Scan registers every source in b, then walks it. Sources are scanned in
// the given order.
func (s *Scanner) Scan(b *registry.Builder, sources ...Source) (Result, error) {
	var result Result
	for _, src := range sources {
		if err := b.RegisterSource(src.ScriptSource); err != nil {
			return result, err
		}
	}

	for _, src := range sources {
		dir, err := s.fs.Open(src.Path)
		if err != nil {
			return result, fmt.Errorf("source %s: %w", src.Name, err)
		}
		s.logger.Verbose("Scanning source %s (index %d) at %s", src.Name, src.Index, dir.Path())

		err = dir.Walk(func(f filesystem.File) error {
			result.Discovered++
			return s.scanFile(b, src, f, &result)
		})
		if err != nil {
			return result, fmt.Errorf("source %s: %w", src.Name, err)
		}
	}

	s.logger.Verbose("Scanned %d file(s): %d registered, %d rejected, %d skipped",
		result.Discovered, result.Registered, result.Rejected, result.Skipped)
	return result, nil
}

func (s *Scanner) scanFile(b *registry.Builder, src Source, f filesystem.File, result *Result) error {
	rel := f.RelativePath()
	base := path.Base(rel)
	scriptType := strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))

	if strings.HasPrefix(base, ".") || !s.types[scriptType] {
		s.logger.Verbose("Skipping %s:%s", src.Name, rel)
		result.Skipped++
		return nil
	}

	name, err := naming.TryParse(base, rel, true)
	if err != nil {
		s.logger.Warn("Ignoring %s:%s: %v", src.Name, rel, err)
		result.Rejected++
		return nil
	}

	script := cksetup.NewScript(name, scriptType, src.ScriptSource, fileContent{f})
	if err := b.Add(script, s.logger); err != nil {
		if errors.Is(err, cksetup.ErrRegistryFrozen) {
			return err
		}
		result.Rejected++
		return nil
	}
	result.Registered++
	return nil
}

type fileContent struct {
	file filesystem.File
}

func (c fileContent) LoadContent() (string, error) {
	data, err := c.file.ReadContent()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", c.file.Path(), err)
	}
	return string(data), nil
}
