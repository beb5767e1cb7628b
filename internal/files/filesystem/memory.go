package filesystem

import (
	"fmt"
	"sort"
	"strings"
	"testing/fstest"
	"time"
)

// Memory is an in-memory Provider. Paths are slash-separated and relative to
// an implicit root. Not safe for concurrent mutation.
type Memory struct {
	files fstest.MapFS
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory() *Memory {
	return &Memory{files: fstest.MapFS{}}
}

// AddFile adds or replaces a file; parent directories are implied.
func (m *Memory) AddFile(p, content string) *Memory {
	m.files[cleanFSPath(p)] = &fstest.MapFile{Data: []byte(content), Mode: 0o644, ModTime: time.Now()}
	return m
}

// Paths returns every file path, sorted.
func (m *Memory) Paths() []string {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *Memory) Open(p string) (Directory, error) {
	full := cleanFSPath(p)
	if _, isFile := m.files[full]; isFile {
		return nil, fmt.Errorf("path is not a directory: %s", p)
	}
	if full != "." && !m.hasPrefix(full+"/") {
		return nil, fmt.Errorf("directory not found: %s", p)
	}
	return &fsDirectory{fsys: m.files, path: full}, nil
}

func (m *Memory) hasPrefix(prefix string) bool {
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *Memory) ReadFile(p string) ([]byte, error) {
	f, ok := m.files[cleanFSPath(p)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", p)
	}
	return f.Data, nil
}
