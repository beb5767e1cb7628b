package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type osFile struct {
	absPath string
	relPath string
	info    fs.FileInfo
}

func (f *osFile) Path() string                 { return f.absPath }
func (f *osFile) RelativePath() string         { return f.relPath }
func (f *osFile) Info() FileInfo               { return f.info }
func (f *osFile) ReadContent() ([]byte, error) { return os.ReadFile(f.absPath) }

type osDirectory struct {
	absPath string
}

func (d *osDirectory) Path() string { return d.absPath }

func (d *osDirectory) Walk(fn func(File) error) error {
	return filepath.WalkDir(d.absPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(d.absPath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path of %s: %w", path, err)
		}
		file := &osFile{absPath: path, relPath: filepath.ToSlash(rel), info: info}
		return safeCall(path, func() error { return fn(file) })
	})
}

// OS is the Provider of the local filesystem.
type OS struct{}

// NewOS returns the local filesystem provider.
func NewOS() OS { return OS{} }

func (OS) Open(path string) (Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return &osDirectory{absPath: abs}, nil
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
