package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

type fsFile struct {
	fsys    fs.FS
	path    string
	relPath string
	info    fs.FileInfo
}

func (f *fsFile) Path() string                 { return f.path }
func (f *fsFile) RelativePath() string         { return f.relPath }
func (f *fsFile) Info() FileInfo               { return f.info }
func (f *fsFile) ReadContent() ([]byte, error) { return fs.ReadFile(f.fsys, f.path) }

type fsDirectory struct {
	fsys fs.FS
	path string
}

func (d *fsDirectory) Path() string { return d.path }

func (d *fsDirectory) Walk(fn func(File) error) error {
	return fs.WalkDir(d.fsys, d.path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		rel := p
		if d.path != "." {
			rel = strings.TrimPrefix(p, d.path+"/")
		}
		file := &fsFile{fsys: d.fsys, path: p, relPath: rel, info: info}
		return safeCall(p, func() error { return fn(file) })
	})
}

// FS is a Provider over an fs.FS, rooted at a subdirectory.
type FS struct {
	fsys fs.FS
	root string
}

// NewFS wraps fsys. Paths given to Open and ReadFile are relative to root.
func NewFS(fsys fs.FS, root string) *FS {
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	return &FS{fsys: fsys, root: cleanFSPath(root)}
}

func cleanFSPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "."
	}
	return p
}

func (f *FS) resolve(p string) string {
	return cleanFSPath(path.Join(f.root, strings.ReplaceAll(p, "\\", "/")))
}

func (f *FS) Open(p string) (Directory, error) {
	full := f.resolve(p)
	info, err := fs.Stat(f.fsys, full)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", p, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", p)
	}
	return &fsDirectory{fsys: f.fsys, path: full}, nil
}

func (f *FS) ReadFile(p string) ([]byte, error) {
	content, err := fs.ReadFile(f.fsys, f.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", p, err)
	}
	return content, nil
}
