package filesystem

import (
	"io/fs"
)

// FileInfo is fs.FileInfo.
type FileInfo = fs.FileInfo

// File is a regular file found under a directory.
type File interface {
	// Path returns the full path of the file within its provider.
	Path() string

	// RelativePath returns the slash-separated path relative to the walked directory.
	RelativePath() string

	// Info returns file metadata.
	Info() FileInfo

	// ReadContent reads the file.
	ReadContent() ([]byte, error)
}

// Directory is a directory tree that can be walked.
type Directory interface {
	Path() string

	// Walk calls fn for every regular file under the directory. Walking stops
	// at the first error fn returns.
	Walk(fn func(File) error) error
}

// Provider opens directories and reads files.
type Provider interface {
	Open(path string) (Directory, error)
	ReadFile(path string) ([]byte, error)
}

// safeCall runs fn and turns a panic into an error.
func safeCall(path string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WalkPanicError{Path: path, Value: r}
		}
	}()
	return fn()
}

// WalkPanicError reports a walk callback that panicked.
type WalkPanicError struct {
	Path  string
	Value any
}

func (e *WalkPanicError) Error() string {
	return "walk callback panicked at " + e.Path
}
