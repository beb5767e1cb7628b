// Package filesystem abstracts the directories script sources are read from.
//
// Implementations:
//   - OS: directories on disk
//   - FS: any fs.FS, such as an embed.FS compiled into a host binary
//   - Memory: in-memory trees for tests
//
// Walk visits regular files only, in lexical path order, so discovery is
// deterministic on every implementation.
package filesystem
