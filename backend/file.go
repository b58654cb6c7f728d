package backend

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/jmgilman/go/fs/core"
)

// File is an open file of a billy-backed backend. The embedded billy.File
// provides reading, writing, seeking and truncation.
type File struct {
	billy.File
	name string
	stat func(name string) (fs.FileInfo, error)
}

func newFile(f billy.File, name string, stat func(string) (fs.FileInfo, error)) *File {
	return &File{File: f, name: name, stat: stat}
}

// Name returns the backend path the file was opened with. billy providers
// disagree on what their own Name reports.
func (f *File) Name() string {
	return f.name
}

// Stat describes the file through the filesystem that opened it.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.stat(f.name)
}

// Sync commits the file to storage. Providers without sync, such as memfs,
// treat it as a no-op.
func (f *File) Sync() error {
	if s, ok := f.File.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

var (
	_ core.File      = (*File)(nil)
	_ fs.File        = (*File)(nil)
	_ io.ReaderAt    = (*File)(nil)
	_ core.Truncater = (*File)(nil)
	_ core.Syncer    = (*File)(nil)
)
