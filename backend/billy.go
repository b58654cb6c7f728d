package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/jmgilman/go/fs/core"
)

// BillyFS adapts a billy.Filesystem to the Backend interface.
// Metadata calls the wrapped filesystem does not implement return
// ErrUnsupported.
type BillyFS struct {
	bfs    billy.Filesystem
	fstype core.FSType
}

// NewMemory creates an empty in-memory backend using billy's memfs.
func NewMemory() *BillyFS {
	bfs := memfs.New()
	// memfs only records "/" once something is created below it.
	_ = bfs.MkdirAll("/", 0o755)
	return &BillyFS{
		bfs:    bfs,
		fstype: core.FSTypeMemory,
	}
}

// Wrap adapts an existing billy.Filesystem.
func Wrap(bfs billy.Filesystem) *BillyFS {
	return &BillyFS{
		bfs:    bfs,
		fstype: core.FSTypeUnknown,
	}
}

// Unwrap returns the underlying billy.Filesystem.
func (b *BillyFS) Unwrap() billy.Filesystem {
	return b.bfs
}

// ReadFS

// Open opens the named file for reading.
func (b *BillyFS) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return newFile(f, name, b.bfs.Stat), nil
}

// Stat returns file metadata for the named file, following symlinks.
func (b *BillyFS) Stat(name string) (fs.FileInfo, error) {
	return b.bfs.Stat(normalize(name))
}

// ReadDir reads the named directory and returns its entries sorted by filename.
func (b *BillyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := b.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (b *BillyFS) ReadFile(name string) ([]byte, error) {
	f, err := b.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named file or directory exists.
func (b *BillyFS) Exists(name string) (bool, error) {
	_, err := b.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFS

// Create creates or truncates the named file for writing. The parent
// directory must exist.
func (b *BillyFS) Create(name string) (core.File, error) {
	name = normalize(name)
	if err := b.checkParent("open", name); err != nil {
		return nil, err
	}
	f, err := b.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return newFile(f, name, b.bfs.Stat), nil
}

// OpenFile opens a file with the specified flags and permissions. With
// O_CREATE the parent directory must exist, as with open(2).
func (b *BillyFS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	name = normalize(name)
	if flag&os.O_CREATE != 0 {
		if err := b.checkParent("open", name); err != nil {
			return nil, err
		}
	}
	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return newFile(f, name, b.bfs.Stat), nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (b *BillyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := b.bfs.OpenFile(normalize(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.Write(data)
	return err
}

// Mkdir creates a single directory. Unlike MkdirAll it fails when the
// directory already exists or its parent is missing.
func (b *BillyFS) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := b.bfs.Lstat(name); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	parent := filepath.Dir(name)
	if parent != "." && parent != "/" {
		info, err := b.bfs.Stat(parent)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return &fs.PathError{Op: "mkdir", Path: name, Err: errNotDir}
		}
	}
	return b.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (b *BillyFS) MkdirAll(path string, perm fs.FileMode) error {
	return b.bfs.MkdirAll(normalize(path), perm)
}

// ManageFS

// Remove removes the named file or empty directory.
func (b *BillyFS) Remove(name string) error {
	return b.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains. Symbolic links are
// removed, never followed. A missing path is not an error.
func (b *BillyFS) RemoveAll(path string) error {
	path = normalize(path)
	info, err := b.bfs.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return b.bfs.Remove(path)
	}

	entries, err := b.bfs.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := b.RemoveAll(normalize(filepath.Join(path, entry.Name()))); err != nil {
			return err
		}
	}

	return b.bfs.Remove(path)
}

// Rename renames (moves) oldpath to newpath.
func (b *BillyFS) Rename(oldpath, newpath string) error {
	return b.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// WalkFS

// Walk walks the file tree rooted at root in lexical order, calling walkFn for
// each file or directory including root. Symbolic links are not followed.
func (b *BillyFS) Walk(root string, walkFn fs.WalkDirFunc) error {
	return walkDir(b.bfs, normalize(root), walkFn)
}

// ChrootFS

// Chroot returns a backend scoped to the given directory.
func (b *BillyFS) Chroot(dir string) (core.FS, error) {
	dir = normalize(dir)
	if err := requireDir(b.bfs.Stat, dir); err != nil {
		return nil, err
	}
	scoped, err := b.bfs.Chroot(dir)
	if err != nil {
		return nil, err
	}
	return &BillyFS{bfs: scoped, fstype: b.fstype}, nil
}

// Type returns the filesystem type of the wrapped provider.
func (b *BillyFS) Type() core.FSType {
	return b.fstype
}

// Metadata

// Lstat returns file info without following symbolic links.
func (b *BillyFS) Lstat(name string) (fs.FileInfo, error) {
	return b.bfs.Lstat(normalize(name))
}

// Symlink creates newname as a symbolic link to oldname.
func (b *BillyFS) Symlink(oldname, newname string) error {
	return b.bfs.Symlink(oldname, normalize(newname))
}

// Readlink returns the destination of the named symbolic link.
func (b *BillyFS) Readlink(name string) (string, error) {
	return b.bfs.Readlink(normalize(name))
}

// Link is not available on billy filesystems.
func (b *BillyFS) Link(_, newname string) error {
	return unsupported("link", newname)
}

// Chmod forwards to the wrapped filesystem when it supports mode changes.
func (b *BillyFS) Chmod(name string, mode fs.FileMode) error {
	c, ok := b.bfs.(interface {
		Chmod(name string, mode os.FileMode) error
	})
	if !ok {
		return unsupported("chmod", name)
	}
	return c.Chmod(normalize(name), mode)
}

// Chown forwards to the wrapped filesystem when it supports ownership.
func (b *BillyFS) Chown(name string, uid, gid int) error {
	c, ok := b.bfs.(interface {
		Chown(name string, uid, gid int) error
	})
	if !ok {
		return unsupported("chown", name)
	}
	return c.Chown(normalize(name), uid, gid)
}

// Lchown forwards to the wrapped filesystem when it supports ownership.
func (b *BillyFS) Lchown(name string, uid, gid int) error {
	c, ok := b.bfs.(interface {
		Lchown(name string, uid, gid int) error
	})
	if !ok {
		return unsupported("lchown", name)
	}
	return c.Lchown(normalize(name), uid, gid)
}

// Chtimes forwards to the wrapped filesystem when it supports timestamps.
func (b *BillyFS) Chtimes(name string, atime, mtime time.Time) error {
	c, ok := b.bfs.(interface {
		Chtimes(name string, atime, mtime time.Time) error
	})
	if !ok {
		return unsupported("chtimes", name)
	}
	return c.Chtimes(normalize(name), atime, mtime)
}

// Times reports the modification time for all three timestamps, which is
// the only one billy exposes.
func (b *BillyFS) Times(name string) (Times, error) {
	info, err := b.bfs.Stat(normalize(name))
	if err != nil {
		return Times{}, err
	}
	mt := info.ModTime()
	return Times{Atime: mt, Mtime: mt, Ctime: mt}, nil
}

// FileID is not available on billy filesystems.
func (b *BillyFS) FileID(name string, _ bool) (FileID, error) {
	return FileID{}, unsupported("fileid", name)
}

// Owner reports the current process as owner of every existing file, since
// billy filesystems do not track ownership.
func (b *BillyFS) Owner(name string) (int, int, error) {
	if _, err := b.bfs.Stat(normalize(name)); err != nil {
		return 0, 0, err
	}
	return os.Geteuid(), os.Getegid(), nil
}

// Access checks the owner permission bits of the named file.
func (b *BillyFS) Access(name string, mode uint32, _ bool) error {
	name = normalize(name)
	info, err := b.bfs.Stat(name)
	if err != nil {
		return err
	}
	owner := (uint32(info.Mode().Perm()) >> 6) & 0o7
	if owner&mode != mode {
		return &fs.PathError{Op: "access", Path: name, Err: fs.ErrPermission}
	}
	return nil
}

// checkParent fails unless the parent of name is an existing directory.
// billy filesystems otherwise create missing parents on their own.
func (b *BillyFS) checkParent(op, name string) error {
	parent := filepath.Dir(name)
	if parent == "/" || parent == "." {
		return nil
	}
	info, err := b.bfs.Stat(parent)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: op, Path: name, Err: errNotDir}
	}
	return nil
}

// requireDir returns an error unless dir exists and is a directory.
func requireDir(stat func(string) (fs.FileInfo, error), dir string) error {
	info, err := stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chroot", Path: dir, Err: errNotDir}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ core.FS = (*BillyFS)(nil)
	_ Backend = (*BillyFS)(nil)
)
