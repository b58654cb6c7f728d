package backend

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/fs/core"
	"golang.org/x/sys/unix"
)

// LocalFS is the host filesystem. File I/O goes through billy's osfs;
// metadata, rename and link calls use the operating system directly so that
// errno values such as EXDEV and EACCES are preserved.
type LocalFS struct {
	*BillyFS
	root string
}

// NewLocal creates a local backend rooted at the filesystem root ("/").
func NewLocal() *LocalFS {
	return &LocalFS{
		BillyFS: &BillyFS{bfs: osfs.New("/"), fstype: core.FSTypeLocal},
		root:    "/",
	}
}

// Root returns the host directory this backend is scoped to.
func (l *LocalFS) Root() string {
	return l.root
}

// real maps a backend path to the host path. Leading ".." segments are
// clamped at the root.
func (l *LocalFS) real(name string) string {
	return filepath.Join(l.root, filepath.Clean("/"+filepath.FromSlash(name)))
}

// Stat returns file metadata for the named file, following symlinks.
func (l *LocalFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(l.real(name))
}

// Lstat returns file info without following symbolic links.
func (l *LocalFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(l.real(name))
}

// Exists reports whether the named file exists. Dangling symlinks count as
// missing, like stat(2).
func (l *LocalFS) Exists(name string) (bool, error) {
	_, err := os.Stat(l.real(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Mkdir creates a single directory with mkdir(2) semantics.
func (l *LocalFS) Mkdir(name string, perm fs.FileMode) error {
	return os.Mkdir(l.real(name), perm)
}

// Remove removes the named file or empty directory.
func (l *LocalFS) Remove(name string) error {
	return os.Remove(l.real(name))
}

// RemoveAll removes path and any children it contains.
func (l *LocalFS) RemoveAll(path string) error {
	return os.RemoveAll(l.real(path))
}

// Rename renames oldpath to newpath with rename(2). Unlike osfs it does not
// create missing parents of newpath.
func (l *LocalFS) Rename(oldpath, newpath string) error {
	return os.Rename(l.real(oldpath), l.real(newpath))
}

// Chroot returns a local backend scoped to dir.
func (l *LocalFS) Chroot(dir string) (core.FS, error) {
	dir = normalize(dir)
	if err := requireDir(l.Stat, dir); err != nil {
		return nil, err
	}
	scoped, err := l.bfs.Chroot(dir)
	if err != nil {
		return nil, err
	}
	return &LocalFS{
		BillyFS: &BillyFS{bfs: scoped, fstype: core.FSTypeLocal},
		root:    l.real(dir),
	}, nil
}

// Symlink creates newname as a symbolic link to oldname.
func (l *LocalFS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, l.real(newname))
}

// Readlink returns the destination of the named symbolic link.
func (l *LocalFS) Readlink(name string) (string, error) {
	return os.Readlink(l.real(name))
}

// Link creates newname as a hard link to oldname.
func (l *LocalFS) Link(oldname, newname string) error {
	return os.Link(l.real(oldname), l.real(newname))
}

// Chmod changes the mode of the named file.
func (l *LocalFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(l.real(name), mode)
}

// Chown changes the numeric uid and gid of the named file.
func (l *LocalFS) Chown(name string, uid, gid int) error {
	return os.Chown(l.real(name), uid, gid)
}

// Lchown changes the numeric uid and gid of the named link itself.
func (l *LocalFS) Lchown(name string, uid, gid int) error {
	return os.Lchown(l.real(name), uid, gid)
}

// Chtimes changes the access and modification times of the named file.
func (l *LocalFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(l.real(name), atime, mtime)
}

// Times returns atime, mtime and ctime from stat(2).
func (l *LocalFS) Times(name string) (Times, error) {
	return statTimes(l.real(name))
}

// FileID returns the device and inode of the named file.
func (l *LocalFS) FileID(name string, follow bool) (FileID, error) {
	path := l.real(name)
	var st unix.Stat_t
	var err error
	if follow {
		err = unix.Stat(path, &st)
	} else {
		err = unix.Lstat(path, &st)
	}
	if err != nil {
		return FileID{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	//nolint:unconvert // Dev and Ino widths differ between platforms
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, nil
}

// Owner returns the uid and gid owning the named file.
func (l *LocalFS) Owner(name string) (int, int, error) {
	path := l.real(name)
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return int(st.Uid), int(st.Gid), nil
}

// Access checks permissions with access(2), or faccessat(2) with AT_EACCESS
// for the effective ids.
func (l *LocalFS) Access(name string, mode uint32, real bool) error {
	path := l.real(name)
	var err error
	if real {
		err = unix.Access(path, mode)
	} else {
		err = unix.Faccessat(unix.AT_FDCWD, path, mode, unix.AT_EACCESS)
	}
	if err != nil {
		return &fs.PathError{Op: "access", Path: path, Err: err}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ core.FS = (*LocalFS)(nil)
	_ Backend = (*LocalFS)(nil)
)
