package backend

import (
	"errors"
	"io/fs"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmgilman/go/fs/core"
)

// ErrUnsupported is returned when an operation is not supported by the provider.
// Re-exported from the errors package so errors.Is works against either value.
var ErrUnsupported = errors.ErrUnsupported

var errNotDir error = syscall.ENOTDIR

// Access mode bits accepted by Backend.Access.
const (
	AccessRead    uint32 = 0x4
	AccessWrite   uint32 = 0x2
	AccessExecute uint32 = 0x1
)

// Times holds the three POSIX timestamps of a file.
type Times struct {
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}

// FileID identifies a file on a host by device and inode number.
type FileID struct {
	Dev uint64
	Ino uint64
}

// Backend is the filesystem contract the pa package operates on.
//
// It embeds core.FS for file I/O and adds the metadata operations that have
// no home in the core interfaces. Implementations that cannot honor one of
// these calls return an error wrapping ErrUnsupported.
type Backend interface {
	core.FS

	// Lstat returns file info without following symbolic links.
	Lstat(name string) (fs.FileInfo, error)

	// Symlink creates newname as a symbolic link to oldname.
	// The target is stored as given and is not validated.
	Symlink(oldname, newname string) error

	// Readlink returns the destination of the named symbolic link.
	Readlink(name string) (string, error)

	// Link creates newname as a hard link to oldname.
	Link(oldname, newname string) error

	// Chmod changes the mode of the named file, following symlinks.
	Chmod(name string, mode fs.FileMode) error

	// Chown changes the numeric uid and gid of the named file.
	// A value of -1 leaves the corresponding id unchanged.
	Chown(name string, uid, gid int) error

	// Lchown is Chown without following symbolic links.
	Lchown(name string, uid, gid int) error

	// Chtimes changes the access and modification times of the named file.
	Chtimes(name string, atime, mtime time.Time) error

	// Times returns the access, modification and change times.
	Times(name string) (Times, error)

	// FileID returns the device and inode of the named file.
	// When follow is false a symbolic link is described itself.
	FileID(name string, follow bool) (FileID, error)

	// Owner returns the uid and gid owning the named file.
	Owner(name string) (uid, gid int, err error)

	// Access checks whether the calling process may access the named file
	// with the given AccessRead/AccessWrite/AccessExecute bits. When real is
	// true the real uid and gid are used instead of the effective ones.
	Access(name string, mode uint32, real bool) error
}

// normalize converts paths to use forward slashes consistently.
func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// unsupported builds the error returned for capabilities a provider lacks.
func unsupported(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: ErrUnsupported}
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }
