package pa

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/jmgilman/go/pa/backend"
)

// File type names returned by Type.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeSymlink   = "symlink"
	TypeChardev   = "chardev"
	TypeBlockdev  = "blockdev"
	TypeFifo      = "fifo"
	TypeSocket    = "socket"
	TypeUnknown   = "unknown"
)

// Exists reports whether p exists. Dangling symlinks do not.
func (f *FS) Exists(p string) bool {
	_, err := f.backend.Stat(f.resolve(p))
	return err == nil
}

// Stat returns file info for p, following symlinks.
func (f *FS) Stat(p string) (fs.FileInfo, error) {
	info, err := f.backend.Stat(f.resolve(p))
	if err != nil {
		return nil, wrapError("stat", p, err)
	}
	return info, nil
}

// Lstat returns file info for p without following a final symlink.
func (f *FS) Lstat(p string) (fs.FileInfo, error) {
	info, err := f.backend.Lstat(f.resolve(p))
	if err != nil {
		return nil, wrapError("lstat", p, err)
	}
	return info, nil
}

// Size returns the size of p in bytes.
func (f *FS) Size(p string) (int64, error) {
	info, err := f.Stat(p)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// IsZero reports whether p exists and is empty.
func (f *FS) IsZero(p string) bool {
	size, err := f.Size(p)
	return err == nil && size == 0
}

// Atime returns the last access time of p.
func (f *FS) Atime(p string) (time.Time, error) {
	t, err := f.times(p)
	return t.Atime, err
}

// Mtime returns the last modification time of p.
func (f *FS) Mtime(p string) (time.Time, error) {
	t, err := f.times(p)
	return t.Mtime, err
}

// Ctime returns the last status change time of p.
func (f *FS) Ctime(p string) (time.Time, error) {
	t, err := f.times(p)
	return t.Ctime, err
}

func (f *FS) times(p string) (backend.Times, error) {
	t, err := f.backend.Times(f.resolve(p))
	if err != nil {
		return backend.Times{}, wrapError("stat", p, err)
	}
	return t, nil
}

func (f *FS) mode(p string, follow bool) (fs.FileMode, bool) {
	var info fs.FileInfo
	var err error
	if follow {
		info, err = f.backend.Stat(f.resolve(p))
	} else {
		info, err = f.backend.Lstat(f.resolve(p))
	}
	if err != nil {
		return 0, false
	}
	return info.Mode(), true
}

// IsFile reports whether p is a regular file, following symlinks.
func (f *FS) IsFile(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m.IsRegular()
}

// IsDir reports whether p is a directory, following symlinks.
func (f *FS) IsDir(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m.IsDir()
}

// IsSymlink reports whether p itself is a symbolic link.
func (f *FS) IsSymlink(p string) bool {
	m, ok := f.mode(p, false)
	return ok && m&fs.ModeSymlink != 0
}

// IsBlockdev reports whether p is a block device.
func (f *FS) IsBlockdev(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeDevice != 0 && m&fs.ModeCharDevice == 0
}

// IsChardev reports whether p is a character device.
func (f *FS) IsChardev(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeCharDevice != 0
}

// IsPipe reports whether p is a named pipe.
func (f *FS) IsPipe(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeNamedPipe != 0
}

// IsSocket reports whether p is a socket.
func (f *FS) IsSocket(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeSocket != 0
}

func (f *FS) access(p string, mode uint32, real bool) bool {
	return f.backend.Access(f.resolve(p), mode, real) == nil
}

// IsReadable reports whether the effective user may read p.
func (f *FS) IsReadable(p string) bool { return f.access(p, backend.AccessRead, false) }

// IsReadableReal reports whether the real user may read p.
func (f *FS) IsReadableReal(p string) bool { return f.access(p, backend.AccessRead, true) }

// IsWritable reports whether the effective user may write p.
func (f *FS) IsWritable(p string) bool { return f.access(p, backend.AccessWrite, false) }

// IsWritableReal reports whether the real user may write p.
func (f *FS) IsWritableReal(p string) bool { return f.access(p, backend.AccessWrite, true) }

// IsExecutable reports whether the effective user may execute p.
func (f *FS) IsExecutable(p string) bool { return f.access(p, backend.AccessExecute, false) }

// IsExecutableReal reports whether the real user may execute p.
func (f *FS) IsExecutableReal(p string) bool { return f.access(p, backend.AccessExecute, true) }

// IsWorldReadable reports whether p is readable by others.
func (f *FS) IsWorldReadable(p string) bool { return f.permBits(p, 0o004) }

// IsWorldWritable reports whether p is writable by others.
func (f *FS) IsWorldWritable(p string) bool { return f.permBits(p, 0o002) }

// IsWorldExecutable reports whether p is executable by others.
func (f *FS) IsWorldExecutable(p string) bool { return f.permBits(p, 0o001) }

func (f *FS) permBits(p string, bits fs.FileMode) bool {
	m, ok := f.mode(p, true)
	return ok && m.Perm()&bits != 0
}

// IsOwned reports whether p is owned by the effective user.
func (f *FS) IsOwned(p string) bool {
	uid, _, err := f.backend.Owner(f.resolve(p))
	return err == nil && uid == os.Geteuid()
}

// IsGrpOwned reports whether p belongs to the effective group.
func (f *FS) IsGrpOwned(p string) bool {
	_, gid, err := f.backend.Owner(f.resolve(p))
	return err == nil && gid == os.Getegid()
}

// IsSetuid reports whether p has the setuid bit.
func (f *FS) IsSetuid(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeSetuid != 0
}

// IsSetgid reports whether p has the setgid bit.
func (f *FS) IsSetgid(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeSetgid != 0
}

// IsSticky reports whether p has the sticky bit.
func (f *FS) IsSticky(p string) bool {
	m, ok := f.mode(p, true)
	return ok && m&fs.ModeSticky != 0
}

// IsIdentical reports whether a and b are the same file. Backends without
// inode numbers compare resolved paths.
func (f *FS) IsIdentical(a, b string) bool {
	ra, rb := f.resolve(a), f.resolve(b)
	ida, erra := f.backend.FileID(ra, true)
	idb, errb := f.backend.FileID(rb, true)
	if errors.Is(erra, backend.ErrUnsupported) || errors.Is(errb, backend.ErrUnsupported) {
		return f.Exists(a) && ra == rb
	}
	return erra == nil && errb == nil && ida == idb
}

// Chmod changes the mode of every path, following symlinks.
func (f *FS) Chmod(mode fs.FileMode, paths ...string) error {
	for _, p := range paths {
		if err := f.backend.Chmod(f.resolve(p), mode); err != nil {
			return wrapError("chmod", p, err)
		}
		f.logger.Debug("changed mode", "op", "chmod", "path", p, "mode", mode)
	}
	return nil
}

// Lchmod is Chmod without following symlinks. Changing the mode of a link
// itself is not possible on Linux, so links fail with NOT_IMPLEMENTED.
func (f *FS) Lchmod(mode fs.FileMode, paths ...string) error {
	for _, p := range paths {
		name := f.resolve(p)
		info, err := f.backend.Lstat(name)
		if err != nil {
			return wrapError("lchmod", p, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return newPathError("lchmod", p, backend.ErrUnsupported)
		}
		if err := f.backend.Chmod(name, mode); err != nil {
			return wrapError("lchmod", p, err)
		}
		f.logger.Debug("changed mode", "op", "lchmod", "path", p, "mode", mode)
	}
	return nil
}

// Chown changes the owner and group of every path, following symlinks. An
// id of -1 is left unchanged.
func (f *FS) Chown(uid, gid int, paths ...string) error {
	for _, p := range paths {
		if err := f.backend.Chown(f.resolve(p), uid, gid); err != nil {
			return wrapError("chown", p, err)
		}
		f.logger.Debug("changed owner", "op", "chown", "path", p, "uid", uid, "gid", gid)
	}
	return nil
}

// Lchown is Chown without following symlinks.
func (f *FS) Lchown(uid, gid int, paths ...string) error {
	for _, p := range paths {
		if err := f.backend.Lchown(f.resolve(p), uid, gid); err != nil {
			return wrapError("lchown", p, err)
		}
		f.logger.Debug("changed owner", "op", "lchown", "path", p, "uid", uid, "gid", gid)
	}
	return nil
}

// Utime sets the access and modification times of every path. A zero time
// means now.
func (f *FS) Utime(atime, mtime time.Time, paths ...string) error {
	now := time.Now()
	if atime.IsZero() {
		atime = now
	}
	if mtime.IsZero() {
		mtime = now
	}
	for _, p := range paths {
		if err := f.backend.Chtimes(f.resolve(p), atime, mtime); err != nil {
			return wrapError("utime", p, err)
		}
		f.logger.Debug("changed times", "op", "utime", "path", p)
	}
	return nil
}

// Type returns the kind of p without following a final symlink: one of
// TypeFile, TypeDirectory, TypeSymlink, TypeChardev, TypeBlockdev, TypeFifo,
// TypeSocket or TypeUnknown.
func (f *FS) Type(p string) (string, error) {
	info, err := f.Lstat(p)
	if err != nil {
		return "", err
	}
	return typeOf(info.Mode()), nil
}

func typeOf(m fs.FileMode) string {
	switch {
	case m.IsRegular():
		return TypeFile
	case m.IsDir():
		return TypeDirectory
	case m&fs.ModeSymlink != 0:
		return TypeSymlink
	case m&fs.ModeCharDevice != 0:
		return TypeChardev
	case m&fs.ModeDevice != 0:
		return TypeBlockdev
	case m&fs.ModeNamedPipe != 0:
		return TypeFifo
	case m&fs.ModeSocket != 0:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// IsMountpoint reports whether p is the root of a mounted filesystem: its
// device differs from its parent's, or it is its own parent. Missing paths
// are not mountpoints.
func (f *FS) IsMountpoint(p string) (bool, error) {
	name := f.resolve(p)
	self, err := f.backend.FileID(name, false)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, wrapError("mountpoint", p, err)
	}
	parent, err := f.backend.FileID(path.Join(name, ".."), false)
	if err != nil {
		return false, wrapError("mountpoint", p, err)
	}
	return self.Dev != parent.Dev || self == parent, nil
}

// IsDangling reports whether p is a symbolic link whose target does not
// exist. Relative targets are resolved from the link's directory.
func (f *FS) IsDangling(p string) bool {
	name := f.resolve(p)
	if !f.IsSymlink(name) {
		return false
	}
	target, err := f.backend.Readlink(name)
	if err != nil {
		return false
	}
	if !path.IsAbs(target) {
		target = path.Join(path.Dir(name), target)
	}
	_, err = f.backend.Stat(target)
	return isNotExist(err)
}
