package pa

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/pa/backend"
)

// preservedBits are the mode bits Cp carries over.
const preservedBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Cp copies files and directories. Sources are globbed.
//
//	f.Cp([]string{"a"}, "dir")        // dir/a
//	f.Cp([]string{"a"}, "dir/b")      // dir/b
//	f.Cp([]string{"a", "b"}, "dir")   // dir/a dir/b
//
// More than one source requires an existing directory destination.
// WithMkdir creates a missing destination directory first. Each item fails
// with ALREADY_EXISTS when its destination exists unless WithForce is given.
// Directories are copied recursively (only their shells with WithSpecial);
// symlinks are recreated, or their targets copied with WithFollowSymlinks;
// other file types fail with ErrUnknownType. Modes and access and
// modification times are carried over. WithTransfer hooks each item.
// An item whose destination is the source itself fails with ErrSameFile.
func (f *FS) Cp(srcs []string, dest string, opts ...Option) error {
	o := newOptions(opts)
	sources, err := f.sources("cp", srcs, o)
	if err != nil {
		return err
	}
	f.echo(o.ShowCmd, "cp %s%s %s", flag(o.Force, "-f"), strings.Join(sources, " "), dest)

	return f.transfer("cp", sources, dest, o, func(src, target string) error {
		return f.copy(src, target, o)
	})
}

// Mv moves files and directories with the same source and destination rules
// as Cp. A move onto an existing directory with WithForce merges the
// source into it; otherwise WithForce replaces the destination. Moves
// across devices fall back to copy and remove.
func (f *FS) Mv(srcs []string, dest string, opts ...Option) error {
	o := newOptions(opts)
	sources, err := f.sources("mv", srcs, o)
	if err != nil {
		return err
	}
	f.echo(o.ShowCmd, "mv %s%s %s", flag(o.Force, "-f"), strings.Join(sources, " "), dest)

	return f.transfer("mv", sources, dest, o, func(src, target string) error {
		return f.move(src, target, o)
	})
}

// transfer computes the destination of every source and runs do for it,
// through the Transfer hook when one is set.
func (f *FS) transfer(op string, sources []string, dest string, o *Options, do func(src, dest string) error) error {
	resolved := f.resolve(dest)
	if o.Mkdir {
		exists, err := f.lexists(resolved)
		if err != nil {
			return wrapError(op, dest, err)
		}
		if !exists {
			if err := f.mkdirAll(resolved, defaultDirMode); err != nil {
				return wrapError(op, dest, err)
			}
		}
	}

	destDir := f.isDir(resolved)
	if len(sources) > 1 && !destDir {
		return newPathError(op, dest, ErrNotDir)
	}

	for _, src := range sources {
		target := dest
		if destDir {
			target = Join(dest, Base(src))
		}

		var err error
		if o.Transfer != nil {
			err = o.Transfer(src, target, func(d string) error { return do(src, d) })
		} else {
			err = do(src, target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// copy copies a single item, recursing into directories.
func (f *FS) copy(src, dest string, o *Options) error {
	rsrc, rdest := f.resolve(src), f.resolve(dest)

	destInfo, err := f.backend.Lstat(rdest)
	exists := err == nil
	if err != nil && !isNotExist(err) {
		return wrapError("cp", dest, err)
	}
	if exists && !o.Force {
		return newPathError("cp", dest, fs.ErrExist)
	}
	if exists && f.sameFile(rsrc, rdest) {
		return newPathError("cp", dest, ErrSameFile)
	}

	var info fs.FileInfo
	if o.FollowSymlinks {
		info, err = f.backend.Stat(rsrc)
	} else {
		info, err = f.backend.Lstat(rsrc)
	}
	if err != nil {
		return wrapError("cp", src, err)
	}
	times, terr := f.backend.Times(rsrc)

	switch mode := info.Mode(); {
	case mode.IsRegular():
		if exists && !destInfo.Mode().IsRegular() {
			if err := f.backend.RemoveAll(rdest); err != nil {
				return wrapError("cp", dest, err)
			}
		}
		f.echo(o.Verbose, "cp %s %s", src, dest)
		if err := f.copyFile(rsrc, rdest, mode.Perm()); err != nil {
			return wrapError("cp", src, err)
		}

	case mode.IsDir():
		if exists && !destInfo.IsDir() {
			if err := f.backend.RemoveAll(rdest); err != nil {
				return wrapError("cp", dest, err)
			}
			exists = false
		}
		if !exists {
			f.echo(o.Verbose, "mkdir %s", dest)
			if err := f.backend.Mkdir(rdest, defaultDirMode); err != nil {
				return wrapError("cp", dest, err)
			}
		}
		if o.Special {
			return nil
		}

		entries, err := f.backend.ReadDir(rsrc)
		if err != nil {
			return wrapError("cp", src, err)
		}
		for _, entry := range entries {
			if err := f.copy(Join(src, entry.Name()), Join(dest, entry.Name()), o); err != nil {
				return err
			}
		}

	case mode&fs.ModeSymlink != 0:
		target, err := f.backend.Readlink(rsrc)
		if err != nil {
			return wrapError("cp", src, err)
		}
		if exists {
			if err := f.backend.RemoveAll(rdest); err != nil {
				return wrapError("cp", dest, err)
			}
		}
		f.echo(o.Verbose, "ln -s -f %s %s", target, dest)
		if err := f.backend.Symlink(target, rdest); err != nil {
			return wrapError("cp", dest, err)
		}
		f.logger.Debug("copied link", "op", "cp", "path", dest, "target", target)
		return nil

	default:
		return newPathError("cp", src, ErrUnknownType)
	}

	f.logger.Debug("copied", "op", "cp", "src", src, "dest", dest)
	return f.preserve(rdest, info.Mode()&preservedBits, times, terr)
}

func (f *FS) copyFile(src, dest string, perm fs.FileMode) (err error) {
	in, err := f.backend.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := f.backend.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// preserve applies the source mode and times to a copied item. A
// destination that vanished meanwhile and capabilities the backend lacks
// are ignored.
func (f *FS) preserve(dest string, mode fs.FileMode, times backend.Times, timesErr error) error {
	if err := f.chmod(dest, mode); err != nil {
		if isNotExist(err) {
			return nil
		}
		return wrapError("chmod", dest, err)
	}
	if timesErr != nil {
		return nil
	}
	err := f.backend.Chtimes(dest, times.Atime, times.Mtime)
	if err != nil && !isNotExist(err) && !errors.Is(err, backend.ErrUnsupported) {
		return wrapError("utime", dest, err)
	}
	return nil
}

// sameFile reports whether the resolved names a and b are one file, without
// following a final symlink. Backends without inode numbers compare names.
func (f *FS) sameFile(a, b string) bool {
	ida, erra := f.backend.FileID(a, false)
	idb, errb := f.backend.FileID(b, false)
	if errors.Is(erra, backend.ErrUnsupported) || errors.Is(errb, backend.ErrUnsupported) {
		return path.Clean(a) == path.Clean(b)
	}
	return erra == nil && errb == nil && ida == idb
}

// move moves a single item, merging directories and falling back to copy
// and remove across devices.
func (f *FS) move(src, dest string, o *Options) error {
	rsrc, rdest := f.resolve(src), f.resolve(dest)

	destInfo, err := f.backend.Lstat(rdest)
	exists := err == nil
	if err != nil && !isNotExist(err) {
		return wrapError("mv", dest, err)
	}
	if exists && !o.Force {
		return newPathError("mv", dest, fs.ErrExist)
	}
	if exists && f.sameFile(rsrc, rdest) {
		return newPathError("mv", dest, ErrSameFile)
	}

	srcInfo, err := f.backend.Lstat(rsrc)
	if err != nil {
		return wrapError("mv", src, err)
	}

	if exists && destInfo.IsDir() && srcInfo.IsDir() {
		entries, err := f.backend.ReadDir(rsrc)
		if err != nil {
			return wrapError("mv", src, err)
		}
		for _, entry := range entries {
			if err := f.move(Join(src, entry.Name()), Join(dest, entry.Name()), o); err != nil {
				return err
			}
		}
		return f.removeAll(src, o)
	}

	if exists {
		if err := f.backend.RemoveAll(rdest); err != nil {
			return wrapError("mv", dest, err)
		}
	}

	f.echo(o.Verbose, "rename %s %s", src, dest)
	err = f.backend.Rename(rsrc, rdest)
	if errors.Is(err, unix.EXDEV) {
		f.logger.Debug("cross-device move, copying", "op", "mv", "src", src, "dest", dest)
		if err := f.copy(src, dest, o.forced()); err != nil {
			return err
		}
		return f.removeAll(src, o)
	}
	if err != nil {
		return wrapError("mv", src, err)
	}
	f.logger.Debug("renamed", "op", "mv", "src", src, "dest", dest)
	return nil
}
