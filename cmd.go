package pa

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/jmgilman/go/pa/backend"
)

const (
	defaultFileMode fs.FileMode = 0o644
	defaultDirMode  fs.FileMode = 0o775
	tmpDirMode      fs.FileMode = 0o700
	tmpFileMode     fs.FileMode = 0o600
)

// Touch creates empty files.
//
// An existing path is an ALREADY_EXISTS error unless WithForce is given,
// in which case it is left alone. WithMkdir creates missing parents and
// WithMode sets the permission (default 0644). Honors WithVerbose and
// WithShowCmd.
func (f *FS) Touch(paths []string, opts ...Option) error {
	o := newOptions(opts)
	mode := modeOr(o.Mode, defaultFileMode)
	extra := flag(o.Force, "-f")
	f.echo(o.ShowCmd, "touch %s%s", extra, strings.Join(paths, " "))

	for _, p := range paths {
		f.echo(o.Verbose, "touch %s%s", extra, p)
		name := f.resolve(p)

		exists, err := f.lexists(name)
		if err != nil {
			return wrapError("touch", p, err)
		}
		if exists {
			if o.Force {
				f.logger.Debug("skipping existing file", "op", "touch", "path", p)
				continue
			}
			return newPathError("touch", p, fs.ErrExist)
		}

		if o.Mkdir {
			if err := f.mkdirAll(path.Dir(name), defaultDirMode); err != nil {
				return wrapError("touch", p, err)
			}
		}

		file, err := f.backend.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return wrapError("touch", p, err)
		}
		if err := file.Close(); err != nil {
			return wrapError("touch", p, err)
		}
		if err := f.chmod(name, mode); err != nil {
			return wrapError("touch", p, err)
		}
		f.logger.Debug("created file", "op", "touch", "path", p, "mode", mode)
	}
	return nil
}

// Mkdir creates directories along with any missing parents. Every created
// directory gets the mode from WithMode (default 0775). An existing path is
// an ALREADY_EXISTS error unless WithForce is given. Honors WithVerbose and
// WithShowCmd.
func (f *FS) Mkdir(paths []string, opts ...Option) error {
	o := newOptions(opts)
	mode := modeOr(o.Mode, defaultDirMode)
	f.echo(o.ShowCmd, "mkdir %s%s", flag(o.Force, "-f"), strings.Join(paths, " "))

	for _, p := range paths {
		f.echo(o.Verbose, "mkdir %s", p)
		name := f.resolve(p)

		exists, err := f.lexists(name)
		if err != nil {
			return wrapError("mkdir", p, err)
		}
		if exists {
			if o.Force {
				f.logger.Debug("skipping existing directory", "op", "mkdir", "path", p)
				continue
			}
			return newPathError("mkdir", p, fs.ErrExist)
		}
		if err := f.mkdirAll(name, mode); err != nil {
			return wrapError("mkdir", p, err)
		}
	}
	return nil
}

// mkdirAll creates name and its missing parents top down, setting mode on
// each one it creates.
func (f *FS) mkdirAll(name string, mode fs.FileMode) error {
	var stack []string
	for p := name; ; p = path.Dir(p) {
		exists, err := f.lexists(p)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		stack = append(stack, p)
		if p == "/" {
			break
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if err := f.backend.Mkdir(stack[i], mode); err != nil {
			return err
		}
		if err := f.chmod(stack[i], mode); err != nil {
			return err
		}
		f.logger.Debug("created directory", "op", "mkdir", "path", stack[i], "mode", mode)
	}
	return nil
}

// MkTmpDir creates a directory named "<name>.<6 hex digits>" in the
// temporary directory and returns its path. The name defaults to the
// process id. Honors WithTempDirOption, WithMode (default 0700),
// WithVerbose and WithShowCmd.
func (f *FS) MkTmpDir(name string, opts ...Option) (Path, error) {
	o := newOptions(opts)
	p, err := f.tmpName(name, o)
	if err != nil {
		return Path{}, err
	}
	f.echo(o.Verbose || o.ShowCmd, "mktmpdir %s", p)

	mode := modeOr(o.Mode, tmpDirMode)
	if err := f.backend.Mkdir(p, mode); err != nil {
		return Path{}, wrapError("mktmpdir", p, err)
	}
	if err := f.chmod(p, mode); err != nil {
		return Path{}, wrapError("mktmpdir", p, err)
	}
	f.logger.Debug("created temporary directory", "op", "mktmpdir", "path", p)
	return parse(p), nil
}

// MkTmpFile creates an empty file named like MkTmpDir and returns its path.
// WithMode defaults to 0600.
func (f *FS) MkTmpFile(name string, opts ...Option) (Path, error) {
	o := newOptions(opts)
	p, err := f.tmpName(name, o)
	if err != nil {
		return Path{}, err
	}
	f.echo(o.Verbose || o.ShowCmd, "mktmpfile %s", p)

	mode := modeOr(o.Mode, tmpFileMode)
	file, err := f.backend.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return Path{}, wrapError("mktmpfile", p, err)
	}
	if err := file.Close(); err != nil {
		return Path{}, wrapError("mktmpfile", p, err)
	}
	if err := f.chmod(p, mode); err != nil {
		return Path{}, wrapError("mktmpfile", p, err)
	}
	f.logger.Debug("created temporary file", "op", "mktmpfile", "path", p)
	return parse(p), nil
}

// WithinTmpDir creates a temporary directory, runs fn with it and removes
// it with all contents afterwards.
func (f *FS) WithinTmpDir(name string, fn func(Path) error, opts ...Option) (err error) {
	dir, err := f.MkTmpDir(name, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.backend.RemoveAll(dir.Path()); rerr != nil && err == nil {
			err = wrapError("rm", dir.Path(), rerr)
		}
	}()
	return fn(dir)
}

// WithinTmpFile creates a temporary file, runs fn with it and removes it
// afterwards.
func (f *FS) WithinTmpFile(name string, fn func(Path) error, opts ...Option) (err error) {
	file, err := f.MkTmpFile(name, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.backend.Remove(file.Path()); rerr != nil && !isNotExist(rerr) && err == nil {
			err = wrapError("rm", file.Path(), rerr)
		}
	}()
	return fn(file)
}

func (f *FS) tmpName(name string, o *Options) (string, error) {
	dir := o.TempDir
	if dir == "" {
		dir = f.tmpDir
	}
	dir = f.resolve(dir)
	if name == "" {
		name = strconv.Itoa(os.Getpid())
	}

	for {
		var buf [3]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", wrapError("mktmp", dir, err)
		}
		p := path.Join(dir, name+"."+strings.ToUpper(hex.EncodeToString(buf[:])))
		exists, err := f.lexists(p)
		if err != nil {
			return "", wrapError("mktmp", p, err)
		}
		if !exists {
			return p, nil
		}
	}
}

// Rm removes files. Patterns are globbed.
//
// A directory is an INVALID_INPUT error, and a literal path that does not
// exist a NOT_FOUND error; WithForce skips both. Honors WithVerbose and
// WithShowCmd.
func (f *FS) Rm(paths []string, opts ...Option) error {
	o := newOptions(opts)
	extra := flag(o.Force, "-f")
	f.echo(o.ShowCmd, "rm %s%s", extra, strings.Join(paths, " "))

	found, err := f.sources("rm", paths, o)
	if err != nil {
		return err
	}
	for _, p := range found {
		f.echo(o.Verbose, "rm %s%s", extra, p)
		name := f.resolve(p)
		if f.isDir(name) {
			if o.Force {
				f.logger.Debug("skipping directory", "op", "rm", "path", p)
				continue
			}
			return newPathError("rm", p, ErrIsDir)
		}
		if err := f.backend.Remove(name); err != nil {
			return wrapError("rm", p, err)
		}
		f.logger.Debug("removed file", "op", "rm", "path", p)
	}
	return nil
}

// Rmdir removes directories with everything they contain. Patterns are
// globbed. A path that is not a directory is an INVALID_INPUT error unless
// WithForce is given.
func (f *FS) Rmdir(paths []string, opts ...Option) error {
	o := newOptions(opts)
	extra := flag(o.Force, "-f")
	f.echo(o.ShowCmd, "rmdir %s%s", extra, strings.Join(paths, " "))

	found, err := f.sources("rmdir", paths, o)
	if err != nil {
		return err
	}
	for _, p := range found {
		f.echo(o.Verbose, "rmdir %s%s", extra, p)
		name := f.resolve(p)
		if !f.isDir(name) {
			if o.Force {
				f.logger.Debug("skipping non-directory", "op", "rmdir", "path", p)
				continue
			}
			return newPathError("rmdir", p, ErrNotDir)
		}
		if err := f.backend.RemoveAll(name); err != nil {
			return wrapError("rmdir", p, err)
		}
		f.logger.Debug("removed directory", "op", "rmdir", "path", p)
	}
	return nil
}

// EmptyDir removes every entry of each directory, dot files included. A
// missing path or a file is an error unless WithForce is given.
func (f *FS) EmptyDir(dirs []string, opts ...Option) error {
	o := newOptions(opts)
	f.echo(o.ShowCmd, "empty_dir %s%s", flag(o.Force, "-f"), strings.Join(dirs, " "))

	for _, dir := range dirs {
		name := f.resolve(dir)
		if err := f.requireDir("empty_dir", name); err != nil {
			if o.Force {
				f.logger.Debug("skipping", "op", "empty_dir", "path", dir, "error", err)
				continue
			}
			return err
		}

		entries, err := f.backend.ReadDir(name)
		if err != nil {
			return wrapError("empty_dir", dir, err)
		}
		for _, entry := range entries {
			p := Join(dir, entry.Name())
			f.echo(o.Verbose, "rm -r %s", p)
			if err := f.backend.RemoveAll(path.Join(name, entry.Name())); err != nil {
				return wrapError("empty_dir", p, err)
			}
		}
		f.logger.Debug("emptied directory", "op", "empty_dir", "path", dir, "entries", len(entries))
	}
	return nil
}

// RmR removes files and directories recursively. Patterns are globbed and
// missing paths are ignored. Honors WithVerbose and WithShowCmd.
func (f *FS) RmR(paths []string, opts ...Option) error {
	o := newOptions(opts)
	f.echo(o.ShowCmd, "rm -r %s", strings.Join(paths, " "))

	found, _, err := f.expand(paths, o)
	if err != nil {
		return err
	}
	for _, p := range found {
		if err := f.removeAll(p, o); err != nil {
			return err
		}
	}
	return nil
}

// RmIf removes, recursively, every match of pattern for which cond returns
// true.
//
//	f.RmIf("/tmp/**/*.rb", func(p pa.Path) bool { return p.Name() == "old" })
func (f *FS) RmIf(pattern string, cond func(Path) bool, opts ...Option) error {
	o := newOptions(opts)
	matches, _, err := f.expand([]string{pattern}, o)
	if err != nil {
		return err
	}
	for _, p := range matches {
		if !cond(parse(p)) {
			continue
		}
		if err := f.removeAll(p, o); err != nil {
			return err
		}
	}
	return nil
}

func (f *FS) removeAll(p string, o *Options) error {
	f.echo(o.Verbose, "rm -r %s", p)
	if err := f.backend.RemoveAll(f.resolve(p)); err != nil {
		return wrapError("rm", p, err)
	}
	f.logger.Debug("removed recursively", "op", "rm", "path", p)
	return nil
}

// Ln creates hard links. See Symln for the destination rules.
func (f *FS) Ln(srcs []string, dest string, opts ...Option) error {
	return f.link(false, srcs, dest, newOptions(opts))
}

// Symln creates symbolic links to each source.
//
// When dest is an existing directory the links are created inside it under
// the source base names. An existing destination, including a dangling
// link, is an ALREADY_EXISTS error unless WithForce is given, which removes
// it first. Wildcard sources are globbed; literal sources are stored as
// given, so links may dangle or be relative to their own directory.
func (f *FS) Symln(srcs []string, dest string, opts ...Option) error {
	return f.link(true, srcs, dest, newOptions(opts))
}

func (f *FS) link(symbolic bool, srcs []string, dest string, o *Options) error {
	op := "ln"
	if symbolic {
		op = "symlink"
	}
	extra := flag(symbolic, "-s") + flag(o.Force, "-f")
	f.echo(o.ShowCmd, "ln %s%s %s", extra, strings.Join(srcs, " "), dest)

	var sources []string
	for _, src := range srcs {
		if !strings.ContainsAny(src, globMeta) {
			sources = append(sources, src)
			continue
		}
		matches, err := f.glob(src, o)
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}

	destDir := f.isDir(f.resolve(dest))
	for _, src := range sources {
		target := dest
		if destDir {
			target = Join(dest, Base(src))
		}
		name := f.resolve(target)

		exists, err := f.lexists(name)
		if err != nil {
			return wrapError(op, target, err)
		}
		if exists {
			if !o.Force {
				return newPathError(op, target, fs.ErrExist)
			}
			if err := f.backend.RemoveAll(name); err != nil {
				return wrapError(op, target, err)
			}
		}

		f.echo(o.Verbose, "ln %s%s %s", extra, src, target)
		if symbolic {
			err = f.backend.Symlink(src, name)
		} else {
			err = f.backend.Link(f.resolve(src), name)
		}
		if err != nil {
			return wrapError(op, target, err)
		}
		f.logger.Debug("created link", "op", op, "path", target, "target", src)
	}
	return nil
}

// Readlink returns the target stored in a symbolic link.
func (f *FS) Readlink(p string) (string, error) {
	target, err := f.backend.Readlink(f.resolve(p))
	if err != nil {
		return "", wrapError("readlink", p, err)
	}
	return target, nil
}

// sources expands patterns for commands that require their inputs. Missing
// literal paths are NOT_FOUND errors unless o.Force is set.
func (f *FS) sources(op string, patterns []string, o *Options) ([]string, error) {
	found, missing, err := f.expand(patterns, o)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		if !o.Force {
			return nil, newPathError(op, missing[0], fs.ErrNotExist)
		}
		f.logger.Debug("skipping missing paths", "op", op, "paths", missing)
	}
	return found, nil
}

// lexists reports whether name exists without following a final symlink.
func (f *FS) lexists(name string) (bool, error) {
	_, err := f.backend.Lstat(name)
	switch {
	case err == nil:
		return true, nil
	case isNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// isDir reports whether name is a directory, following symlinks.
func (f *FS) isDir(name string) bool {
	info, err := f.backend.Stat(name)
	return err == nil && info.IsDir()
}

// chmod sets mode on name when the backend supports modes.
func (f *FS) chmod(name string, mode fs.FileMode) error {
	err := f.backend.Chmod(name, mode)
	if errors.Is(err, backend.ErrUnsupported) {
		return nil
	}
	return err
}

func modeOr(mode *fs.FileMode, fallback fs.FileMode) fs.FileMode {
	if mode == nil {
		return fallback
	}
	return *mode
}
