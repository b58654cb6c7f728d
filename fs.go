package pa

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmgilman/go/fs/core"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/mitchellh/go-homedir"

	"github.com/jmgilman/go/pa/backend"
)

// FS is a handle over a backend with its own working directory.
//
// Paths given to FS methods may be absolute or relative to the working
// directory; paths handed back keep the caller's form. The handle may be
// shared between goroutines, but operations themselves run sequentially
// and offer no atomicity beyond the underlying calls.
type FS struct {
	mu      sync.RWMutex
	wd      string
	backend backend.Backend
	out     io.Writer
	logger  *slog.Logger
	tmpDir  string
}

// NewFS creates a filesystem handle.
//
// Example usage:
//
//	f, err := pa.NewFS()                   // host filesystem, process cwd
//	f, err := pa.NewFS(pa.WithMemory())    // in-memory, cwd "/"
func NewFS(opts ...FSOption) (*FS, error) {
	o := FSOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.Backend == nil {
		o.Backend = backend.NewLocal()
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	local := o.Backend.Type() == core.FSTypeLocal
	if o.TempDir == "" {
		o.TempDir = "/tmp"
		if local {
			o.TempDir = os.TempDir()
		}
	}

	wd := o.WorkDir
	if wd == "" {
		wd = "/"
		if local {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, wrapError("getwd", "", err)
			}
			wd = cwd
		}
	}
	wd = filepath.ToSlash(wd)
	if !path.IsAbs(wd) {
		return nil, platformerrors.Newf(platformerrors.CodeInvalidInput, "working directory must be absolute: %s", wd)
	}

	f := &FS{
		wd:      path.Clean(wd),
		backend: o.Backend,
		out:     o.Output,
		logger:  o.Logger,
		tmpDir:  o.TempDir,
	}
	if err := f.requireDir("cd", f.wd); err != nil {
		return nil, err
	}
	return f, nil
}

// Backend returns the backend the handle operates on.
func (f *FS) Backend() backend.Backend {
	return f.backend
}

// Pwd returns the working directory.
func (f *FS) Pwd() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.wd
}

// Home returns the home directory of the current user.
func (f *FS) Home() string {
	return Home()
}

// Cd changes the working directory of the handle. The process working
// directory is not touched. Honors WithVerbose and WithShowCmd.
func (f *FS) Cd(dir string, opts ...Option) error {
	o := newOptions(opts)
	if dir == "" {
		dir = f.Home()
	}
	f.echo(o.Verbose || o.ShowCmd, "cd %s", dir)

	target := f.resolve(dir)
	if err := f.requireDir("cd", target); err != nil {
		return err
	}

	f.mu.Lock()
	f.wd = target
	f.mu.Unlock()
	return nil
}

// WithinDir runs fn with the working directory set to dir and restores the
// previous directory afterwards, even when fn fails.
func (f *FS) WithinDir(dir string, fn func() error, opts ...Option) error {
	prev := f.Pwd()
	if err := f.Cd(dir, opts...); err != nil {
		return err
	}
	defer func() {
		f.mu.Lock()
		f.wd = prev
		f.mu.Unlock()
	}()
	return fn()
}

// Chroot returns a new handle whose root is dir. The new handle starts at
// "/" and shares the output and logger of f.
func (f *FS) Chroot(dir string, opts ...Option) (*FS, error) {
	o := newOptions(opts)
	f.echo(o.Verbose || o.ShowCmd, "chroot %s", dir)

	root := f.resolve(dir)
	scoped, err := f.backend.Chroot(root)
	if err != nil {
		return nil, wrapError("chroot", dir, err)
	}
	b, ok := scoped.(backend.Backend)
	if !ok {
		return nil, newPathError("chroot", dir, backend.ErrUnsupported)
	}

	tmp := "/"
	if rel, ok := within(root, f.tmpDir); ok {
		tmp = rel
	}

	return &FS{
		wd:      "/",
		backend: b,
		out:     f.out,
		logger:  f.logger,
		tmpDir:  tmp,
	}, nil
}

// resolve maps a caller path to an absolute, clean backend path.
func (f *FS) resolve(name string) string {
	if name == "~" || strings.HasPrefix(name, "~/") {
		if expanded, err := homedir.Expand(name); err == nil {
			name = expanded
		}
	}
	name = filepath.ToSlash(name)
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	return path.Join(f.Pwd(), name)
}

// requireDir fails unless the resolved path is an existing directory.
func (f *FS) requireDir(op, resolved string) error {
	info, err := f.backend.Stat(resolved)
	if err != nil {
		return wrapError(op, resolved, err)
	}
	if !info.IsDir() {
		return newPathError(op, resolved, ErrNotDir)
	}
	return nil
}

// echo writes a shell-like command line when enabled.
func (f *FS) echo(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	_, _ = fmt.Fprintf(f.out, format+"\n", args...)
}

// within reports the path of child relative to root, as an absolute path
// inside root.
func within(root, child string) (string, bool) {
	child = path.Clean(filepath.ToSlash(child))
	switch {
	case root == "/":
		return child, true
	case child == root:
		return "/", true
	case strings.HasPrefix(child, root+"/"):
		return child[len(root):], true
	}
	return "", false
}

// flag renders a short option for echo lines, or "" when unset.
func flag(set bool, name string) string {
	if !set {
		return ""
	}
	return name + " "
}
