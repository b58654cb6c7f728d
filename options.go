package pa

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/go/pa/backend"
)

// FSOptions contains configuration for an FS handle.
type FSOptions struct {
	// Backend performs every filesystem call.
	// If nil, the local host filesystem is used.
	Backend backend.Backend

	// WorkDir is the directory relative paths resolve against. It must be
	// absolute within the backend. Defaults to the process working directory
	// on the local backend and "/" elsewhere.
	WorkDir string

	// Output receives command echo lines for WithVerbose and WithShowCmd.
	// Defaults to os.Stdout.
	Output io.Writer

	// Logger receives debug records for every mutating call.
	// Defaults to a logger that discards everything.
	Logger *slog.Logger

	// TempDir is where MkTmpDir and MkTmpFile create entries.
	// Defaults to os.TempDir() on the local backend and "/tmp" elsewhere.
	TempDir string
}

// FSOption is a functional option for configuring an FS.
type FSOption func(*FSOptions)

// WithBackend configures the FS to use a specific backend.
func WithBackend(b backend.Backend) FSOption {
	return func(opts *FSOptions) {
		opts.Backend = b
	}
}

// WithFilesystem configures the FS to use any billy filesystem, such as a
// memfs or a chroot of osfs. Capabilities the filesystem lacks surface as
// backend.ErrUnsupported.
func WithFilesystem(bfs billy.Filesystem) FSOption {
	return func(opts *FSOptions) {
		opts.Backend = backend.Wrap(bfs)
	}
}

// WithMemory configures the FS to use a fresh in-memory filesystem.
// This is primarily useful for tests.
func WithMemory() FSOption {
	return func(opts *FSOptions) {
		opts.Backend = backend.NewMemory()
	}
}

// WithWorkDir sets the initial working directory.
func WithWorkDir(dir string) FSOption {
	return func(opts *FSOptions) {
		opts.WorkDir = dir
	}
}

// WithOutput sets the writer command echo lines go to.
func WithOutput(w io.Writer) FSOption {
	return func(opts *FSOptions) {
		opts.Output = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) FSOption {
	return func(opts *FSOptions) {
		opts.Logger = logger
	}
}

// WithTempDir sets the default directory for temporary entries.
func WithTempDir(dir string) FSOption {
	return func(opts *FSOptions) {
		opts.TempDir = dir
	}
}

// TransferFunc wraps each item of a Cp or Mv. It receives the source and
// the computed destination along with transfer, which performs the actual
// work for a destination of the hook's choosing. Returning without calling
// transfer skips the item.
type TransferFunc func(src, dest string, transfer func(dest string) error) error

// Options contains the flags accepted by individual operations. Each
// operation documents which of them it honors.
type Options struct {
	// Force skips items that would fail (existing, wrong type, missing) and
	// replaces existing destinations.
	Force bool

	// Verbose echoes every primitive step.
	Verbose bool

	// ShowCmd echoes the whole command once.
	ShowCmd bool

	// Mkdir creates missing destination directories.
	Mkdir bool

	// Mode is the permission for created entries. Nil means the
	// operation's default.
	Mode *fs.FileMode

	// FollowSymlinks copies link targets instead of recreating links.
	FollowSymlinks bool

	// Special makes Cp create directory shells without their contents.
	Special bool

	// DotMatch lets wildcards match names starting with a dot.
	DotMatch bool

	// NoDot hides entries starting with a dot from listings.
	NoDot bool

	// NoBackup hides entries ending with "~" from listings.
	NoBackup bool

	// Errors passes directory read failures to Each callbacks instead of
	// returning them.
	Errors bool

	// TempDir overrides the FS temporary directory.
	TempDir string

	// Transfer wraps each Cp or Mv item.
	Transfer TransferFunc
}

// Option is a functional option for a single operation.
type Option func(*Options)

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithForce enables force semantics.
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// WithVerbose echoes every primitive step.
func WithVerbose() Option {
	return func(o *Options) { o.Verbose = true }
}

// WithShowCmd echoes the command once.
func WithShowCmd() Option {
	return func(o *Options) { o.ShowCmd = true }
}

// WithMkdir creates missing parent or destination directories.
func WithMkdir() Option {
	return func(o *Options) { o.Mkdir = true }
}

// WithMode sets the permission bits for created entries.
func WithMode(mode fs.FileMode) Option {
	return func(o *Options) { o.Mode = &mode }
}

// WithFollowSymlinks copies symlink targets rather than the links.
func WithFollowSymlinks() Option {
	return func(o *Options) { o.FollowSymlinks = true }
}

// WithSpecial copies directories without their contents.
func WithSpecial() Option {
	return func(o *Options) { o.Special = true }
}

// WithDotMatch lets wildcards match hidden names.
func WithDotMatch() Option {
	return func(o *Options) { o.DotMatch = true }
}

// WithNoDot hides dot entries from listings.
func WithNoDot() Option {
	return func(o *Options) { o.NoDot = true }
}

// WithNoBackup hides backup entries ("~" suffix) from listings.
func WithNoBackup() Option {
	return func(o *Options) { o.NoBackup = true }
}

// WithErrors passes read failures to listing callbacks.
func WithErrors() Option {
	return func(o *Options) { o.Errors = true }
}

// WithTempDirOption overrides the temporary directory for one call.
func WithTempDirOption(dir string) Option {
	return func(o *Options) { o.TempDir = dir }
}

// WithTransfer installs a hook around each Cp or Mv item.
//
// Example usage:
//
//	err := f.Cp([]string{"src/*"}, "dst", pa.WithTransfer(
//		func(src, dest string, transfer func(string) error) error {
//			if strings.HasSuffix(src, ".o") {
//				return nil
//			}
//			return transfer(dest)
//		}))
func WithTransfer(fn TransferFunc) Option {
	return func(o *Options) { o.Transfer = fn }
}

// forced returns a copy of o with Force set.
func (o *Options) forced() *Options {
	c := *o
	c.Force = true
	return &c
}
