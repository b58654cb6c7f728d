// Package pa provides a path value type and thin, option-driven forwarding
// over filesystem operations.
//
// The package has two halves. Path is a pure value: it splits a path string
// into its directory, base, name and extension once and offers helpers to
// build new paths from those parts. FS is a handle over a backend.Backend
// that lists, globs, creates, copies, moves, removes and inspects files,
// with each operation tuned by functional options such as WithForce or
// WithVerbose.
//
// # Paths
//
// Parts are derived with dirname/basename semantics and a single
// name/extension pattern, without cleaning the path:
//
//	p := pa.New("/home/guten.tar.gz")
//	p.Dir()   // "/home"
//	p.Base()  // "guten.tar.gz"
//	p.Name()  // "guten.tar"
//	p.Ext()   // "gz"
//	p.Fext()  // ".gz"
//
//	pa.Build(pa.Parts{Dir: "foo", Name: "bar", Ext: "avi"})  // "foo/bar.avi"
//	p.Build(pa.Parts{Name: "bar"})                          // "/home/bar.gz"
//
// # Filesystem handles
//
// NewFS defaults to the host filesystem and the process working directory.
// Each handle keeps its own working directory, so Cd and WithinDir never
// touch the process state:
//
//	f, err := pa.NewFS()
//	if err != nil {
//	    return err
//	}
//	err = f.Cp([]string{"src/*.go"}, "backup", pa.WithMkdir(), pa.WithForce())
//	names, err := f.Ls("backup", pa.WithNoDot())
//
// For tests, an in-memory backend avoids touching disk:
//
//	f, err := pa.NewFS(pa.WithMemory())
//
// # Command echo
//
// WithShowCmd prints the whole command once and WithVerbose prints every
// primitive step, in shell syntax, to the handle's output:
//
//	f.Mv([]string{"dira"}, "dirb", pa.WithShowCmd())   // mv dira dirb
//	f.Rm([]string{"a", "b"}, pa.WithVerbose())          // rm a, rm b
//
// # Errors
//
// Failures are platform errors from github.com/jmgilman/go/errors wrapping
// an *fs.PathError. The error code classifies the cause (NOT_FOUND,
// ALREADY_EXISTS, INVALID_INPUT, ...), and errors.Is still matches the
// underlying errno or fs sentinel.
package pa
