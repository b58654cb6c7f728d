package pa

import (
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	platformerrors "github.com/jmgilman/go/errors"
	"golang.org/x/sys/unix"
)

var (
	// ErrUnknownType is returned when copying a file that is neither a
	// regular file, a directory nor a symbolic link.
	ErrUnknownType = errors.New("unknown file type")

	// ErrSameFile is returned when a copy or move would overwrite its own
	// source.
	ErrSameFile = errors.New("source and destination are the same file")

	// ErrNotDir is the cause when a path must be a directory but is not,
	// including a multi-source copy or move onto a file.
	ErrNotDir error = unix.ENOTDIR

	// ErrIsDir is the cause when a path must not be a directory but is.
	ErrIsDir error = unix.EISDIR

	errBadPattern = path.ErrBadPattern

	errTooManyLinks error = unix.ELOOP
)

// wrapError classifies err and wraps it with the operation name. The cause
// is kept as an *fs.PathError so errors.Is and errors.As see both the errno
// and the path. Errors that are already classified are returned unchanged.
func wrapError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	if platformerrors.GetCode(err) != platformerrors.CodeUnknown {
		return err
	}

	var pathErr *fs.PathError
	var linkErr *os.LinkError
	if !errors.As(err, &pathErr) && !errors.As(err, &linkErr) {
		err = &fs.PathError{Op: op, Path: name, Err: err}
	}
	return platformerrors.Wrap(err, classifyError(err), op+" failed")
}

// newPathError builds a classified error for a failure detected by pa
// itself rather than reported by the backend.
func newPathError(op, name string, cause error) error {
	return wrapError(op, name, &fs.PathError{Op: op, Path: name, Err: cause})
}

// classifyError maps filesystem errors to platform error codes.
func classifyError(err error) platformerrors.ErrorCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return platformerrors.CodeNotFound
	case errors.Is(err, fs.ErrExist):
		return platformerrors.CodeAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return platformerrors.CodeForbidden
	case errors.Is(err, errors.ErrUnsupported):
		return platformerrors.CodeNotImplemented
	case errors.Is(err, unix.ENOTDIR),
		errors.Is(err, unix.EISDIR),
		errors.Is(err, unix.EINVAL),
		errors.Is(err, unix.ELOOP),
		errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrSameFile),
		errors.Is(err, errBadPattern),
		errors.Is(err, doublestar.ErrBadPattern):
		return platformerrors.CodeInvalidInput
	case errors.Is(err, unix.EXDEV):
		return platformerrors.CodeConflict
	default:
		return platformerrors.CodeInternal
	}
}

// isNotExist reports whether err means the path is missing.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
