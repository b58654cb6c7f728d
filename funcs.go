package pa

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/mitchellh/go-homedir"
)

// Pather is implemented by any value that carries a filesystem path.
type Pather interface {
	Path() string
}

// Get returns the path string held by v.
//
// Strings, Path, *Path and Pather values are accepted. A nil value yields an
// empty string. Anything else is an INVALID_INPUT error.
func Get(v any) (string, error) {
	switch p := v.(type) {
	case nil:
		return "", nil
	case string:
		return p, nil
	case Path:
		return p.path, nil
	case *Path:
		if p == nil {
			return "", nil
		}
		return p.path, nil
	case Pather:
		return p.Path(), nil
	default:
		return "", platformerrors.Newf(platformerrors.CodeInvalidInput, "cannot get path from %T", v)
	}
}

// Dir returns all but the last element of path, like dirname(1).
//
// Trailing separators are ignored and no cleaning is applied:
//
//	Dir("foo.avi")   // "."
//	Dir("/foo")      // "/"
//	Dir("/home/")    // "/"
//	Dir("a//b")      // "a"
func Dir(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		if path == "" {
			return "."
		}
		return "/"
	}
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "."
	}
	dir := strings.TrimRight(trimmed[:i], "/")
	if dir == "" {
		return "/"
	}
	return dir
}

// DirStrict is Dir, except that a path without any separator has no
// directory at all:
//
//	DirStrict("foo")    // ""
//	DirStrict("./foo")  // "."
//	DirStrict("/foo")   // "/"
func DirStrict(path string) string {
	dir := Dir(path)
	if (dir == "." || dir == "/") && !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "/") {
		return ""
	}
	return dir
}

// Base returns the last element of path. Trailing separators are removed
// first; the root stays "/".
func Base(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		if path == "" {
			return ""
		}
		return "/"
	}
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// BaseExt splits the last element of path into name and extension.
//
//	BaseExt("/a/foo.tar.gz")  // "foo.tar", "gz"
//	BaseExt(".bashrc")        // ".bashrc", ""
func BaseExt(path string) (name, ext string) {
	return splitNameExt(Base(path))
}

// Ext returns the extension of the last element of path without the dot.
func Ext(path string) string {
	_, ext := BaseExt(path)
	return ext
}

// Absolute returns the absolute form of path against the process working
// directory. The result is cleaned. "~" is not expanded.
func Absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Expand expands a leading "~" to the home directory and returns the
// absolute form of the result.
func Expand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		expanded = path
	}
	return Absolute(expanded)
}

// Shorten replaces a leading home directory with "~". Only whole segments
// are replaced, so "/home/guten2" stays as is for home "/home/guten".
func Shorten(path string) string {
	home := Home()
	if home == "" || home == "/" {
		return path
	}
	switch {
	case path == home:
		return "~"
	case strings.HasPrefix(path, home+"/"):
		return "~" + path[len(home):]
	}
	return path
}

// Real returns the absolute path with every symbolic link resolved. The
// path must exist on the host.
func Real(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(Absolute(path))
	if err != nil {
		return "", wrapError("realpath", path, err)
	}
	return resolved, nil
}

// Parent applies Dir n times.
func Parent(path string, n int) string {
	for range n {
		path = Dir(path)
	}
	return path
}

// Split returns the directory and last element of path.
func Split(path string) (dir, base string) {
	return Dir(path), Base(path)
}

// SplitAll splits path into every element, starting with the root ("/") or
// "." for relative paths:
//
//	SplitAll("/home/b/a.txt")  // ["/", "home", "b", "a.txt"]
//	SplitAll("a/b")            // [".", "a", "b"]
func SplitAll(path string) []string {
	dir, base := Split(path)
	parts := []string{base}
	for {
		next, elem := Split(dir)
		if next == dir {
			break
		}
		parts = append(parts, elem)
		dir = next
	}
	parts = append(parts, dir)

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// Join joins path elements with a single separator. Empty elements are
// skipped and the result is not cleaned.
//
//	Join("a/", "/b")      // "a/b"
//	Join("/", "a", "")    // "/a"
func Join(parts ...string) string {
	var joined string
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			joined = part
			first = false
			continue
		}
		joined = strings.TrimRight(joined, "/") + "/" + strings.TrimLeft(part, "/")
	}
	return joined
}

// JoinAny is Join over values accepted by Get. Nil and empty values are
// skipped.
func JoinAny(parts ...any) (string, error) {
	strs := make([]string, 0, len(parts))
	for _, part := range parts {
		s, err := Get(part)
		if err != nil {
			return "", err
		}
		strs = append(strs, s)
	}
	return Join(strs...), nil
}

// IsAbsolute reports whether path is already in absolute, clean form.
func IsAbsolute(path string) bool {
	return Absolute(path) == path
}

// Pwd returns the process working directory, or "" when it cannot be
// determined.
func Pwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Home returns the home directory of the current user, or "" when it
// cannot be determined.
func Home() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return home
}

// Fnmatch reports whether path matches the shell pattern. Wildcards may
// cross separators, as with fnmatch(3) without FNM_PATHNAME.
func Fnmatch(pattern, path string) (bool, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, platformerrors.Wrap(
			fmt.Errorf("%w: %s", errBadPattern, err),
			platformerrors.CodeInvalidInput, "fnmatch failed")
	}
	return g.Match(path), nil
}
