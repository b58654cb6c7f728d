package pa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mitchellh/go-homedir"
)

// nameExt splits a base name into name and extension. The extension is the
// run of non-dot characters after the last dot; a leading dot alone does not
// start an extension.
var nameExt = regexp.MustCompile(`^(.+?)(?:\.([^.]+))?$`)

func splitNameExt(base string) (name, ext string) {
	m := nameExt.FindStringSubmatch(base)
	if m == nil {
		return base, ""
	}
	return m[1], m[2]
}

// Path is an immutable filesystem path with its parts computed up front.
//
// The zero value is the empty path.
type Path struct {
	path     string
	absolute string
	dir      string
	base     string
	name     string
	ext      string
	fext     string
}

// New returns a Path for path. A leading "~" or "~/" is expanded to the home
// directory.
func New(path string) Path {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if expanded, err := homedir.Expand(path); err == nil {
			path = expanded
		}
	}
	return parse(path)
}

func parse(path string) Path {
	p := Path{path: path}
	if path == "" {
		return p
	}
	p.absolute = Absolute(path)
	p.dir = Dir(path)
	p.base = Base(path)
	p.name, p.ext = splitNameExt(p.base)
	if p.ext != "" {
		p.fext = "." + p.ext
	}
	return p
}

// Path returns the path string. It makes Path a Pather.
func (p Path) Path() string { return p.path }

// String returns the path string.
func (p Path) String() string { return p.path }

// GoString returns a form showing both the path and its absolute form.
func (p Path) GoString() string {
	return fmt.Sprintf("pa.Path{path: %q, absolute: %q}", p.path, p.absolute)
}

// Absolute returns the absolute form of the path.
func (p Path) Absolute() string { return p.absolute }

// Dir returns the directory part.
func (p Path) Dir() string { return p.dir }

// DirPath returns the directory part as a Path.
func (p Path) DirPath() Path { return parse(p.dir) }

// DirStrict returns the directory part, or "" when the path has no separator.
func (p Path) DirStrict() string { return DirStrict(p.path) }

// Base returns the last element.
func (p Path) Base() string { return p.base }

// Fname is an alias of Base.
func (p Path) Fname() string { return p.base }

// Name returns the last element without its extension.
func (p Path) Name() string { return p.name }

// Ext returns the extension without the dot.
func (p Path) Ext() string { return p.ext }

// Fext returns the extension with the dot, or "".
func (p Path) Fext() string { return p.fext }

// Short returns the path with the home directory replaced by "~".
func (p Path) Short() string { return Shorten(p.path) }

// Parent returns the n-th parent directory.
func (p Path) Parent(n int) Path { return parse(Parent(p.path, n)) }

// Add appends s to the path string.
//
//	New("/home").Add("~")  // "/home~"
func (p Path) Add(s string) Path { return parse(p.path + s) }

// Sub replaces the first match of re. Submatch references such as $1 are
// expanded in repl.
func (p Path) Sub(re *regexp.Regexp, repl string) Path {
	loc := re.FindStringSubmatchIndex(p.path)
	if loc == nil {
		return p
	}
	var b []byte
	b = append(b, p.path[:loc[0]]...)
	b = re.ExpandString(b, repl, p.path, loc)
	b = append(b, p.path[loc[1]:]...)
	return parse(string(b))
}

// Gsub replaces every match of re.
func (p Path) Gsub(re *regexp.Regexp, repl string) Path {
	return parse(re.ReplaceAllString(p.path, repl))
}

// Replace resets p to path in place and recomputes its parts.
func (p *Path) Replace(path string) {
	*p = New(path)
}

// Match returns the leftmost match of re and its submatches, or nil.
func (p Path) Match(re *regexp.Regexp) []string {
	return re.FindStringSubmatch(p.path)
}

// Matches reports whether re matches anywhere in the path.
func (p Path) Matches(re *regexp.Regexp) bool {
	return re.MatchString(p.path)
}

// Fnmatch reports whether the whole path matches the shell pattern.
func (p Path) Fnmatch(pattern string) (bool, error) {
	return Fnmatch(pattern, p.path)
}

// FnmatchAny reports whether the path matches any of the compiled
// patterns.
func (p Path) FnmatchAny(patterns ...glob.Glob) bool {
	for _, g := range patterns {
		if g.Match(p.path) {
			return true
		}
	}
	return false
}

// HasPrefix reports whether the path string begins with prefix.
func (p Path) HasPrefix(prefix string) bool { return strings.HasPrefix(p.path, prefix) }

// HasSuffix reports whether the path string ends with suffix.
func (p Path) HasSuffix(suffix string) bool { return strings.HasSuffix(p.path, suffix) }

// Equal reports whether both paths hold the same string.
func (p Path) Equal(other Path) bool { return p.path == other.path }

// Compare orders paths lexically by their strings.
func (p Path) Compare(other Path) int { return strings.Compare(p.path, other.path) }

// Join appends elements to the path with Join semantics.
func (p Path) Join(parts ...string) Path {
	return parse(Join(append([]string{p.path}, parts...)...))
}

// Build returns a path whose unspecified parts come from p.
//
//	New("/home/guten.avi").Build(Parts{Name: "bar"})  // "/home/bar.avi"
//	New("/home/guten.avi").Build(Parts{Base: "x"})    // "/home/x"
func (p Path) Build(parts Parts) Path {
	switch {
	case parts.Path != "":
		return parse(parts.Path)
	case parts.Base != "":
		return parse(Build(Parts{Dir: or(parts.Dir, p.DirStrict()), Base: parts.Base}))
	}

	merged := Parts{
		Dir:  or(parts.Dir, p.DirStrict()),
		Name: or(parts.Name, p.name),
		Ext:  p.ext,
		Fext: parts.Fext,
	}
	if parts.Ext != "" {
		merged.Ext = parts.Ext
	}
	return parse(Build(merged))
}

// BuildFunc returns the path computed by fn from p.
func (p Path) BuildFunc(fn func(Path) string) Path {
	return parse(fn(p))
}

func or(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
