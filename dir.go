package pa

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// globMeta holds the characters that make a pattern a glob.
const globMeta = `*?[{\`

// Glob returns the paths matching pattern, sorted.
//
// Patterns support "*", "**", "?", "[set]" and "{a,b}". Wildcards do not
// match names starting with a dot unless WithDotMatch is given or the
// pattern segment itself starts with a dot. "." and ".." are never
// returned. Relative patterns yield paths relative to the working
// directory.
func (f *FS) Glob(pattern string, opts ...Option) ([]Path, error) {
	return f.GlobAll([]string{pattern}, opts...)
}

// GlobAll is Glob over several patterns. Duplicates are removed.
func (f *FS) GlobAll(patterns []string, opts ...Option) ([]Path, error) {
	o := newOptions(opts)
	names, _, err := f.expand(patterns, o)
	if err != nil {
		return nil, err
	}
	paths := make([]Path, 0, len(names))
	for _, name := range names {
		if base := path.Base(name); base == "." || base == ".." {
			continue
		}
		paths = append(paths, parse(name))
	}
	return paths, nil
}

// expand resolves patterns to existing paths in the caller's form. Literal
// patterns that do not exist are returned in missing rather than dropped.
func (f *FS) expand(patterns []string, o *Options) (found, missing []string, err error) {
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !strings.ContainsAny(pattern, globMeta) {
			if _, err := f.backend.Lstat(f.resolve(pattern)); err != nil {
				if !isNotExist(err) {
					return nil, nil, wrapError("glob", pattern, err)
				}
				missing = append(missing, pattern)
				continue
			}
			if !seen[pattern] {
				seen[pattern] = true
				found = append(found, pattern)
			}
			continue
		}

		matches, err := f.glob(pattern, o)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}
	sort.Strings(found)
	return found, missing, nil
}

// glob runs a single wildcard pattern through doublestar over the backend.
func (f *FS) glob(pattern string, o *Options) ([]string, error) {
	absolute := path.IsAbs(pattern)
	wd := f.Pwd()

	full := pattern
	if !absolute {
		full = path.Join(escapeMeta(wd), pattern)
	}
	fsPattern := strings.TrimPrefix(path.Clean(full), "/")
	if fsPattern == "" {
		fsPattern = "."
	}
	if !doublestar.ValidatePattern(fsPattern) {
		return nil, newPathError("glob", pattern, doublestar.ErrBadPattern)
	}

	matches, err := doublestar.Glob(f.backend, fsPattern)
	if err != nil {
		return nil, wrapError("glob", pattern, err)
	}

	base, rest := doublestar.SplitPattern(fsPattern)
	base = unescapeMeta(base)
	segments := strings.Split(rest, "/")

	// Relative results keep the pattern's leading ".." segments and are
	// relative to the directory they climb to.
	ups, anchor := "", "/"
	if !absolute {
		ups = leadingParents(path.Clean(pattern))
		anchor = path.Join(wd, ups)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !visible(m, base, segments, o.DotMatch) {
			continue
		}
		if absolute {
			out = append(out, "/"+m)
			continue
		}
		rel, ok := relativeTo(anchor, "/"+m)
		if !ok {
			continue
		}
		out = append(out, path.Join(ups, rel))
	}
	return out, nil
}

// leadingParents returns the run of ".." segments a clean relative pattern
// starts with, such as "../..".
func leadingParents(pattern string) string {
	n := 0
	for pattern == ".." || strings.HasPrefix(pattern, "../") {
		n++
		pattern = strings.TrimPrefix(strings.TrimPrefix(pattern, ".."), "/")
	}
	return strings.TrimSuffix(strings.Repeat("../", n), "/")
}

// relativeTo returns name relative to dir. The directory itself and names
// outside it are rejected.
func relativeTo(dir, name string) (string, bool) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if !strings.HasPrefix(name, prefix) || name == prefix {
		return "", false
	}
	return strings.TrimPrefix(name, prefix), true
}

// visible reports whether a match may be returned. Every component below the
// literal base that starts with a dot must have been matched by a pattern
// segment that starts with a dot too.
func visible(match, base string, segments []string, dotMatch bool) bool {
	rest := match
	if base != "." {
		rest = strings.TrimPrefix(strings.TrimPrefix(match, base), "/")
	}
	if rest == "" {
		return true
	}
	for _, comp := range strings.Split(rest, "/") {
		if comp == "." || comp == ".." {
			return false
		}
		if dotMatch || !strings.HasPrefix(comp, ".") {
			continue
		}
		allowed := false
		for _, seg := range segments {
			if !strings.HasPrefix(seg, ".") {
				continue
			}
			if ok, _ := doublestar.Match(seg, comp); ok {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(globMeta+"]}", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescapeMeta(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// IsEmpty reports whether dir has no entries.
func (f *FS) IsEmpty(dir string) (bool, error) {
	entries, err := f.backend.ReadDir(f.resolve(dir))
	if err != nil {
		return false, wrapError("readdir", dir, err)
	}
	return len(entries) == 0, nil
}

// Each calls fn for every entry of dir in lexical order. Entries are joined
// to dir unless dir is "." ("foo", not "./foo").
//
// A missing dir is a NOT_FOUND error and a file is an INVALID_INPUT error.
// Honors WithNoDot, WithNoBackup and WithErrors; with WithErrors a read
// failure is handed to fn with dir itself instead of being returned.
// Returning fs.SkipAll from fn stops the iteration without error.
func (f *FS) Each(dir string, fn func(p Path, err error) error, opts ...Option) error {
	o := newOptions(opts)
	if dir == "" {
		dir = "."
	}
	resolved := f.resolve(dir)
	if err := f.requireDir("each", resolved); err != nil {
		return err
	}

	entries, err := f.backend.ReadDir(resolved)
	if err != nil {
		err = wrapError("each", dir, err)
		if !o.Errors {
			return err
		}
		return stopped(fn(parse(dir), err))
	}

	for _, entry := range entries {
		name := entry.Name()
		if hidden(name, o) {
			continue
		}
		if err := fn(parse(child(dir, name)), nil); err != nil {
			return stopped(err)
		}
	}
	return nil
}

// EachR walks dir depth first in lexical order, calling fn for every
// descendant with its path relative to dir. Directory read failures are
// always handed to fn, with the directory's path, after the directory was
// reported itself. Returning fs.SkipDir for a directory skips its contents.
// Symbolic links to directories are reported, not entered.
func (f *FS) EachR(dir string, fn func(p Path, rel string, err error) error, opts ...Option) error {
	o := newOptions(opts)
	if dir == "" {
		dir = "."
	}
	resolved := f.resolve(dir)
	if err := f.requireDir("each_r", resolved); err != nil {
		return err
	}
	root, err := f.followRoot(resolved)
	if err != nil {
		return err
	}

	err = f.backend.Walk(root, func(name string, d fs.DirEntry, err error) error {
		if name == root {
			if err != nil {
				return fn(parse(dir), "", wrapError("each_r", dir, err))
			}
			return nil
		}

		rel := strings.TrimPrefix(name, strings.TrimSuffix(root, "/")+"/")
		if hidden(path.Base(name), o) {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		p := child(dir, rel)
		if err != nil {
			err = wrapError("each_r", p, err)
		}
		return fn(parse(p), rel, err)
	})
	return stopped(err)
}

// followRoot resolves a symlinked walk root so its contents are visited.
func (f *FS) followRoot(name string) (string, error) {
	for range 40 {
		info, err := f.backend.Lstat(name)
		if err != nil {
			return "", wrapError("lstat", name, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return name, nil
		}
		target, err := f.backend.Readlink(name)
		if err != nil {
			return "", wrapError("readlink", name, err)
		}
		if !path.IsAbs(target) {
			target = path.Join(path.Dir(name), target)
		}
		name = path.Clean(target)
	}
	return "", newPathError("each_r", name, errTooManyLinks)
}

// Ls returns the base names of the entries of dir.
func (f *FS) Ls(dir string, opts ...Option) ([]string, error) {
	return f.LsFunc(dir, nil, opts...)
}

// LsFunc returns the base names of the entries of dir for which keep
// returns true. A nil keep keeps everything.
func (f *FS) LsFunc(dir string, keep func(p Path, base string) bool, opts ...Option) ([]string, error) {
	names := []string{}
	err := f.Each(dir, func(p Path, err error) error {
		if err != nil {
			return err
		}
		if keep == nil || keep(p, p.Base()) {
			names = append(names, p.Base())
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// LsR returns the paths of every descendant of dir relative to dir.
//
//	tmp/filea, tmp/dira/fileb  ->  ["dira", "dira/fileb", "filea"]
func (f *FS) LsR(dir string, opts ...Option) ([]string, error) {
	return f.LsRFunc(dir, nil, opts...)
}

// LsRFunc is LsR filtered by keep.
func (f *FS) LsRFunc(dir string, keep func(p Path, rel string) bool, opts ...Option) ([]string, error) {
	rels := []string{}
	err := f.EachR(dir, func(p Path, rel string, err error) error {
		if err != nil {
			return err
		}
		if keep == nil || keep(p, rel) {
			rels = append(rels, rel)
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// Entries returns the entries of dir as paths joined to dir.
func (f *FS) Entries(dir string, opts ...Option) ([]Path, error) {
	var paths []Path
	err := f.Each(dir, func(p Path, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, p)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func hidden(name string, o *Options) bool {
	switch {
	case name == "." || name == "..":
		return true
	case o.NoDot && strings.HasPrefix(name, "."):
		return true
	case o.NoBackup && strings.HasSuffix(name, "~"):
		return true
	}
	return false
}

// child joins name below dir, keeping "." implicit.
func child(dir, name string) string {
	if dir == "." {
		return name
	}
	return Join(dir, name)
}

// stopped turns fs.SkipAll into a clean stop.
func stopped(err error) error {
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}
