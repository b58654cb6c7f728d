package pa

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mode(t *testing.T, name string) os.FileMode {
	t.Helper()
	info, err := os.Lstat(name)
	require.NoError(t, err)
	return info.Mode().Perm()
}

func TestFS_Touch(t *testing.T) {
	t.Run("creates files", func(t *testing.T) {
		f, out := newTestFS(t)
		root := f.Pwd()

		require.NoError(t, f.Touch([]string{"a", "b"}, WithShowCmd()))
		assert.Equal(t, "touch a b\n", out.String())
		assert.FileExists(t, filepath.Join(root, "a"))
		assert.Equal(t, os.FileMode(0o644), mode(t, filepath.Join(root, "b")))
	})

	t.Run("existing", func(t *testing.T) {
		f, _ := newTestFS(t)
		tree(t, f.Pwd(), "a")

		err := f.Touch([]string{"a"})
		assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))
		assert.ErrorIs(t, err, os.ErrExist)

		require.NoError(t, f.Touch([]string{"a"}, WithForce()))
		data, err := os.ReadFile(filepath.Join(f.Pwd(), "a"))
		require.NoError(t, err)
		assert.Equal(t, "a", string(data), "force must not truncate")
	})

	t.Run("mkdir and mode", func(t *testing.T) {
		f, out := newTestFS(t)
		root := f.Pwd()

		require.NoError(t, f.Touch([]string{"x/y/z"}, WithMkdir(), WithMode(0o600), WithVerbose()))
		assert.Equal(t, "touch x/y/z\n", out.String())
		assert.Equal(t, os.FileMode(0o600), mode(t, filepath.Join(root, "x", "y", "z")))
		assert.Equal(t, os.FileMode(0o775), mode(t, filepath.Join(root, "x", "y")))
	})

	t.Run("missing parent", func(t *testing.T) {
		f, _ := newTestFS(t)
		err := f.Touch([]string{"nope/a"})
		assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
	})
}

func TestFS_Mkdir(t *testing.T) {
	f, out := newTestFS(t)
	root := f.Pwd()

	require.NoError(t, f.Mkdir([]string{"a/b/c"}, WithMode(0o750), WithShowCmd()))
	assert.Equal(t, "mkdir a/b/c\n", out.String())
	assert.DirExists(t, filepath.Join(root, "a", "b", "c"))
	assert.Equal(t, os.FileMode(0o750), mode(t, filepath.Join(root, "a")))
	assert.Equal(t, os.FileMode(0o750), mode(t, filepath.Join(root, "a", "b", "c")))

	err := f.Mkdir([]string{"a"})
	assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))
	require.NoError(t, f.Mkdir([]string{"a", "d"}, WithForce()))
	assert.DirExists(t, filepath.Join(root, "d"))
	assert.Equal(t, os.FileMode(0o775), mode(t, filepath.Join(root, "d")))

	require.NoError(t, f.Mkdir([]string{"zero"}, WithMode(0)))
	assert.Equal(t, os.FileMode(0), mode(t, filepath.Join(root, "zero")))
	require.NoError(t, f.Touch([]string{"empty"}, WithMode(0)))
	assert.Equal(t, os.FileMode(0), mode(t, filepath.Join(root, "empty")))
}

func TestFS_MkTmp(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	pattern := regexp.MustCompile(`^work\.[0-9A-F]{6}$`)

	dir, err := f.MkTmpDir("work")
	require.NoError(t, err)
	assert.Equal(t, root, dir.Dir())
	assert.Regexp(t, pattern, dir.Base())
	assert.DirExists(t, dir.Path())
	assert.Equal(t, os.FileMode(0o700), mode(t, dir.Path()))

	file, err := f.MkTmpFile("work")
	require.NoError(t, err)
	assert.Regexp(t, pattern, file.Base())
	assert.FileExists(t, file.Path())
	assert.Equal(t, os.FileMode(0o600), mode(t, file.Path()))

	pid, err := f.MkTmpFile("")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.[0-9A-F]{6}$`, pid.Base())

	tree(t, root, "other/")
	in, err := f.MkTmpDir("x", WithTempDirOption("other"))
	require.NoError(t, err)
	assert.Equal(t, root+"/other", in.Dir())
}

func TestFS_WithinTmp(t *testing.T) {
	f, _ := newTestFS(t)

	var dir Path
	err := f.WithinTmpDir("job", func(p Path) error {
		dir = p
		return os.WriteFile(filepath.Join(p.Path(), "f"), []byte("x"), 0o644)
	})
	require.NoError(t, err)
	assert.NoDirExists(t, dir.Path())

	var file Path
	err = f.WithinTmpFile("job", func(p Path) error {
		file = p
		assert.FileExists(t, p.Path())
		return os.ErrClosed
	})
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoFileExists(t, file.Path())
}

func TestFS_Rm(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		opts     []Option
		wantCode platformerrors.ErrorCode
		remain   []string
		gone     []string
	}{
		{name: "files", paths: []string{"a", "b"}, gone: []string{"a", "b"}, remain: []string{"dir"}},
		{name: "glob", paths: []string{"*.txt"}, gone: []string{"x.txt", "y.txt"}, remain: []string{"a"}},
		{name: "directory", paths: []string{"dir"}, wantCode: platformerrors.CodeInvalidInput, remain: []string{"dir"}},
		{name: "directory forced", paths: []string{"dir", "a"}, opts: []Option{WithForce()}, remain: []string{"dir"}, gone: []string{"a"}},
		{name: "missing", paths: []string{"zzz", "a"}, wantCode: platformerrors.CodeNotFound, remain: []string{"a"}},
		{name: "missing forced", paths: []string{"zzz", "a"}, opts: []Option{WithForce()}, gone: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFS(t)
			root := f.Pwd()
			tree(t, root, "a", "b", "x.txt", "y.txt", "dir/c")

			err := f.Rm(tt.paths, tt.opts...)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, platformerrors.GetCode(err))
			} else {
				require.NoError(t, err)
			}
			for _, name := range tt.remain {
				_, err := os.Lstat(filepath.Join(root, name))
				assert.NoError(t, err, name)
			}
			for _, name := range tt.gone {
				_, err := os.Lstat(filepath.Join(root, name))
				assert.ErrorIs(t, err, os.ErrNotExist, name)
			}
		})
	}
}

func TestFS_Rm_Echo(t *testing.T) {
	f, out := newTestFS(t)
	tree(t, f.Pwd(), "a", "b")

	require.NoError(t, f.Rm([]string{"a", "b"}, WithForce(), WithShowCmd()))
	assert.Equal(t, "rm -f a b\n", out.String())
}

func TestFS_Rmdir(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "d1/x/y", "d2/", "file")

	err := f.Rmdir([]string{"file"})
	assert.ErrorIs(t, err, ErrNotDir)

	require.NoError(t, f.Rmdir([]string{"d*", "file"}, WithForce()))
	assert.NoDirExists(t, filepath.Join(root, "d1"))
	assert.NoDirExists(t, filepath.Join(root, "d2"))
	assert.FileExists(t, filepath.Join(root, "file"))
}

func TestFS_EmptyDir(t *testing.T) {
	f, out := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "d/a", "d/.hidden", "d/sub/b", "file")

	require.NoError(t, f.EmptyDir([]string{"d"}, WithVerbose()))
	entries, err := os.ReadDir(filepath.Join(root, "d"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "rm -r d/.hidden\nrm -r d/a\nrm -r d/sub\n", out.String())

	err = f.EmptyDir([]string{"file"})
	assert.ErrorIs(t, err, ErrNotDir)
	require.NoError(t, f.EmptyDir([]string{"missing", "file"}, WithForce()))
}

func TestFS_RmR(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "a/b/c", "x.log", "y.log", "keep")

	require.NoError(t, f.RmR([]string{"a", "*.log", "missing"}))
	assert.NoDirExists(t, filepath.Join(root, "a"))
	assert.NoFileExists(t, filepath.Join(root, "x.log"))
	assert.FileExists(t, filepath.Join(root, "keep"))
}

func TestFS_RmIf(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "src/old.rb", "src/new.rb", "src/lib/old.rb")

	err := f.RmIf("src/**/*.rb", func(p Path) bool { return p.Name() == "old" })
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "src", "old.rb"))
	assert.NoFileExists(t, filepath.Join(root, "src", "lib", "old.rb"))
	assert.FileExists(t, filepath.Join(root, "src", "new.rb"))
}

func TestFS_Symln(t *testing.T) {
	t.Run("link", func(t *testing.T) {
		f, out := newTestFS(t)
		root := f.Pwd()
		tree(t, root, "target")

		require.NoError(t, f.Symln([]string{"target"}, "link", WithShowCmd()))
		assert.Equal(t, "ln -s target link\n", out.String())

		got, err := f.Readlink("link")
		require.NoError(t, err)
		assert.Equal(t, "target", got)
		assert.True(t, f.IsSymlink("link"))
		assert.True(t, f.IsFile("link"))
	})

	t.Run("into directory", func(t *testing.T) {
		f, _ := newTestFS(t)
		root := f.Pwd()
		tree(t, root, "a.txt", "b.txt", "dir/")

		require.NoError(t, f.Symln([]string{"*.txt"}, "dir"))
		got, err := os.Readlink(filepath.Join(root, "dir", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "a.txt", got)
		assert.True(t, f.IsSymlink("dir/b.txt"))
	})

	t.Run("existing dest", func(t *testing.T) {
		f, out := newTestFS(t)
		root := f.Pwd()
		tree(t, root, "new")
		require.NoError(t, os.Symlink("gone", filepath.Join(root, "link")))

		err := f.Symln([]string{"new"}, "link")
		assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))

		require.NoError(t, f.Symln([]string{"new"}, "link", WithForce(), WithVerbose()))
		assert.Equal(t, "ln -s -f new link\n", out.String())
		got, err := f.Readlink("link")
		require.NoError(t, err)
		assert.Equal(t, "new", got)
	})

	t.Run("dangling source", func(t *testing.T) {
		f, _ := newTestFS(t)
		require.NoError(t, f.Symln([]string{"nowhere"}, "link"))
		assert.True(t, f.IsDangling("link"))
		assert.False(t, f.Exists("link"))
	})
}

func TestFS_Ln(t *testing.T) {
	f, _ := newTestFS(t)
	tree(t, f.Pwd(), "a")

	require.NoError(t, f.Ln([]string{"a"}, "b"))
	assert.True(t, f.IsIdentical("a", "b"))
	assert.False(t, f.IsSymlink("b"))

	err := f.Ln([]string{"a"}, "b")
	assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))
}

func TestFS_Readlink(t *testing.T) {
	f, _ := newTestFS(t)
	tree(t, f.Pwd(), "file")

	_, err := f.Readlink("file")
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))

	_, err = f.Readlink("missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestFS_Memory_Commands(t *testing.T) {
	f, err := NewFS(WithMemory())
	require.NoError(t, err)

	require.NoError(t, f.Mkdir([]string{"/a/b"}))
	require.NoError(t, f.Touch([]string{"/a/b/c"}))
	assert.True(t, f.IsFile("/a/b/c"))

	require.NoError(t, f.Cd("/a"))
	names, err := f.Ls("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)

	require.NoError(t, f.RmR([]string{"b"}))
	assert.False(t, f.Exists("/a/b"))
}
