package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/jmgilman/go/fs/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemory(t *testing.T) *BillyFS {
	t.Helper()
	b := NewMemory()
	require.NoError(t, b.MkdirAll("root/a/c", 0o755))
	require.NoError(t, b.WriteFile("root/a/b.txt", []byte("b"), 0o644))
	require.NoError(t, b.WriteFile("root/a/c/d.txt", []byte("d"), 0o644))
	require.NoError(t, b.WriteFile("root/z.txt", []byte("z"), 0o644))
	return b
}

func TestBillyFS_Type(t *testing.T) {
	assert.Equal(t, core.FSTypeMemory, NewMemory().Type())
	assert.Equal(t, core.FSTypeUnknown, Wrap(memfs.New()).Type())
}

func TestBillyFS_Unwrap(t *testing.T) {
	bfs := memfs.New()
	b := Wrap(bfs)
	assert.Same(t, bfs, b.Unwrap())
}

func TestBillyFS_ReadWrite(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.WriteFile("foo.txt", []byte("hello"), 0o644))

	data, err := b.ReadFile("foo.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	f, err := b.Open("foo.txt")
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestBillyFS_CreateNeedsParent(t *testing.T) {
	b := seedMemory(t)

	_, err := b.Create("root/missing/x.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = b.OpenFile("root/z.txt/x", os.O_WRONLY|os.O_CREATE, 0o644)
	assert.ErrorIs(t, err, syscall.ENOTDIR)

	f, err := b.Create("root/a/new.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestBillyFS_Exists(t *testing.T) {
	b := seedMemory(t)

	ok, err := b.Exists("root/z.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Exists("root/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBillyFS_Mkdir(t *testing.T) {
	b := seedMemory(t)

	t.Run("creates a single directory", func(t *testing.T) {
		require.NoError(t, b.Mkdir("root/new", 0o755))
		info, err := b.Stat("root/new")
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing entry", func(t *testing.T) {
		err := b.Mkdir("root/z.txt", 0o755)
		assert.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("missing parent", func(t *testing.T) {
		err := b.Mkdir("root/nope/child", 0o755)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("parent is a file", func(t *testing.T) {
		err := b.Mkdir("root/z.txt/child", 0o755)
		assert.ErrorIs(t, err, syscall.ENOTDIR)
	})
}

func TestBillyFS_RemoveAll(t *testing.T) {
	b := seedMemory(t)

	require.NoError(t, b.RemoveAll("root/a"))
	ok, err := b.Exists("root/a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.Exists("root/z.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, b.RemoveAll("root/missing"))
}

func TestBillyFS_Walk(t *testing.T) {
	b := seedMemory(t)

	t.Run("lexical order", func(t *testing.T) {
		var got []string
		err := b.Walk("root", func(path string, _ fs.DirEntry, err error) error {
			require.NoError(t, err)
			got = append(got, path)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"root",
			"root/a",
			"root/a/b.txt",
			"root/a/c",
			"root/a/c/d.txt",
			"root/z.txt",
		}, got)
	})

	t.Run("skip dir", func(t *testing.T) {
		var got []string
		err := b.Walk("root", func(path string, d fs.DirEntry, _ error) error {
			got = append(got, path)
			if d.IsDir() && path == "root/a" {
				return fs.SkipDir
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "root/a", "root/z.txt"}, got)
	})

	t.Run("skip all", func(t *testing.T) {
		count := 0
		err := b.Walk("root", func(string, fs.DirEntry, error) error {
			count++
			if count == 2 {
				return fs.SkipAll
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("missing root", func(t *testing.T) {
		var seen error
		err := b.Walk("nope", func(_ string, _ fs.DirEntry, err error) error {
			seen = err
			return err
		})
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.ErrorIs(t, seen, fs.ErrNotExist)
	})
}

func TestBillyFS_Chroot(t *testing.T) {
	b := seedMemory(t)

	scoped, err := b.Chroot("root/a")
	require.NoError(t, err)
	assert.Equal(t, core.FSTypeMemory, scoped.Type())

	data, err := scoped.ReadFile("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))

	require.NoError(t, scoped.WriteFile("new.txt", []byte("n"), 0o644))
	ok, err := b.Exists("root/a/new.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = b.Chroot("root/z.txt")
	assert.ErrorIs(t, err, syscall.ENOTDIR)

	_, err = b.Chroot("root/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBillyFS_Symlink(t *testing.T) {
	b := seedMemory(t)

	require.NoError(t, b.Symlink("z.txt", "root/link"))

	target, err := b.Readlink("root/link")
	require.NoError(t, err)
	assert.Equal(t, "z.txt", target)

	info, err := b.Lstat("root/link")
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink)
}

func TestBillyFS_Unsupported(t *testing.T) {
	b := seedMemory(t)

	err := b.Link("root/z.txt", "root/hard")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	_, err = b.FileID("root/z.txt", true)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBillyFS_Owner(t *testing.T) {
	b := seedMemory(t)

	uid, gid, err := b.Owner("root/z.txt")
	require.NoError(t, err)
	assert.Equal(t, syscall.Geteuid(), uid)
	assert.Equal(t, syscall.Getegid(), gid)

	_, _, err = b.Owner("root/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBillyFS_Times(t *testing.T) {
	b := seedMemory(t)

	times, err := b.Times("root/z.txt")
	require.NoError(t, err)
	assert.Equal(t, times.Mtime, times.Atime)
	assert.Equal(t, times.Mtime, times.Ctime)
}
