package pa

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFS_Predicates(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "file", "empty/", "dir/x")
	require.NoError(t, os.WriteFile(filepath.Join(root, "zero"), nil, 0o644))
	require.NoError(t, os.Symlink("file", filepath.Join(root, "link")))
	require.NoError(t, os.Symlink("gone", filepath.Join(root, "dangling")))
	require.NoError(t, unix.Mkfifo(filepath.Join(root, "fifo"), 0o644))

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{name: "exists file", got: f.Exists("file"), want: true},
		{name: "exists missing", got: f.Exists("missing"), want: false},
		{name: "exists dangling", got: f.Exists("dangling"), want: false},
		{name: "is file", got: f.IsFile("file"), want: true},
		{name: "is file via link", got: f.IsFile("link"), want: true},
		{name: "is file dir", got: f.IsFile("dir"), want: false},
		{name: "is dir", got: f.IsDir("dir"), want: true},
		{name: "is symlink", got: f.IsSymlink("link"), want: true},
		{name: "is symlink file", got: f.IsSymlink("file"), want: false},
		{name: "is pipe", got: f.IsPipe("fifo"), want: true},
		{name: "is socket", got: f.IsSocket("fifo"), want: false},
		{name: "is chardev", got: f.IsChardev("/dev/null"), want: true},
		{name: "is blockdev", got: f.IsBlockdev("/dev/null"), want: false},
		{name: "is zero", got: f.IsZero("zero"), want: true},
		{name: "is zero file", got: f.IsZero("file"), want: false},
		{name: "is zero missing", got: f.IsZero("missing"), want: false},
		{name: "readable", got: f.IsReadable("file"), want: true},
		{name: "readable real", got: f.IsReadableReal("file"), want: true},
		{name: "writable", got: f.IsWritable("file"), want: true},
		{name: "writable real", got: f.IsWritableReal("file"), want: true},
		{name: "executable dir", got: f.IsExecutable("dir"), want: true},
		{name: "executable real dir", got: f.IsExecutableReal("dir"), want: true},
		{name: "world readable", got: f.IsWorldReadable("file"), want: true},
		{name: "world writable", got: f.IsWorldWritable("file"), want: false},
		{name: "world executable", got: f.IsWorldExecutable("file"), want: false},
		{name: "owned", got: f.IsOwned("file"), want: true},
		{name: "group owned", got: f.IsGrpOwned("file"), want: true},
		{name: "dangling", got: f.IsDangling("dangling"), want: true},
		{name: "dangling live link", got: f.IsDangling("link"), want: false},
		{name: "dangling file", got: f.IsDangling("file"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFS_Socket(t *testing.T) {
	dir, err := os.MkdirTemp("", "pa")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "s")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	f, err := NewFS(WithWorkDir(dir))
	require.NoError(t, err)
	assert.True(t, f.IsSocket("s"))

	kind, err := f.Type("s")
	require.NoError(t, err)
	assert.Equal(t, TypeSocket, kind)

	err = f.Cp([]string{"s"}, "copy")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))
}

func TestFS_Type(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "file", "dir/")
	require.NoError(t, os.Symlink("file", filepath.Join(root, "link")))
	require.NoError(t, unix.Mkfifo(filepath.Join(root, "fifo"), 0o644))

	tests := map[string]string{
		"file":      TypeFile,
		"dir":       TypeDirectory,
		"link":      TypeSymlink,
		"fifo":      TypeFifo,
		"/dev/null": TypeChardev,
	}
	for name, want := range tests {
		got, err := f.Type(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := f.Type("missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestFS_SizeAndTimes(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "abc")

	size, err := f.Size("abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	atime := time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)
	mtime := time.Date(2022, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, f.Utime(atime, mtime, "abc"))

	got, err := f.Atime("abc")
	require.NoError(t, err)
	assert.True(t, atime.Equal(got))

	got, err = f.Mtime("abc")
	require.NoError(t, err)
	assert.True(t, mtime.Equal(got))

	ctime, err := f.Ctime("abc")
	require.NoError(t, err)
	assert.False(t, ctime.IsZero())

	before := time.Now().Add(-time.Minute)
	require.NoError(t, f.Utime(time.Time{}, time.Time{}, "abc"))
	got, err = f.Mtime("abc")
	require.NoError(t, err)
	assert.True(t, got.After(before))

	_, err = f.Mtime("missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
	err = f.Utime(atime, mtime, "missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestFS_Chmod(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "a", "b")
	require.NoError(t, os.Symlink("a", filepath.Join(root, "link")))

	require.NoError(t, f.Chmod(0o600, "a", "b"))
	assert.Equal(t, os.FileMode(0o600), mode(t, filepath.Join(root, "a")))
	assert.Equal(t, os.FileMode(0o600), mode(t, filepath.Join(root, "b")))

	require.NoError(t, f.Chmod(0o755|os.ModeSetuid, "b"))
	assert.True(t, f.IsSetuid("b"))
	assert.False(t, f.IsSetuid("a"))

	tree(t, root, "shared/")
	require.NoError(t, f.Chmod(0o777|os.ModeSetgid|os.ModeSticky, "shared"))
	assert.True(t, f.IsSetgid("shared"))
	assert.True(t, f.IsSticky("shared"))
	assert.False(t, f.IsSticky("a"))

	require.NoError(t, f.Lchmod(0o640, "a"))
	assert.Equal(t, os.FileMode(0o640), mode(t, filepath.Join(root, "a")))

	err := f.Lchmod(0o600, "link")
	assert.Equal(t, platformerrors.CodeNotImplemented, platformerrors.GetCode(err))

	err = f.Chmod(0o600, "missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestFS_Chown(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "a")
	require.NoError(t, os.Symlink("a", filepath.Join(root, "link")))

	require.NoError(t, f.Chown(-1, -1, "a"))
	require.NoError(t, f.Lchown(os.Geteuid(), os.Getegid(), "link"))
	assert.True(t, f.IsOwned("a"))

	err := f.Chown(-1, -1, "missing")
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestFS_IsIdentical(t *testing.T) {
	f, _ := newTestFS(t)
	root := f.Pwd()
	tree(t, root, "a", "b", "dir/")
	require.NoError(t, os.Symlink("a", filepath.Join(root, "link")))

	assert.True(t, f.IsIdentical("a", "link"))
	assert.True(t, f.IsIdentical("a", root+"/a"))
	assert.True(t, f.IsIdentical("dir/..", "."))
	assert.False(t, f.IsIdentical("a", "b"))
	assert.False(t, f.IsIdentical("a", "missing"))

	mem, err := NewFS(WithMemory())
	require.NoError(t, err)
	require.NoError(t, mem.Touch([]string{"/x"}))
	assert.True(t, mem.IsIdentical("/x", "x"))
	assert.False(t, mem.IsIdentical("/x", "/y"))
}

func TestFS_IsMountpoint(t *testing.T) {
	f, _ := newTestFS(t)
	tree(t, f.Pwd(), "dir/")

	ok, err := f.IsMountpoint("/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.IsMountpoint("dir")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.IsMountpoint("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFS_Memory_Predicates(t *testing.T) {
	f, err := NewFS(WithMemory())
	require.NoError(t, err)
	require.NoError(t, f.Mkdir([]string{"/d"}))
	require.NoError(t, f.Touch([]string{"/d/f"}))

	assert.True(t, f.IsDir("/d"))
	assert.True(t, f.IsFile("/d/f"))
	assert.True(t, f.IsZero("/d/f"))
	assert.True(t, f.IsOwned("/d/f"))

	_, err = f.IsMountpoint("/d")
	assert.Equal(t, platformerrors.CodeNotImplemented, platformerrors.GetCode(err))
}
