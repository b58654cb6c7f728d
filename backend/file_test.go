package backend

import (
	"io"
	"testing"

	"github.com/jmgilman/go/fs/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	b := seedMemory(t)

	f, err := b.Create("root/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "root/new.txt", f.Name())

	_, err = f.Write([]byte("hello world"))
	require.NoError(t, err)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "new.txt", info.Name())

	tr, ok := f.(core.Truncater)
	require.True(t, ok)
	require.NoError(t, tr.Truncate(5))

	s, ok := f.(core.Syncer)
	require.True(t, ok)
	assert.NoError(t, s.Sync())
	require.NoError(t, f.Close())

	r, err := b.Open("root/new.txt")
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 3)
	_, err = r.(io.ReaderAt).ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "llo", string(buf))
}
