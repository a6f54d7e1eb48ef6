package billy

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/fstest"
)

func TestInMemoryFS_Suite(t *testing.T) {
	fstest.TestSuite(t, func() parentfs.Filesystem {
		return NewInMemoryFS()
	})
}

func TestOSFS_Suite(t *testing.T) {
	fstest.TestSuite(t, func() parentfs.Filesystem {
		return NewOSFS(t.TempDir())
	})
}

func TestOSFS_RootedPaths(t *testing.T) {
	root := t.TempDir()
	fsys := NewOSFS(root)

	require.NoError(t, fsys.MkdirAll("paper/1.20.1/10", 0o755))
	require.NoError(t, fsys.WriteFile("paper/1.20.1/10/a.jar", []byte("a"), 0o644))

	data, err := os.ReadFile(filepath.Join(root, "paper", "1.20.1", "10", "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, root, fsys.Root())
}

func TestBaseOSFS_AbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "server.jar")
	require.NoError(t, os.WriteFile(p, []byte("jar"), 0o644))

	fsys := NewBaseOSFS()

	ok, err := fsys.Exists(p)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := fsys.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "jar", string(data))
}

func TestFS_NotExistIsWrapped(t *testing.T) {
	fsys := NewInMemoryFS()

	_, err := fsys.Open("missing.jar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
	assert.Contains(t, err.Error(), "billy: open")

	_, err = fsys.Stat("missing.jar")
	assert.True(t, errors.Is(err, iofs.ErrNotExist))

	err = fsys.Remove("missing.jar")
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestFile_StatAndSeek(t *testing.T) {
	fsys := NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("a.txt", []byte("hello"), 0o644))

	f, err := fsys.Open("a.txt")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	pos, err := f.Seek(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pos)

	buf := make([]byte, 4)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ello", string(buf[:n]))
}
