package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fsb "github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/git/gittest"
)

// testRepo pairs a fixture repository with the Repo under test.
type testRepo struct {
	*gittest.Repo
	fs *fsb.FS
}

// setupTestRepo creates an empty fixture repository on an in-memory filesystem.
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	memFS := fsb.NewInMemoryFS()
	return &testRepo{Repo: gittest.New(t, memFS), fs: memFS}
}

// open opens the fixture through Open.
func (tr *testRepo) open(t *testing.T) *Repo {
	t.Helper()

	repo, err := Open(context.Background(), &Options{FS: tr.fs})
	require.NoError(t, err, "failed to open fixture repository")
	return repo
}
