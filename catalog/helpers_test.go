package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/git"
	"github.com/PaperMC/bibliothek/git/gittest"
	"github.com/PaperMC/bibliothek/store/memory"
)

var buildTime = time.Date(2023, 6, 12, 12, 0, 0, 0, time.UTC)

// fixture wires a Catalog to an in-memory store, an in-memory repository
// and in-memory artifact filesystems.
type fixture struct {
	db        *memory.DB
	repo      *gittest.Repo
	repoFS    *billy.FS
	artifacts *billy.FS
	storage   *billy.FS
	catalog   *Catalog
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	repoFS := billy.NewInMemoryFS()
	f := &fixture{
		db:        memory.New(),
		repo:      gittest.New(t, repoFS),
		repoFS:    repoFS,
		artifacts: billy.NewInMemoryFS(),
		storage:   billy.NewInMemoryFS(),
	}

	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithStorage(f.storage),
		WithArtifactSource(f.artifacts),
		WithRepositoryOpener(f.openRepo),
		WithClock(func() time.Time { return buildTime }),
	}
	f.catalog = New(f.db, append(base, opts...)...)
	return f
}

// commit records a commit one minute after the previous one and returns its hash.
func (f *fixture) commit(t *testing.T, message string) string {
	t.Helper()
	return f.repo.Commit(t, message)
}

// openRepo opens the fixture repository the way OpenPath opens a checkout.
func (f *fixture) openRepo(ctx context.Context, _ string) (History, error) {
	repo, err := git.Open(ctx, &git.Options{FS: f.repoFS})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// artifact writes an artifact source file and returns its sha256.
func (f *fixture) artifact(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, f.artifacts.WriteFile(path, []byte(content), 0o644))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func paperRequest(number int, downloads ...string) IngestRequest {
	return IngestRequest{
		Names: Names{
			Project:             "paper",
			ProjectFriendlyName: "Paper",
			VersionGroup:        "1.20",
			Version:             "1.20.1",
		},
		BuildNumber:    number,
		RepositoryPath: "/src/paper",
		Downloads:      downloads,
	}
}

func (f *fixture) ingest(t *testing.T, number int, downloads ...string) *IngestResult {
	t.Helper()

	res, err := f.catalog.Ingest(context.Background(), paperRequest(number, downloads...))
	require.NoError(t, err)
	return res
}

