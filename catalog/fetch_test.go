package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/storage"
)

func TestFetch(t *testing.T) {
	cache := billy.NewInMemoryFS()
	f := newFixture(t)
	f.catalog.resolver = storage.NewResolver(cache, storage.WithSources(storage.Source{Name: "local", FS: f.storage}))

	f.commit(t, "Initial commit")
	jar := f.artifact(t, "/tmp/paper.jar", "jar")
	maps := f.artifact(t, "/tmp/mappings.txt", "maps")
	f.ingest(t, 10, "application:/tmp/paper.jar:"+jar, "mojang.mappings:/tmp/mappings.txt:"+maps+":mappings.txt")

	ctx := context.Background()
	res, err := f.catalog.Fetch(ctx, FetchRequest{Project: "paper", Version: "1.20.1", Build: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Build.Number)
	assert.Equal(t, map[string]string{
		"application":     "paper/1.20.1/10/paper-1.20.1-10.jar",
		"mojang:mappings": "paper/1.20.1/10/mappings.txt",
	}, res.Paths)

	data, err := cache.ReadFile("paper/1.20.1/10/mappings.txt")
	require.NoError(t, err)
	assert.Equal(t, "maps", string(data))

	res, err = f.catalog.Fetch(ctx, FetchRequest{Project: "paper", Version: "1.20.1", Build: 10, Channel: "application"})
	require.NoError(t, err)
	assert.Len(t, res.Paths, 1)
	assert.Equal(t, 0, f.db.OpenSessions())
}

func TestFetch_Errors(t *testing.T) {
	f := newFixture(t)
	f.catalog.resolver = storage.NewResolver(billy.NewInMemoryFS())

	f.commit(t, "Initial commit")
	jar := f.artifact(t, "/tmp/paper.jar", "jar")
	f.ingest(t, 10, "application:/tmp/paper.jar:"+jar)

	tests := []struct {
		name string
		req  FetchRequest
		want error
	}{
		{name: "unknown build", req: FetchRequest{Project: "paper", Version: "1.20.1", Build: 11}, want: cerrors.ErrBuildNotFound},
		{name: "unknown version", req: FetchRequest{Project: "paper", Version: "1.19", Build: 10}, want: cerrors.ErrBuildNotFound},
		{name: "unknown channel", req: FetchRequest{Project: "paper", Version: "1.20.1", Build: 10, Channel: "server"}, want: cerrors.ErrBuildNotFound},
		{name: "no source has it", req: FetchRequest{Project: "paper", Version: "1.20.1", Build: 10}, want: cerrors.ErrArtifactCopyFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.Fetch(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFetch_NoResolver(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Fetch(context.Background(), FetchRequest{Project: "paper", Version: "1.20.1", Build: 10})
	require.Error(t, err)
	assert.True(t, cerrors.HasCode(err, cerrors.CodeInvalidConfig))
}
