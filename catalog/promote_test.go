package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/PaperMC/bibliothek/errors"
)

func TestPromote(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "Initial commit")
	sha := f.artifact(t, "/tmp/paper.jar", "jar")
	x := f.ingest(t, 1, "application:/tmp/paper.jar:"+sha).Build
	y := f.ingest(t, 2, "application:/tmp/paper.jar:"+sha).Build

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := f.catalog.Promote(ctx, x.ID, true)
		require.NoError(t, err)
		assert.Equal(t, x.ID, got.ID)
		assert.True(t, got.Promoted)
	}

	for _, b := range f.db.Builds() {
		switch b.ID {
		case x.ID:
			assert.True(t, b.Promoted)
		case y.ID:
			assert.False(t, b.Promoted, "other builds are untouched")
		}
	}

	got, err := f.catalog.Promote(ctx, x.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Promoted, "promotion is set, not toggled")

	got, err = f.catalog.Promote(ctx, x.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Promoted)
	assert.Equal(t, 0, f.db.OpenSessions())
}

func TestPromote_NotFound(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "Initial commit")
	sha := f.artifact(t, "/tmp/paper.jar", "jar")
	f.ingest(t, 1, "application:/tmp/paper.jar:"+sha)

	_, err := f.catalog.Promote(context.Background(), "missing", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrBuildNotFound))
	assert.Equal(t, cerrors.CodeNotFound, cerrors.CodeOf(err))

	for _, b := range f.db.Builds() {
		assert.False(t, b.Promoted)
	}
	assert.Equal(t, 0, f.db.OpenSessions())
}

func TestPromote_StorageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.db.SetConnectError(errors.New("connection refused"))

	_, err := f.catalog.Promote(context.Background(), "any", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrStorageUnavailable))
}
