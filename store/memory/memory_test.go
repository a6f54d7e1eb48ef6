package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/store"
	"github.com/PaperMC/bibliothek/store/storetest"
)

func TestDB_Suite(t *testing.T) {
	storetest.TestSuite(t, func(t *testing.T) store.Connector {
		return New()
	})
}

func TestDB_ConnectError(t *testing.T) {
	db := New()
	db.SetConnectError(errors.New("connection refused"))

	_, err := db.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrStorageUnavailable))
	assert.Equal(t, 0, db.OpenSessions())

	db.SetConnectError(nil)
	s, err := db.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, db.OpenSessions())
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 0, db.OpenSessions())
}

func TestSession_ClosedSessionFails(t *testing.T) {
	db := New()
	s, err := db.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	_, err = s.ResolveProject(context.Background(), "paper", "Paper")
	assert.True(t, errors.Is(err, cerrors.ErrStorageUnavailable))
}

func TestSession_ReturnsCopies(t *testing.T) {
	db := New()
	s, err := db.Connect(context.Background())
	require.NoError(t, err)
	defer func() { _ = s.Close(context.Background()) }()

	ctx := context.Background()
	p, err := s.ResolveProject(ctx, "paper", "Paper")
	require.NoError(t, err)
	p.FriendlyName = "mutated"

	again, err := s.ResolveProject(ctx, "paper", "Paper")
	require.NoError(t, err)
	assert.Equal(t, "Paper", again.FriendlyName)

	projects, groups, versions, builds := db.Counts()
	assert.Equal(t, []int{1, 0, 0, 0}, []int{projects, groups, versions, builds})
}
