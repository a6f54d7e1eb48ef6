// Package storetest provides a conformance test suite for store.Store
// implementations.
//
// Example usage:
//
//	func TestMyStore(t *testing.T) {
//	    storetest.TestSuite(t, func(t *testing.T) store.Connector {
//	        return mystore.New(...)
//	    })
//	}
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/store"
)

// TestSuite runs all conformance tests. newConnector must return a connector
// to a fresh, empty store for each call.
func TestSuite(t *testing.T, newConnector func(t *testing.T) store.Connector) {
	t.Run("ResolveIdempotent", func(t *testing.T) {
		testResolveIdempotent(t, open(t, newConnector(t)))
	})
	t.Run("ResolveFirstWriteWins", func(t *testing.T) {
		testResolveFirstWriteWins(t, open(t, newConnector(t)))
	})
	t.Run("ResolveScopedByProject", func(t *testing.T) {
		testResolveScopedByProject(t, open(t, newConnector(t)))
	})
	t.Run("ResolveConcurrent", func(t *testing.T) {
		testResolveConcurrent(t, newConnector(t))
	})
	t.Run("Builds", func(t *testing.T) {
		testBuilds(t, open(t, newConnector(t)))
	})
	t.Run("LatestBuild", func(t *testing.T) {
		testLatestBuild(t, open(t, newConnector(t)))
	})
	t.Run("Promotion", func(t *testing.T) {
		testPromotion(t, open(t, newConnector(t)))
	})
	t.Run("LookupBuild", func(t *testing.T) {
		testLookupBuild(t, open(t, newConnector(t)))
	})
	t.Run("NotFound", func(t *testing.T) {
		testNotFound(t, open(t, newConnector(t)))
	})
}

func open(t *testing.T, c store.Connector) store.Store {
	t.Helper()

	s, err := c.Connect(context.Background())
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

type hierarchy struct {
	project *domain.Project
	group   *domain.VersionGroup
	version *domain.Version
}

func resolve(t *testing.T, s store.Store, project, group, version string) hierarchy {
	t.Helper()

	ctx := context.Background()
	p, err := s.ResolveProject(ctx, project, project+" friendly")
	require.NoError(t, err)
	g, err := s.ResolveVersionGroup(ctx, p, group)
	require.NoError(t, err)
	v, err := s.ResolveVersion(ctx, p, g, version)
	require.NoError(t, err)
	return hierarchy{p, g, v}
}

func newBuild(h hierarchy, number int, commits ...string) *domain.Build {
	changes := make([]domain.Change, 0, len(commits))
	for _, c := range commits {
		changes = append(changes, domain.Change{Commit: c, Summary: "Summary " + c, Message: "Summary " + c + "\n\nBody"})
	}
	return &domain.Build{
		Project: h.project.ID,
		Version: h.version.ID,
		Number:  number,
		Time:    time.Date(2023, 6, 12, 12, 0, number, 0, time.UTC),
		Changes: changes,
		Downloads: map[string]domain.Download{
			"application":     {Name: fmt.Sprintf("paper-1.20.1-%d.jar", number), SHA256: "abc"},
			"mojang:mappings": {Name: "mappings.txt", SHA256: "def"},
		},
		Channel: domain.BuildChannelDefault,
	}
}

func testResolveIdempotent(t *testing.T, s store.Store) {
	first := resolve(t, s, "paper", "1.20", "1.20.1")
	second := resolve(t, s, "paper", "1.20", "1.20.1")

	assert.NotEmpty(t, first.project.ID)
	assert.Equal(t, first.project.ID, second.project.ID)
	assert.Equal(t, first.group.ID, second.group.ID)
	assert.Equal(t, first.version.ID, second.version.ID)

	assert.Equal(t, "paper", first.project.Name)
	assert.Equal(t, first.project.ID, first.group.Project)
	assert.Equal(t, first.project.ID, first.version.Project)
	assert.Equal(t, first.group.ID, first.version.Group)
	assert.Equal(t, "1.20", first.group.Name)
	assert.Equal(t, "1.20.1", first.version.Name)
	require.NotNil(t, first.version.Time)
	require.NotNil(t, second.version.Time)
	assert.True(t, first.version.Time.Equal(*second.version.Time), "time is set on insert only")
}

func testResolveFirstWriteWins(t *testing.T, s store.Store) {
	ctx := context.Background()

	p1, err := s.ResolveProject(ctx, "paper", "Paper")
	require.NoError(t, err)
	p2, err := s.ResolveProject(ctx, "paper", "Something Else")
	require.NoError(t, err)

	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, "Paper", p2.FriendlyName)

	g1, err := s.ResolveVersionGroup(ctx, p1, "1.20")
	require.NoError(t, err)
	g2, err := s.ResolveVersionGroup(ctx, p1, "1.21")
	require.NoError(t, err)

	v1, err := s.ResolveVersion(ctx, p1, g1, "1.20.1")
	require.NoError(t, err)
	v2, err := s.ResolveVersion(ctx, p1, g2, "1.20.1")
	require.NoError(t, err)

	assert.Equal(t, v1.ID, v2.ID)
	assert.Equal(t, g1.ID, v2.Group, "a version is never re-parented")
}

func testResolveScopedByProject(t *testing.T, s store.Store) {
	paper := resolve(t, s, "paper", "1.20", "1.20.1")
	velocity := resolve(t, s, "velocity", "1.20", "1.20.1")

	assert.NotEqual(t, paper.project.ID, velocity.project.ID)
	assert.NotEqual(t, paper.group.ID, velocity.group.ID)
	assert.NotEqual(t, paper.version.ID, velocity.version.ID)
}

func testResolveConcurrent(t *testing.T, c store.Connector) {
	const workers = 8

	var wg sync.WaitGroup
	results := make([]hierarchy, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			ctx := context.Background()
			s, err := c.Connect(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer func() { _ = s.Close(ctx) }()

			p, err := s.ResolveProject(ctx, "paper", "Paper")
			if err != nil {
				errs[i] = err
				return
			}
			g, err := s.ResolveVersionGroup(ctx, p, "1.21")
			if err != nil {
				errs[i] = err
				return
			}
			v, err := s.ResolveVersion(ctx, p, g, "1.21.1")
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = hierarchy{p, g, v}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.Equal(t, results[0].project.ID, results[i].project.ID)
		assert.Equal(t, results[0].group.ID, results[i].group.ID)
		assert.Equal(t, results[0].version.ID, results[i].version.ID)
	}
}

func testBuilds(t *testing.T, s store.Store) {
	ctx := context.Background()
	h := resolve(t, s, "paper", "1.20", "1.20.1")

	in := newBuild(h, 10, "c3", "c2")
	inserted, err := s.InsertBuild(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, inserted.ID)

	found, err := s.FindBuild(ctx, inserted.ID)
	require.NoError(t, err)

	assert.Equal(t, inserted.ID, found.ID)
	assert.Equal(t, h.project.ID, found.Project)
	assert.Equal(t, h.version.ID, found.Version)
	assert.Equal(t, 10, found.Number)
	assert.True(t, in.Time.Equal(found.Time))
	assert.Equal(t, in.Changes, found.Changes)
	assert.Equal(t, in.Downloads, found.Downloads)
	assert.False(t, found.Promoted)
	assert.Equal(t, domain.BuildChannelDefault, found.Channel)

	empty := newBuild(h, 11)
	empty.Channel = domain.BuildChannelExperimental
	inserted, err = s.InsertBuild(ctx, empty)
	require.NoError(t, err)
	found, err = s.FindBuild(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Changes)
	assert.Equal(t, domain.BuildChannelExperimental, found.Channel)
}

func testLatestBuild(t *testing.T, s store.Store) {
	ctx := context.Background()
	h := resolve(t, s, "paper", "1.20", "1.20.1")
	other := resolve(t, s, "paper", "1.20", "1.20.2")

	latest, err := s.LatestBuild(ctx, h.project, h.version)
	require.NoError(t, err)
	assert.Nil(t, latest, "no builds yet")

	_, err = s.InsertBuild(ctx, newBuild(h, 1, "c1"))
	require.NoError(t, err)
	second, err := s.InsertBuild(ctx, newBuild(h, 2, "c3", "c2"))
	require.NoError(t, err)
	_, err = s.InsertBuild(ctx, newBuild(other, 3, "c9"))
	require.NoError(t, err)

	latest, err = s.LatestBuild(ctx, h.project, h.version)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "c3", latest.LatestCommit())

	// Insertion order wins over build numbers.
	lower, err := s.InsertBuild(ctx, newBuild(h, 1, "c4"))
	require.NoError(t, err)
	latest, err = s.LatestBuild(ctx, h.project, h.version)
	require.NoError(t, err)
	assert.Equal(t, lower.ID, latest.ID)
}

func testPromotion(t *testing.T, s store.Store) {
	ctx := context.Background()
	h := resolve(t, s, "paper", "1.20", "1.20.1")

	x, err := s.InsertBuild(ctx, newBuild(h, 1))
	require.NoError(t, err)
	y, err := s.InsertBuild(ctx, newBuild(h, 2))
	require.NoError(t, err)

	require.NoError(t, s.SetPromoted(ctx, x.ID, true))
	require.NoError(t, s.SetPromoted(ctx, x.ID, true))

	got, err := s.FindBuild(ctx, x.ID)
	require.NoError(t, err)
	assert.True(t, got.Promoted)

	got, err = s.FindBuild(ctx, y.ID)
	require.NoError(t, err)
	assert.False(t, got.Promoted, "other builds are untouched")

	require.NoError(t, s.SetPromoted(ctx, x.ID, false))
	got, err = s.FindBuild(ctx, x.ID)
	require.NoError(t, err)
	assert.False(t, got.Promoted)
}

func testLookupBuild(t *testing.T, s store.Store) {
	ctx := context.Background()
	h := resolve(t, s, "paper", "1.20", "1.20.1")

	_, err := s.InsertBuild(ctx, newBuild(h, 10, "old"))
	require.NoError(t, err)
	newer, err := s.InsertBuild(ctx, newBuild(h, 10, "new"))
	require.NoError(t, err)
	_, err = s.InsertBuild(ctx, newBuild(h, 11))
	require.NoError(t, err)

	got, err := s.LookupBuild(ctx, store.BuildKey{Project: "paper", Version: "1.20.1", Number: 10})
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	for _, key := range []store.BuildKey{
		{Project: "paper", Version: "1.20.1", Number: 12},
		{Project: "paper", Version: "9.9", Number: 10},
		{Project: "nope", Version: "1.20.1", Number: 10},
	} {
		_, err := s.LookupBuild(ctx, key)
		assert.True(t, errors.Is(err, cerrors.ErrBuildNotFound), "key %+v: got %v", key, err)
	}
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, id := range []string{"not-an-id", "64b7f0c2e4b0a1a2b3c4d5e6", "0190f5a4-7c1e-7b2a-9f00-000000000000"} {
		_, err := s.FindBuild(ctx, id)
		assert.True(t, errors.Is(err, cerrors.ErrBuildNotFound), "find %q: got %v", id, err)

		err = s.SetPromoted(ctx, id, true)
		assert.True(t, errors.Is(err, cerrors.ErrBuildNotFound), "promote %q: got %v", id, err)
	}
}
