package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/git"
)

type fakeHistory struct {
	resolvable map[string]bool
	commits    []*object.Commit
	rangeErr   error

	from, to string
}

func (h *fakeHistory) Resolve(_ context.Context, rev string) (string, error) {
	if !h.resolvable[rev] {
		return "", git.ErrResolveFailed
	}
	return rev, nil
}

func (h *fakeHistory) Range(_ context.Context, from, to string) ([]*object.Commit, error) {
	h.from, h.to = from, to
	if h.rangeErr != nil {
		return nil, h.rangeErr
	}
	return h.commits, nil
}

func commitWith(hash, message string) *object.Commit {
	return &object.Commit{Hash: plumbing.NewHash(hash), Message: message}
}

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestChangelog_LowerBound(t *testing.T) {
	tests := []struct {
		name       string
		resolvable map[string]bool
		previous   *domain.Build
		wantFrom   string
	}{
		{
			name:       "no previous build",
			resolvable: map[string]bool{"HEAD": true, "HEAD^1": true},
			wantFrom:   "HEAD^1",
		},
		{
			name:       "previous build without changes",
			resolvable: map[string]bool{"HEAD": true, "HEAD^1": true},
			previous:   &domain.Build{},
			wantFrom:   "HEAD^1",
		},
		{
			name:       "previous build newest change",
			resolvable: map[string]bool{"HEAD": true},
			previous:   &domain.Build{Changes: []domain.Change{{Commit: hashB}, {Commit: hashA}}},
			wantFrom:   hashB,
		},
		{
			name:       "root commit",
			resolvable: map[string]bool{"HEAD": true},
			wantFrom:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHistory{resolvable: tt.resolvable}

			_, err := Changelog(context.Background(), h, tt.previous)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, h.from)
			assert.Equal(t, "HEAD", h.to)
		})
	}
}

func TestChangelog_Mapping(t *testing.T) {
	h := &fakeHistory{
		resolvable: map[string]bool{"HEAD": true, "HEAD^1": true},
		commits: []*object.Commit{
			commitWith(hashB, "Fix crash on startup\r\n\r\nDetails here\r\n"),
			commitWith(hashA, "One line\n"),
		},
	}

	changes, err := Changelog(context.Background(), h, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.Change{
		{Commit: hashB, Summary: "Fix crash on startup", Message: "Fix crash on startup\r\n\r\nDetails here"},
		{Commit: hashA, Summary: "One line", Message: "One line"},
	}, changes)
}

func TestChangelog_Errors(t *testing.T) {
	t.Run("no head", func(t *testing.T) {
		_, err := Changelog(context.Background(), &fakeHistory{}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, cerrors.ErrSourceControlQueryFailed))
		assert.True(t, errors.Is(err, git.ErrResolveFailed))
	})

	t.Run("range fails", func(t *testing.T) {
		h := &fakeHistory{
			resolvable: map[string]bool{"HEAD": true},
			rangeErr:   git.ErrResolveFailed,
		}
		_, err := Changelog(context.Background(), h, &domain.Build{Changes: []domain.Change{{Commit: hashA}}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cerrors.ErrSourceControlQueryFailed))
	})
}
