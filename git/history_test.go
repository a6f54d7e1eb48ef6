package git

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashesOf(commits []*object.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Hash.String())
	}
	return out
}

func TestRange(t *testing.T) {
	tr := setupTestRepo(t)
	c := tr.CommitN(t, 4)
	repo := tr.open(t)

	tests := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{"single commit range", c[2], "HEAD", []string{c[3]}},
		{"multiple commits newest first", c[0], "HEAD", []string{c[3], c[2], c[1]}},
		{"parent of head", "HEAD^1", "HEAD", []string{c[3]}},
		{"empty range", "HEAD", "HEAD", nil},
		{"no lower bound lists full history", "", "HEAD", []string{c[3], c[2], c[1], c[0]}},
		{"upper bound before head", c[0], c[2], []string{c[2], c[1]}},
		{"lower bound after upper bound", c[3], c[1], nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commits, err := repo.Range(context.Background(), tt.from, tt.to)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, commits)
				return
			}
			assert.Equal(t, tt.want, hashesOf(commits))
		})
	}
}

func TestRange_RootCommit(t *testing.T) {
	tr := setupTestRepo(t)
	root := tr.CommitFile(t, "a.txt", "a", "Initial commit")

	commits, err := tr.open(t).Range(context.Background(), "", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{root}, hashesOf(commits))
	assert.Equal(t, "Initial commit", commits[0].Message)
}

func TestRange_DivergedLowerBound(t *testing.T) {
	tr := setupTestRepo(t)
	c := tr.CommitN(t, 2)
	side := tr.SideCommit(t, c[0], "Side commit")

	commits, err := tr.open(t).Range(context.Background(), side, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{c[1]}, hashesOf(commits))
}

func TestRange_Errors(t *testing.T) {
	tr := setupTestRepo(t)
	tr.CommitN(t, 1)
	repo := tr.open(t)

	tests := []struct {
		name string
		from string
		to   string
	}{
		{"unknown lower bound", "0123456789abcdef0123456789abcdef01234567", "HEAD"},
		{"unknown upper bound", "", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Range(context.Background(), tt.from, tt.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrResolveFailed), "got %v", err)
		})
	}
}

func TestRange_CancelledContext(t *testing.T) {
	tr := setupTestRepo(t)
	tr.CommitN(t, 3)
	repo := tr.open(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Range(ctx, "", "HEAD")
	assert.ErrorIs(t, err, context.Canceled)
}
