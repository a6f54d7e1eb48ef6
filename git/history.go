package git

import (
	"context"
	"errors"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Range returns the commits reachable from to but not from from, newest
// first by committer time. This is the `git log from..to` set. An empty
// from returns every ancestor of to, including to itself.
//
// Both revisions must resolve; a lower bound that is not an ancestor of to
// yields the commits since their merge base.
//
// Context timeout/cancellation is honored during the history walk.
func (r *Repo) Range(ctx context.Context, from, to string) ([]*object.Commit, error) {
	head, err := r.commit(ctx, to)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]bool)
	if from != "" {
		base, err := r.commit(ctx, from)
		if err != nil {
			return nil, err
		}

		err = object.NewCommitPreorderIter(base, nil, nil).ForEach(func(c *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			excluded[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, WrapErrorf(err, "failed to walk history of %q", from)
		}
	}

	var commits []*object.Commit
	err = object.NewCommitPreorderIter(head, excluded, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, WrapErrorf(err, "failed to walk history of %q", to)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Committer.When.After(commits[j].Committer.When)
	})

	return commits, nil
}

// commit resolves rev to its commit object.
func (r *Repo) commit(ctx context.Context, rev string) (*object.Commit, error) {
	hash, err := r.Resolve(ctx, rev)
	if err != nil {
		return nil, err
	}

	c, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "commit %s: %v", hash, err)
	}
	return c, nil
}
