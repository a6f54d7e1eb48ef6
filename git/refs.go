package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// Resolve returns the full commit hash rev points at. rev is any revision
// go-git understands: a hash, a branch or tag name, HEAD, HEAD^1, HEAD~2.
func (r *Repo) Resolve(ctx context.Context, rev string) (string, error) {
	if rev == "" {
		return "", WrapError(ErrInvalidRef, "revision cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrResolveFailed, rev, err)
	}
	return hash.String(), nil
}
