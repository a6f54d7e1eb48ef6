package catalog

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
)

// Head is the revision a build is cut from.
const Head = "HEAD"

// fallbackLowerBound is the lower bound used when there is no earlier
// commit to diff against.
const fallbackLowerBound = "HEAD^1"

// History is the source control view the changelog is computed from.
type History interface {
	Resolve(ctx context.Context, rev string) (string, error)
	Range(ctx context.Context, from, to string) ([]*object.Commit, error)
}

// Changelog returns the changes of a new build, newest first: the commits
// reachable from HEAD but not from the newest commit of previous. Without a
// previous build, or when it recorded no changes, the range is HEAD^1..HEAD,
// and a root HEAD yields just itself. Failures match
// errors.ErrSourceControlQueryFailed.
func Changelog(ctx context.Context, repo History, previous *domain.Build) ([]domain.Change, error) {
	lower := fallbackLowerBound
	if previous != nil && len(previous.Changes) > 0 {
		lower = previous.LatestCommit()
	}

	if lower == fallbackLowerBound {
		if _, err := repo.Resolve(ctx, lower); err != nil {
			if _, headErr := repo.Resolve(ctx, Head); headErr != nil {
				return nil, cerrors.Wrap(headErr, cerrors.CodeSourceControlFailed, "compute changelog")
			}
			// HEAD is a root commit.
			lower = ""
		}
	}

	commits, err := repo.Range(ctx, lower, Head)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeSourceControlFailed, "compute changelog")
	}

	changes := make([]domain.Change, 0, len(commits))
	for _, c := range commits {
		changes = append(changes, toChange(c))
	}
	return changes, nil
}

func toChange(c *object.Commit) domain.Change {
	message := strings.TrimRight(c.Message, "\r\n")
	summary, _, _ := strings.Cut(message, "\n")
	return domain.Change{
		Commit:  c.Hash.String(),
		Summary: strings.TrimRight(summary, "\r"),
		Message: message,
	}
}
