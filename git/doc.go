// Package git provides a small, idiomatic Go wrapper over go-git for reading
// build history.
//
// The package exposes the operations the build catalog needs from a source
// checkout: opening a repository through the project's filesystem
// abstraction, resolving revisions and listing the commits in a revision
// range. Fixture repositories for tests are built with package gittest.
//
// # Basic Usage
//
// Open a checkout on disk:
//
//	repo, err := git.OpenPath(ctx, "/path/to/checkout")
//
// Or open through an explicit filesystem:
//
//	import billyfs "github.com/PaperMC/bibliothek/fs/billy"
//
//	repo, err := git.Open(ctx, &git.Options{
//	    FS:      billyfs.NewOSFS("/path/to/checkout"),
//	    Workdir: ".",
//	})
//
// # Revision Ranges
//
// Range lists the commits reachable from one revision but not from another,
// newest first:
//
//	commits, err := repo.Range(ctx, "3f2a9c1", "HEAD")
//
// An empty lower bound lists every ancestor of the upper bound.
//
// # Errors
//
// Failures wrap the sentinel errors in this package (ErrResolveFailed,
// ErrRepositoryNotFound, ...) and can be checked with errors.Is.
package git
