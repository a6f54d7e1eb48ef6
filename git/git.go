package git

import (
	"context"
	"errors"
	"fmt"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/PaperMC/bibliothek/fs"
	fsb "github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/git/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the number of objects kept in the LRU cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the checkout root within Options.FS.
	DefaultWorkdir = "."
)

// Options locates a checkout.
type Options struct {
	// FS holds the checkout. It must be a filesystem from fs/billy.
	FS fs.Filesystem

	// Workdir is the checkout root within FS. Defaults to ".".
	Workdir string

	// StorerCacheSize is the object cache size. Defaults to
	// DefaultStorerCacheSize.
	StorerCacheSize int
}

// Validate reports missing or out-of-range options.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidRef, "StorerCacheSize cannot be negative")
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

// storage returns the object storage under Workdir/.git and the checkout
// filesystem.
func (o *Options) storage() (*filesystem.Storage, gobilly.Filesystem, error) {
	billyFS, err := fsbridge.ToBillyFilesystem(o.FS)
	if err != nil {
		return nil, nil, fmt.Errorf("filesystem conversion failed: %w", err)
	}

	checkout, err := billyFS.Chroot(o.Workdir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to chroot to workdir %q: %w", o.Workdir, err)
	}

	dotGit, err := checkout.Chroot(".git")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access .git directory: %w", err)
	}
	return fsbridge.NewStorage(dotGit, o.StorerCacheSize), checkout, nil
}

// Open opens the checkout described by opts. It returns an error wrapping
// ErrRepositoryNotFound when Workdir holds no repository.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	storage, checkout, err := opts.storage()
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(storage, checkout)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapErrorf(ErrRepositoryNotFound, "open %q", opts.Workdir)
		}
		return nil, WrapError(err, "failed to open repository")
	}
	return &Repo{repo: repo}, nil
}

// OpenPath opens the checkout at path on the local disk.
func OpenPath(ctx context.Context, path string) (*Repo, error) {
	abs, err := fs.GetAbs(path)
	if err != nil {
		return nil, WrapErrorf(err, "resolve repository path %q", path)
	}

	repo, err := Open(ctx, &Options{FS: fsb.NewOSFS(abs)})
	if err != nil {
		return nil, WrapErrorf(err, "repository %q", abs)
	}
	return repo, nil
}

// Repo is an opened checkout. It is read-only.
type Repo struct {
	repo *git.Repository
}
