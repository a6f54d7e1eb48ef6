// Package catalog implements the build catalog workflows: ingesting a build
// with its changelog and artifacts, promoting a build, and fetching the
// downloads of a stored build.
//
// Every workflow opens one store session through the configured
// store.Connector and closes it on return.
package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/git"
	"github.com/PaperMC/bibliothek/storage"
	"github.com/PaperMC/bibliothek/store"
)

// StorageOpener connects to the artifact storage. A nil Filesystem means
// none is configured.
type StorageOpener func(ctx context.Context) (fs.Filesystem, error)

// RepositoryOpener opens the source control checkout at path.
type RepositoryOpener func(ctx context.Context, path string) (History, error)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithStorage sets the artifact storage ingestion writes to. Without it,
// each ingestion writes below its request's StoragePath on the local disk.
func WithStorage(dst fs.Filesystem) Option {
	return func(c *Catalog) {
		c.storage = dst
	}
}

// WithStorageOpener connects to artifact storage once a request has been
// validated. It is ignored when WithStorage is set, and a nil result falls
// back to the request's StoragePath.
func WithStorageOpener(open StorageOpener) Option {
	return func(c *Catalog) {
		c.openStorage = open
	}
}

// WithArtifactSource sets the filesystem descriptor paths are read from.
// Defaults to the native filesystem.
func WithArtifactSource(src fs.Filesystem) Option {
	return func(c *Catalog) {
		c.source = src
	}
}

// WithVerifyChecksums enables sha256 verification of ingested artifacts.
func WithVerifyChecksums(verify bool) Option {
	return func(c *Catalog) {
		c.verify = verify
	}
}

// WithRepositoryOpener overrides how repositories are opened.
func WithRepositoryOpener(open RepositoryOpener) Option {
	return func(c *Catalog) {
		c.openRepo = open
	}
}

// WithResolver sets the download resolver used by Fetch.
func WithResolver(r *storage.Resolver) Option {
	return func(c *Catalog) {
		c.resolver = r
	}
}

// WithClock overrides the clock used to stamp builds.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// Catalog runs the catalog workflows against a store.
type Catalog struct {
	connector   store.Connector
	storage     fs.Filesystem
	openStorage StorageOpener
	source      fs.Filesystem
	resolver    *storage.Resolver
	openRepo    RepositoryOpener
	verify      bool
	logger      *zap.Logger
	now         func() time.Time
}

// New returns a Catalog backed by connector.
func New(connector store.Connector, opts ...Option) *Catalog {
	c := &Catalog{
		connector: connector,
		openRepo:  openPath,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

//nolint:ireturn // History is satisfied by *git.Repo.
func openPath(ctx context.Context, path string) (History, error) {
	return git.OpenPath(ctx, path)
}

// session connects to the store. The returned release func closes the
// session and logs a failure to do so.
func (c *Catalog) session(ctx context.Context, logger *zap.Logger) (store.Store, func(), error) {
	s, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := s.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to close store session", zap.Error(err))
		}
	}
	return s, release, nil
}
