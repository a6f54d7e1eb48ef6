package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/manifest"
)

// Source is a named artifact storage the Resolver can fetch from.
type Source struct {
	Name string
	FS   parentfs.Filesystem
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSources appends sources in the order they are tried.
func WithSources(sources ...Source) ResolverOption {
	return func(r *Resolver) {
		r.sources = append(r.sources, sources...)
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver makes stored downloads available in a local cache.
type Resolver struct {
	cache   parentfs.Filesystem
	sources []Source
	logger  *zap.Logger
}

// NewResolver returns a Resolver caching into cache.
func NewResolver(cache parentfs.Filesystem, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cache path of download d of build t. A cached file is
// returned as-is. Otherwise the sources are tried in order and the first
// one holding the file wins; the fetched copy must match d.SHA256 or it is
// removed again. All failures match errors.ErrArtifactCopyFailed.
func (r *Resolver) Resolve(ctx context.Context, t manifest.Target, d domain.Download) (string, error) {
	rel := path.Join(t.Dir(), d.Name)

	cached, err := r.cache.Exists(rel)
	if err != nil {
		return "", cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "resolve download", rel)
	}
	if cached {
		return rel, nil
	}

	var errs []error
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return "", cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "resolve download", rel)
		}

		ok, err := r.fetch(src, rel, d.SHA256)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}
		if ok {
			r.logger.Info("cached download",
				zap.String("name", d.Name),
				zap.String("source", src.Name))
			return rel, nil
		}
	}

	if len(errs) == 0 {
		errs = append(errs, fmt.Errorf("%w: not present in any source", fs.ErrNotExist))
	}
	return "", cerrors.WrapPath(errors.Join(errs...), cerrors.CodeArtifactCopyFailed, "resolve download", rel)
}

// fetch copies rel from src into the cache. It reports false when src does
// not have the file.
func (r *Resolver) fetch(src Source, rel, sha string) (bool, error) {
	exists, err := src.FS.Exists(rel)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	sum := newChecksum()
	if _, err := parentfs.CopyFile(src.FS, rel, r.cache, rel, sum); err != nil {
		_ = r.cache.Remove(rel)
		return false, err
	}
	if err := sum.verify(sha); err != nil {
		if rmErr := r.cache.Remove(rel); rmErr != nil {
			r.logger.Warn("failed to remove corrupt download", zap.String("path", rel), zap.Error(rmErr))
		}
		return false, err
	}
	return true, nil
}

// ResolveBuild resolves every download of build b, or only the one stored
// under channel when channel is not empty. Paths are keyed by channel.
func (r *Resolver) ResolveBuild(ctx context.Context, t manifest.Target, b *domain.Build, channel string) (map[string]string, error) {
	downloads := b.Downloads
	if channel != "" {
		d, ok := b.Downloads[channel]
		if !ok {
			return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %d has no download %q", b.Number, channel)
		}
		downloads = map[string]domain.Download{channel: d}
	}

	paths := make(map[string]string, len(downloads))
	for key, d := range downloads {
		p, err := r.Resolve(ctx, t, d)
		if err != nil {
			return nil, err
		}
		paths[key] = p
	}
	return paths, nil
}
