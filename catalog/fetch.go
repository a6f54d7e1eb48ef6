package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/manifest"
	"github.com/PaperMC/bibliothek/store"
)

// FetchRequest identifies the downloads to resolve.
type FetchRequest struct {
	Project string
	Version string
	Build   int

	// Channel limits the fetch to one download. Empty fetches all of them.
	Channel string
}

// FetchResult maps channel keys to paths relative to the resolver's cache.
type FetchResult struct {
	Build *domain.Build
	Paths map[string]string
}

// Fetch looks up a build by its public names and number and resolves its
// downloads into the cache. With duplicate numbers the most recently
// inserted build is used.
func (c *Catalog) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	if c.resolver == nil {
		return nil, cerrors.Wrap(errors.New("no download resolver configured"), cerrors.CodeInvalidConfig, "fetch")
	}

	logger := c.logger.With(
		zap.String("project", req.Project),
		zap.String("version", req.Version),
		zap.Int("build", req.Build))

	s, release, err := c.session(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	build, err := s.LookupBuild(ctx, store.BuildKey{Project: req.Project, Version: req.Version, Number: req.Build})
	if err != nil {
		return nil, err
	}

	target := manifest.Target{Project: req.Project, Version: req.Version, Build: req.Build}
	paths, err := c.resolver.ResolveBuild(ctx, target, build, req.Channel)
	if err != nil {
		return nil, err
	}

	logger.Info("resolved downloads", zap.String("build_id", build.ID), zap.Int("downloads", len(paths)))
	return &FetchResult{Build: build, Paths: paths}, nil
}
