package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/domain"
)

// Promote sets the promoted flag of build id to exactly promoted. A missing
// build matches errors.ErrBuildNotFound and nothing is written. Promoting
// to the current value succeeds without change.
func (c *Catalog) Promote(ctx context.Context, id string, promoted bool) (*domain.Build, error) {
	logger := c.logger.With(zap.String("build_id", id))

	s, release, err := c.session(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	build, err := s.FindBuild(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.SetPromoted(ctx, id, promoted); err != nil {
		return nil, err
	}
	build.Promoted = promoted

	logger.Info("set build promotion", zap.Bool("promoted", promoted))
	return build, nil
}
