package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/manifest"
	"github.com/PaperMC/bibliothek/storage"
)

// IngestRequest describes a build to record.
type IngestRequest struct {
	Names

	// BuildNumber is the number of the build within its version.
	BuildNumber int

	// RepositoryPath is the source control checkout the build was cut from.
	RepositoryPath string

	// StoragePath is the local artifact storage root. It is ignored when the
	// Catalog was configured WithStorage.
	StoragePath string

	// Downloads are the artifact descriptors of the build.
	Downloads []string

	// Channel is the release channel. Empty means default.
	Channel string
}

// IngestResult is the outcome of a successful ingestion.
type IngestResult struct {
	RunID        string
	Project      *domain.Project
	VersionGroup *domain.VersionGroup
	Version      *domain.Version
	Build        *domain.Build
	Artifacts    []storage.Placed
}

func (r *IngestRequest) validate() (domain.BuildChannel, error) {
	var errs []error
	if r.Project == "" {
		errs = append(errs, errors.New("project name is required"))
	}
	if r.ProjectFriendlyName == "" {
		errs = append(errs, errors.New("project friendly name is required"))
	}
	if r.VersionGroup == "" {
		errs = append(errs, errors.New("version group name is required"))
	}
	if r.Version == "" {
		errs = append(errs, errors.New("version name is required"))
	}
	if r.BuildNumber < 0 {
		errs = append(errs, fmt.Errorf("build number must not be negative, got %d", r.BuildNumber))
	}
	if r.RepositoryPath == "" {
		errs = append(errs, errors.New("repository path is required"))
	}

	channel, err := domain.ParseBuildChannel(r.Channel)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return "", cerrors.Wrapf(cerrors.ErrValidation, "invalid ingest request: %v", errors.Join(errs...))
	}
	return channel, nil
}

// Ingest records a new build. Validation happens before any side effect.
// The artifacts are copied into storage before anything is written to the
// store, so a failed copy leaves no records behind. Then the project,
// version group and version are resolved, the changelog since the latest
// build of the version is computed, and the build is inserted last.
func (c *Catalog) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	runID := uuid.NewString()
	logger := c.logger.With(
		zap.String("run_id", runID),
		zap.String("project", req.Project),
		zap.String("version", req.Version),
		zap.Int("build", req.BuildNumber),
	)

	channel, err := req.validate()
	if err != nil {
		return nil, err
	}

	target := manifest.Target{Project: req.Project, Version: req.Version, Build: req.BuildNumber}
	man, err := manifest.New(req.Downloads, target)
	if err != nil {
		return nil, err
	}

	dst, err := c.destination(ctx, req.StoragePath)
	if err != nil {
		return nil, err
	}

	repo, err := c.openRepo(ctx, req.RepositoryPath)
	if err != nil {
		return nil, cerrors.WrapPath(err, cerrors.CodeSourceControlFailed, "open repository", req.RepositoryPath)
	}

	materializer := storage.NewMaterializer(dst,
		storage.WithSource(c.artifactSource()),
		storage.WithVerifyChecksums(c.verify),
		storage.WithMaterializerLogger(logger))
	placed, err := materializer.Materialize(ctx, man)
	if err != nil {
		return nil, err
	}

	s, release, err := c.session(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	h, err := Resolve(ctx, s, req.Names)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved version",
		zap.String("project_id", h.Project.ID),
		zap.String("version_id", h.Version.ID))

	previous, err := s.LatestBuild(ctx, h.Project, h.Version)
	if err != nil {
		return nil, err
	}

	changes, err := Changelog(ctx, repo, previous)
	if err != nil {
		return nil, err
	}
	logger.Debug("computed changelog", zap.Int("changes", len(changes)))

	build, err := s.InsertBuild(ctx, &domain.Build{
		Project:   h.Project.ID,
		Version:   h.Version.ID,
		Number:    req.BuildNumber,
		Time:      c.now().UTC(),
		Changes:   changes,
		Downloads: man.Downloads,
		Promoted:  false,
		Channel:   channel,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("inserted build",
		zap.String("build_id", build.ID),
		zap.Int("changes", len(changes)),
		zap.Int("downloads", len(man.Downloads)))

	return &IngestResult{
		RunID:        runID,
		Project:      h.Project,
		VersionGroup: h.VersionGroup,
		Version:      h.Version,
		Build:        build,
		Artifacts:    placed,
	}, nil
}

//nolint:ireturn // fs.Filesystem is the storage abstraction.
func (c *Catalog) destination(ctx context.Context, storagePath string) (fs.Filesystem, error) {
	if c.storage != nil {
		return c.storage, nil
	}
	if c.openStorage != nil {
		dst, err := c.openStorage(ctx)
		if err != nil {
			return nil, err
		}
		if dst != nil {
			return dst, nil
		}
	}
	if storagePath == "" {
		return nil, cerrors.Wrapf(cerrors.ErrValidation, "storage path is required")
	}
	abs, err := fs.GetAbs(storagePath)
	if err != nil {
		return nil, cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "resolve storage path", storagePath)
	}
	return billy.NewOSFS(abs), nil
}

//nolint:ireturn // fs.Filesystem is the storage abstraction.
func (c *Catalog) artifactSource() fs.Filesystem {
	if c.source != nil {
		return c.source
	}
	return billy.NewBaseOSFS()
}
