package catalog

import (
	"context"

	"github.com/PaperMC/bibliothek/domain"
	"github.com/PaperMC/bibliothek/store"
)

// Names identifies a version by its public names.
type Names struct {
	Project             string
	ProjectFriendlyName string
	VersionGroup        string
	Version             string
}

// Hierarchy is a resolved project, version group and version.
type Hierarchy struct {
	Project      *domain.Project
	VersionGroup *domain.VersionGroup
	Version      *domain.Version
}

// Resolve returns the records named by n, creating missing ones in
// dependency order. Resolving the same names again yields the same records.
// An existing project keeps its friendly name and an existing version keeps
// its group.
func Resolve(ctx context.Context, s store.Store, n Names) (*Hierarchy, error) {
	project, err := s.ResolveProject(ctx, n.Project, n.ProjectFriendlyName)
	if err != nil {
		return nil, err
	}

	group, err := s.ResolveVersionGroup(ctx, project, n.VersionGroup)
	if err != nil {
		return nil, err
	}

	version, err := s.ResolveVersion(ctx, project, group, n.Version)
	if err != nil {
		return nil, err
	}

	return &Hierarchy{Project: project, VersionGroup: group, Version: version}, nil
}
