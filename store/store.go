// Package store defines the persistence contract of the build catalog.
//
// Backends (MongoDB, SQL, in-memory) implement Store. Every get-or-create
// operation must be atomic against concurrent callers resolving the same key:
// two ingestions racing on a new version group must end with one record.
// Stores never retry; connection failures surface as errors matching
// errors.ErrStorageUnavailable and the caller owns the retry policy.
package store

import (
	"context"

	"github.com/PaperMC/bibliothek/domain"
)

// Store is a session against the catalog's backing store.
type Store interface {
	// ResolveProject returns the project named name, creating it with
	// friendlyName when absent. An existing project keeps its friendly name.
	ResolveProject(ctx context.Context, name, friendlyName string) (*domain.Project, error)

	// ResolveVersionGroup returns the group name of project, creating it when absent.
	ResolveVersionGroup(ctx context.Context, project *domain.Project, name string) (*domain.VersionGroup, error)

	// ResolveVersion returns the version name of project, creating it in group
	// when absent. An existing version keeps its original group.
	ResolveVersion(ctx context.Context, project *domain.Project, group *domain.VersionGroup, name string) (*domain.Version, error)

	// LatestBuild returns the most recently inserted build of version, or nil
	// when the version has no builds.
	LatestBuild(ctx context.Context, project *domain.Project, version *domain.Version) (*domain.Build, error)

	// InsertBuild persists build and returns it with its assigned ID.
	InsertBuild(ctx context.Context, build *domain.Build) (*domain.Build, error)

	// FindBuild returns the build with the given ID. A missing build, or an
	// ID the backend cannot parse, is reported as errors.ErrBuildNotFound.
	FindBuild(ctx context.Context, id string) (*domain.Build, error)

	// SetPromoted sets the promoted flag of the build with the given ID.
	// A missing build is reported as errors.ErrBuildNotFound.
	SetPromoted(ctx context.Context, id string, promoted bool) error

	// LookupBuild returns the most recently inserted build matching key.
	// A missing project, version or build is reported as errors.ErrBuildNotFound.
	LookupBuild(ctx context.Context, key BuildKey) (*domain.Build, error)

	// Close releases the session.
	Close(ctx context.Context) error
}

// Connector opens store sessions. Each catalog invocation connects once and
// closes the session on every exit path.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Store, error)

// Connect implements Connector.
//
//nolint:ireturn // Connector returns the Store interface by design.
func (f ConnectorFunc) Connect(ctx context.Context) (Store, error) {
	return f(ctx)
}

// BuildKey identifies a build by the public names of its project and version.
type BuildKey struct {
	Project string
	Version string
	Number  int
}
