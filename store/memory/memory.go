// Package memory provides an in-memory catalog store for testing and dry runs.
// It implements store.Connector and store.Store with thread-safe operations
// and no persistence.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/store"
)

type groupKey struct{ project, name string }

type versionKey struct{ project, name string }

// DB holds the catalog records. Sessions opened with Connect share it.
type DB struct {
	// mu protects every field below
	mu sync.RWMutex

	projects map[string]*domain.Project
	groups   map[groupKey]*domain.VersionGroup
	versions map[versionKey]*domain.Version
	// builds is kept in insertion order
	builds []*domain.Build

	open       int
	connectErr error
	now        func() time.Time
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		projects: make(map[string]*domain.Project),
		groups:   make(map[groupKey]*domain.VersionGroup),
		versions: make(map[versionKey]*domain.Version),
		now:      time.Now,
	}
}

// SetConnectError makes subsequent Connect calls fail with an error that
// matches errors.ErrStorageUnavailable and wraps err. A nil err clears it.
func (db *DB) SetConnectError(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.connectErr = err
}

// OpenSessions returns the number of sessions not yet closed.
func (db *DB) OpenSessions() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.open
}

// Counts returns the number of stored projects, version groups, versions and builds.
func (db *DB) Counts() (projects, groups, versions, builds int) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.projects), len(db.groups), len(db.versions), len(db.builds)
}

// Builds returns copies of all builds in insertion order.
func (db *DB) Builds() []*domain.Build {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]*domain.Build, 0, len(db.builds))
	for _, b := range db.builds {
		out = append(out, copyBuild(b))
	}
	return out
}

// Connect opens a session.
//
//nolint:ireturn // Connector returns the Store interface by design.
func (db *DB) Connect(ctx context.Context) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect memory store")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.connectErr != nil {
		return nil, cerrors.Wrap(db.connectErr, cerrors.CodeStorageUnavailable, "connect memory store")
	}
	db.open++
	return &session{db: db}, nil
}

// session is one scoped connection to a DB.
type session struct {
	db     *DB
	mu     sync.Mutex
	closed bool
}

func (s *session) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "memory store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cerrors.Wrap(fmt.Errorf("session closed"), cerrors.CodeStorageUnavailable, "memory store")
	}
	return nil
}

// ResolveProject implements store.Store.
func (s *session) ResolveProject(ctx context.Context, name, friendlyName string) (*domain.Project, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.projects[name]
	if !ok {
		p = &domain.Project{ID: uuid.NewString(), Name: name, FriendlyName: friendlyName}
		s.db.projects[name] = p
	}
	cp := *p
	return &cp, nil
}

// ResolveVersionGroup implements store.Store.
func (s *session) ResolveVersionGroup(ctx context.Context, project *domain.Project, name string) (*domain.VersionGroup, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	k := groupKey{project.ID, name}
	g, ok := s.db.groups[k]
	if !ok {
		now := s.db.now().UTC()
		g = &domain.VersionGroup{ID: uuid.NewString(), Project: project.ID, Name: name, Time: &now}
		s.db.groups[k] = g
	}
	cp := *g
	return &cp, nil
}

// ResolveVersion implements store.Store.
func (s *session) ResolveVersion(ctx context.Context, project *domain.Project, group *domain.VersionGroup, name string) (*domain.Version, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	k := versionKey{project.ID, name}
	v, ok := s.db.versions[k]
	if !ok {
		now := s.db.now().UTC()
		v = &domain.Version{ID: uuid.NewString(), Project: project.ID, Group: group.ID, Name: name, Time: &now}
		s.db.versions[k] = v
	}
	cp := *v
	return &cp, nil
}

// LatestBuild implements store.Store.
func (s *session) LatestBuild(ctx context.Context, project *domain.Project, version *domain.Version) (*domain.Build, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for i := len(s.db.builds) - 1; i >= 0; i-- {
		b := s.db.builds[i]
		if b.Project == project.ID && b.Version == version.ID {
			return copyBuild(b), nil
		}
	}
	return nil, nil
}

// InsertBuild implements store.Store.
func (s *session) InsertBuild(ctx context.Context, build *domain.Build) (*domain.Build, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b := copyBuild(build)
	b.ID = uuid.NewString()
	s.db.builds = append(s.db.builds, b)
	return copyBuild(b), nil
}

// FindBuild implements store.Store.
func (s *session) FindBuild(ctx context.Context, id string) (*domain.Build, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, b := range s.db.builds {
		if b.ID == id {
			return copyBuild(b), nil
		}
	}
	return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
}

// SetPromoted implements store.Store.
func (s *session) SetPromoted(ctx context.Context, id string, promoted bool) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, b := range s.db.builds {
		if b.ID == id {
			b.Promoted = promoted
			return nil
		}
	}
	return cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
}

// LookupBuild implements store.Store.
func (s *session) LookupBuild(ctx context.Context, key store.BuildKey) (*domain.Build, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.projects[key.Project]
	if !ok {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s", key.Project)
	}
	v, ok := s.db.versions[versionKey{p.ID, key.Version}]
	if !ok {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s", key.Project, key.Version)
	}
	for i := len(s.db.builds) - 1; i >= 0; i-- {
		b := s.db.builds[i]
		if b.Version == v.ID && b.Number == key.Number {
			return copyBuild(b), nil
		}
	}
	return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s build %d", key.Project, key.Version, key.Number)
}

// Close implements store.Store. Closing twice is a no-op.
func (s *session) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.db.mu.Lock()
	s.db.open--
	s.db.mu.Unlock()
	return nil
}

func copyBuild(b *domain.Build) *domain.Build {
	cp := *b
	cp.Changes = append([]domain.Change(nil), b.Changes...)
	if b.Downloads != nil {
		cp.Downloads = make(map[string]domain.Download, len(b.Downloads))
		for k, v := range b.Downloads {
			cp.Downloads[k] = v
		}
	}
	return &cp
}

var _ store.Connector = (*DB)(nil)
