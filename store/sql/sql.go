// Package sql implements the catalog store on top of gorm.
//
// SQLite (github.com/glebarez/sqlite, pure Go) and PostgreSQL are supported.
// Get-or-create operations insert with ON CONFLICT DO NOTHING against a
// unique index and then re-read the row, so concurrent writers converge on
// a single record without application-level locking.
package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/store"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Option configures a Connector.
type Option func(*Connector)

// WithLogger routes gorm's query log through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithAutoMigrate controls whether Connect migrates the schema. Enabled by default.
func WithAutoMigrate(enabled bool) Option {
	return func(c *Connector) {
		c.migrate = enabled
	}
}

// WithMaxOpenConns limits the connection pool of each session.
func WithMaxOpenConns(n int) Option {
	return func(c *Connector) {
		c.maxOpenConns = n
	}
}

// WithClock overrides the clock used to stamp new version groups and versions.
func WithClock(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

// Connector opens gorm-backed store sessions.
type Connector struct {
	driver       string
	dsn          string
	logger       *zap.Logger
	migrate      bool
	maxOpenConns int
	now          func() time.Time

	// mu guards migrated; the schema is migrated once per Connector
	mu       sync.Mutex
	migrated bool
}

// New returns a Connector for the given driver and data source name.
func New(driverName, dsn string, opts ...Option) (*Connector, error) {
	switch driverName {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, cerrors.Wrap(fmt.Errorf("unsupported driver %q", driverName), cerrors.CodeInvalidConfig, "sql store")
	}
	if dsn == "" {
		return nil, cerrors.Wrap(errors.New("dsn is required"), cerrors.CodeInvalidConfig, "sql store")
	}

	c := &Connector{
		driver:  driverName,
		dsn:     dsn,
		logger:  zap.NewNop(),
		migrate: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

//nolint:ireturn // gorm.Dialector is an interface.
func (c *Connector) dialector() gorm.Dialector {
	if c.driver == DriverPostgres {
		return postgres.Open(c.dsn)
	}
	return sqlite.Open(c.dsn)
}

// Connect opens a session and migrates the schema when enabled.
//
//nolint:ireturn // Connector returns the Store interface by design.
func (c *Connector) Connect(ctx context.Context) (store.Store, error) {
	db, err := gorm.Open(c.dialector(), &gorm.Config{
		Logger:  newGormLogger(c.logger),
		NowFunc: func() time.Time { return c.now().UTC() },
	})
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect sql store")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect sql store")
	}
	if c.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.maxOpenConns)
		sqlDB.SetMaxIdleConns(c.maxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect sql store")
	}

	if err := c.autoMigrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	c.logger.Debug("connected to sql store", zap.String("driver", c.driver))
	return &Store{db: db, now: c.now}, nil
}

func (c *Connector) autoMigrate(ctx context.Context, db *gorm.DB) error {
	if !c.migrate {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.migrated {
		return nil
	}
	if err := db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return classify(err, "migrate sql store")
	}
	c.migrated = true
	return nil
}

// Store is a session against a SQL database.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// ResolveProject implements store.Store.
func (s *Store) ResolveProject(ctx context.Context, name, friendlyName string) (*domain.Project, error) {
	rec := projectRecord{ID: newID(), Name: name, FriendlyName: friendlyName}
	if err := s.insertIgnore(ctx, &rec, "name"); err != nil {
		return nil, classify(err, "resolve project")
	}

	var out projectRecord
	if err := s.db.WithContext(ctx).Where("name = ?", name).Take(&out).Error; err != nil {
		return nil, classify(err, "resolve project")
	}
	return out.toDomain(), nil
}

// ResolveVersionGroup implements store.Store.
func (s *Store) ResolveVersionGroup(ctx context.Context, project *domain.Project, name string) (*domain.VersionGroup, error) {
	now := s.now().UTC()
	rec := versionGroupRecord{ID: newID(), ProjectID: project.ID, Name: name, Time: &now}
	if err := s.insertIgnore(ctx, &rec, "project_id", "name"); err != nil {
		return nil, classify(err, "resolve version group")
	}

	var out versionGroupRecord
	err := s.db.WithContext(ctx).Where("project_id = ? AND name = ?", project.ID, name).Take(&out).Error
	if err != nil {
		return nil, classify(err, "resolve version group")
	}
	return out.toDomain(), nil
}

// ResolveVersion implements store.Store.
func (s *Store) ResolveVersion(ctx context.Context, project *domain.Project, group *domain.VersionGroup, name string) (*domain.Version, error) {
	now := s.now().UTC()
	rec := versionRecord{ID: newID(), ProjectID: project.ID, GroupID: group.ID, Name: name, Time: &now}
	if err := s.insertIgnore(ctx, &rec, "project_id", "name"); err != nil {
		return nil, classify(err, "resolve version")
	}

	var out versionRecord
	err := s.db.WithContext(ctx).Where("project_id = ? AND name = ?", project.ID, name).Take(&out).Error
	if err != nil {
		return nil, classify(err, "resolve version")
	}
	return out.toDomain(), nil
}

func (s *Store) insertIgnore(ctx context.Context, rec interface{}, columns ...string) error {
	conflict := clause.OnConflict{DoNothing: true}
	for _, col := range columns {
		conflict.Columns = append(conflict.Columns, clause.Column{Name: col})
	}
	return s.db.WithContext(ctx).Clauses(conflict).Create(rec).Error
}

// LatestBuild implements store.Store.
func (s *Store) LatestBuild(ctx context.Context, project *domain.Project, version *domain.Version) (*domain.Build, error) {
	var rec buildRecord
	err := s.builds(ctx).
		Where("project_id = ? AND version_id = ?", project.ID, version.ID).
		Order("id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "latest build")
	}
	return rec.toDomain(), nil
}

// InsertBuild implements store.Store. The build and its changes and
// downloads are written in one transaction.
func (s *Store) InsertBuild(ctx context.Context, build *domain.Build) (*domain.Build, error) {
	rec := newBuildRecord(newID(), build)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, classify(err, "insert build")
	}

	out := *build
	out.ID = rec.ID
	return &out, nil
}

// FindBuild implements store.Store.
func (s *Store) FindBuild(ctx context.Context, id string) (*domain.Build, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}

	var rec buildRecord
	err := s.builds(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}
	if err != nil {
		return nil, classify(err, "find build")
	}
	return rec.toDomain(), nil
}

// SetPromoted implements store.Store.
func (s *Store) SetPromoted(ctx context.Context, id string, promoted bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}

	var count int64
	db := s.db.WithContext(ctx).Model(&buildRecord{}).Where("id = ?", id)
	if err := db.Count(&count).Error; err != nil {
		return classify(err, "promote build")
	}
	if count == 0 {
		return cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}

	err := s.db.WithContext(ctx).Model(&buildRecord{}).Where("id = ?", id).Update("promoted", promoted).Error
	if err != nil {
		return classify(err, "promote build")
	}
	return nil
}

// LookupBuild implements store.Store.
func (s *Store) LookupBuild(ctx context.Context, key store.BuildKey) (*domain.Build, error) {
	var project projectRecord
	err := s.db.WithContext(ctx).Where("name = ?", key.Project).Take(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s", key.Project)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}

	var version versionRecord
	err = s.db.WithContext(ctx).Where("project_id = ? AND name = ?", project.ID, key.Version).Take(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s", key.Project, key.Version)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}

	var rec buildRecord
	err = s.builds(ctx).
		Where("version_id = ? AND number = ?", version.ID, key.Number).
		Order("id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s build %d", key.Project, key.Version, key.Number)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}
	return rec.toDomain(), nil
}

// Close implements store.Store.
func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodeDatabase, "close sql store")
	}
	if err := sqlDB.Close(); err != nil {
		return cerrors.Wrap(err, cerrors.CodeDatabase, "close sql store")
	}
	return nil
}

func (s *Store) builds(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Changes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Downloads")
}

// newID returns a time-ordered UUIDv7 so that ordering by ID follows
// insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// classify maps a gorm error to a coded error. Connection failures match
// errors.ErrStorageUnavailable; everything else is a database error.
func classify(err error, op string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return cerrors.Wrap(err, cerrors.CodeStorageUnavailable, op)
	default:
		return cerrors.Wrap(err, cerrors.CodeDatabase, op)
	}
}

var (
	_ store.Connector = (*Connector)(nil)
	_ store.Store     = (*Store)(nil)
)
