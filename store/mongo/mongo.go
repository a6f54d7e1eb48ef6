// Package mongo implements the catalog store on MongoDB.
//
// Documents use the layout of the "library" database the download API reads:
// projects, version_groups, versions and builds collections keyed by
// ObjectID. Get-or-create operations are single upserting
// FindOneAndUpdate calls with $setOnInsert, backed by unique indexes.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/store"
)

// DefaultConnectTimeout bounds server selection when connecting.
const DefaultConnectTimeout = 10 * time.Second

// Option configures a Connector.
type Option func(*Connector)

// WithDatabase sets the database name. Defaults to store.DefaultDatabase.
func WithDatabase(name string) Option {
	return func(c *Connector) {
		c.database = name
	}
}

// WithConnectTimeout bounds connection and server selection.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.connectTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithClock overrides the clock used to stamp new version groups and versions.
func WithClock(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

// Connector opens MongoDB store sessions.
type Connector struct {
	uri            string
	database       string
	connectTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time

	// mu guards indexed; indexes are ensured once per Connector
	mu      sync.Mutex
	indexed bool
}

// New returns a Connector for the given connection URI.
func New(uri string, opts ...Option) (*Connector, error) {
	if uri == "" {
		return nil, cerrors.Wrap(errors.New("uri is required"), cerrors.CodeInvalidConfig, "mongo store")
	}

	c := &Connector{
		uri:            uri,
		database:       store.DefaultDatabase,
		connectTimeout: DefaultConnectTimeout,
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect opens a client, verifies the server is reachable and ensures the
// catalog indexes exist.
//
//nolint:ireturn // Connector returns the Store interface by design.
func (c *Connector) Connect(ctx context.Context) (store.Store, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(c.uri).
		SetConnectTimeout(c.connectTimeout).
		SetServerSelectionTimeout(c.connectTimeout))
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect mongo store")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "connect mongo store")
	}

	s := &Store{
		client: client,
		db:     client.Database(c.database),
		now:    c.now,
	}
	if err := c.ensureIndexes(ctx, s); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	c.logger.Debug("connected to mongo store", zap.String("database", c.database))
	return s, nil
}

func (c *Connector) ensureIndexes(ctx context.Context, s *Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexed {
		return nil
	}

	unique := options.Index().SetUnique(true)
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{store.ProjectsCollection, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{store.VersionGroupsCollection, mongo.IndexModel{Keys: bson.D{{Key: "project", Value: 1}, {Key: "name", Value: 1}}, Options: unique}},
		{store.VersionsCollection, mongo.IndexModel{Keys: bson.D{{Key: "project", Value: 1}, {Key: "name", Value: 1}}, Options: unique}},
		{store.BuildsCollection, mongo.IndexModel{Keys: bson.D{{Key: "project", Value: 1}, {Key: "version", Value: 1}, {Key: "_id", Value: -1}}}},
		{store.BuildsCollection, mongo.IndexModel{Keys: bson.D{{Key: "version", Value: 1}, {Key: "number", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := s.db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return classify(err, fmt.Sprintf("create %s index", idx.collection))
		}
	}
	c.indexed = true
	return nil
}

// Store is a session against a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// upsert runs a get-or-create against collection and decodes the resulting
// document into out. A concurrent upsert of the same key can lose the race
// on the unique index; the winner's document is then read back.
func (s *Store) upsert(ctx context.Context, collection string, filter, setOnInsert bson.M, out interface{}) error {
	coll := s.db.Collection(collection)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": setOnInsert}, opts).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		err = coll.FindOne(ctx, filter).Decode(out)
	}
	return err
}

// ResolveProject implements store.Store.
func (s *Store) ResolveProject(ctx context.Context, name, friendlyName string) (*domain.Project, error) {
	var doc projectDocument
	err := s.upsert(ctx, store.ProjectsCollection,
		bson.M{"name": name},
		bson.M{"name": name, "friendlyName": friendlyName},
		&doc)
	if err != nil {
		return nil, classify(err, "resolve project")
	}
	return doc.toDomain(), nil
}

// ResolveVersionGroup implements store.Store.
func (s *Store) ResolveVersionGroup(ctx context.Context, project *domain.Project, name string) (*domain.VersionGroup, error) {
	projectID, err := objectID(project.ID, "resolve version group")
	if err != nil {
		return nil, err
	}

	var doc versionGroupDocument
	err = s.upsert(ctx, store.VersionGroupsCollection,
		bson.M{"project": projectID, "name": name},
		bson.M{"project": projectID, "name": name, "time": s.now().UTC()},
		&doc)
	if err != nil {
		return nil, classify(err, "resolve version group")
	}
	return doc.toDomain(), nil
}

// ResolveVersion implements store.Store.
func (s *Store) ResolveVersion(ctx context.Context, project *domain.Project, group *domain.VersionGroup, name string) (*domain.Version, error) {
	projectID, err := objectID(project.ID, "resolve version")
	if err != nil {
		return nil, err
	}
	groupID, err := objectID(group.ID, "resolve version")
	if err != nil {
		return nil, err
	}

	var doc versionDocument
	err = s.upsert(ctx, store.VersionsCollection,
		bson.M{"project": projectID, "name": name},
		bson.M{"project": projectID, "group": groupID, "name": name, "time": s.now().UTC()},
		&doc)
	if err != nil {
		return nil, classify(err, "resolve version")
	}
	return doc.toDomain(), nil
}

// LatestBuild implements store.Store. ObjectIDs grow with insertion, so
// the highest _id is the most recently inserted build.
func (s *Store) LatestBuild(ctx context.Context, project *domain.Project, version *domain.Version) (*domain.Build, error) {
	projectID, err := objectID(project.ID, "latest build")
	if err != nil {
		return nil, err
	}
	versionID, err := objectID(version.ID, "latest build")
	if err != nil {
		return nil, err
	}

	var doc buildDocument
	err = s.db.Collection(store.BuildsCollection).FindOne(ctx,
		bson.M{"project": projectID, "version": versionID},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "latest build")
	}
	return doc.toDomain(), nil
}

// InsertBuild implements store.Store.
func (s *Store) InsertBuild(ctx context.Context, build *domain.Build) (*domain.Build, error) {
	projectID, err := objectID(build.Project, "insert build")
	if err != nil {
		return nil, err
	}
	versionID, err := objectID(build.Version, "insert build")
	if err != nil {
		return nil, err
	}

	doc := newBuildDocument(projectID, versionID, build)
	if _, err := s.db.Collection(store.BuildsCollection).InsertOne(ctx, doc); err != nil {
		return nil, classify(err, "insert build")
	}

	out := *build
	out.ID = doc.ID.Hex()
	return &out, nil
}

// FindBuild implements store.Store.
func (s *Store) FindBuild(ctx context.Context, id string) (*domain.Build, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}

	var doc buildDocument
	err = s.db.Collection(store.BuildsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}
	if err != nil {
		return nil, classify(err, "find build")
	}
	return doc.toDomain(), nil
}

// SetPromoted implements store.Store.
func (s *Store) SetPromoted(ctx context.Context, id string, promoted bool) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}

	res, err := s.db.Collection(store.BuildsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"promoted": promoted}})
	if err != nil {
		return classify(err, "promote build")
	}
	if res.MatchedCount == 0 {
		return cerrors.Wrapf(cerrors.ErrBuildNotFound, "build %s", id)
	}
	return nil
}

// LookupBuild implements store.Store.
func (s *Store) LookupBuild(ctx context.Context, key store.BuildKey) (*domain.Build, error) {
	var project projectDocument
	err := s.db.Collection(store.ProjectsCollection).FindOne(ctx, bson.M{"name": key.Project}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s", key.Project)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}

	var version versionDocument
	err = s.db.Collection(store.VersionsCollection).FindOne(ctx,
		bson.M{"project": project.ID, "name": key.Version}).Decode(&version)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s", key.Project, key.Version)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}

	var build buildDocument
	err = s.db.Collection(store.BuildsCollection).FindOne(ctx,
		bson.M{"project": project.ID, "version": version.ID, "number": key.Number},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}),
	).Decode(&build)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cerrors.Wrapf(cerrors.ErrBuildNotFound, "project %s version %s build %d", key.Project, key.Version, key.Number)
	}
	if err != nil {
		return nil, classify(err, "lookup build")
	}
	return build.toDomain(), nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return cerrors.Wrap(err, cerrors.CodeStorageUnavailable, "close mongo store")
	}
	return nil
}

func objectID(hex, op string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, cerrors.Wrap(fmt.Errorf("invalid id %q: %w", hex, err), cerrors.CodeInvalidInput, op)
	}
	return oid, nil
}

// classify maps a driver error to a coded error. Network failures and
// timeouts match errors.ErrStorageUnavailable.
func classify(err error, op string) error {
	switch {
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mongo.ErrClientDisconnected):
		return cerrors.Wrap(err, cerrors.CodeStorageUnavailable, op)
	default:
		return cerrors.Wrap(err, cerrors.CodeDatabase, op)
	}
}

var (
	_ store.Connector = (*Connector)(nil)
	_ store.Store     = (*Store)(nil)
)
