package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/PaperMC/bibliothek/config"
	cerrors "github.com/PaperMC/bibliothek/errors"
	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/billy"
	fsminio "github.com/PaperMC/bibliothek/fs/minio"
	fss3 "github.com/PaperMC/bibliothek/fs/s3"
	"github.com/PaperMC/bibliothek/store"
	"github.com/PaperMC/bibliothek/store/memory"
	"github.com/PaperMC/bibliothek/store/mongo"
	storesql "github.com/PaperMC/bibliothek/store/sql"
)

// env holds what every command needs.
type env struct {
	cfg       *config.Config
	logger    *zap.Logger
	connector store.Connector
}

func (e *env) close() {
	_ = e.logger.Sync()
}

func setup(configPath string) (*env, error) {
	cfg, err := config.NewLoader().WithConfigPath(configPath).Load()
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeInvalidConfig, "build logger")
	}

	connector, err := newConnector(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, connector: connector}, nil
}

//nolint:ireturn // the driver picks the implementation.
func newConnector(cfg config.StoreConfig, logger *zap.Logger) (store.Connector, error) {
	var connector store.Connector
	switch cfg.Driver {
	case config.StoreMongo:
		c, err := mongo.New(cfg.URI,
			mongo.WithDatabase(cfg.Database),
			mongo.WithConnectTimeout(cfg.ConnectTimeout),
			mongo.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		connector = c
	case config.StoreSQLite, config.StorePostgres:
		c, err := storesql.New(cfg.Driver, cfg.DSN, storesql.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		connector = c
	case config.StoreMemory:
		connector = memory.New()
	default:
		return nil, cerrors.Wrap(fmt.Errorf("unknown store driver %q", cfg.Driver), cerrors.CodeInvalidConfig, "store")
	}

	return withConnectTimeout(connector, cfg.ConnectTimeout), nil
}

// withConnectTimeout bounds establishing a session, not its use.
//
//nolint:ireturn // returns the wrapped Connector.
func withConnectTimeout(c store.Connector, timeout time.Duration) store.Connector {
	if timeout <= 0 {
		return c
	}
	return store.ConnectorFunc(func(ctx context.Context) (store.Store, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return c.Connect(ctx)
	})
}

// objectStorage connects to the configured object storage, or returns nil
// for local storage. Connecting may create the bucket.
//
//nolint:ireturn // nil or the object storage filesystem.
func objectStorage(ctx context.Context, cfg config.StorageConfig) (parentfs.Filesystem, error) {
	switch cfg.Driver {
	case config.StorageMinio:
	case config.StorageS3:
		s, err := fss3.Connect(ctx, fss3.Config{
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			Endpoint:       cfg.S3.Endpoint,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			CreateBucket:   cfg.S3.CreateBucket,
		})
		if err != nil {
			return nil, cerrors.Wrap(err, cerrors.CodeArtifactCopyFailed, "connect object storage")
		}
		return s, nil
	default:
		return nil, nil
	}

	m, err := fsminio.Connect(ctx, fsminio.Config{
		Endpoint:     cfg.Minio.Endpoint,
		AccessKey:    cfg.Minio.AccessKey,
		SecretKey:    cfg.Minio.SecretKey,
		Bucket:       cfg.Minio.Bucket,
		Prefix:       cfg.Minio.Prefix,
		UseSSL:       cfg.Minio.UseSSL,
		CreateBucket: cfg.Minio.CreateBucket,
	})
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeArtifactCopyFailed, "connect object storage")
	}
	return m, nil
}

//nolint:ireturn // local storage root as a Filesystem.
func localStorage(path string) (parentfs.Filesystem, error) {
	abs, err := parentfs.GetAbs(path)
	if err != nil {
		return nil, cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "resolve storage path", path)
	}
	return billy.NewOSFS(abs), nil
}
