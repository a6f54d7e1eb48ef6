package config

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/PaperMC/bibliothek/errors"
)

// Validate checks the configuration for unusable values. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Store.validate()...)
	errs = append(errs, c.Storage.validate()...)
	errs = append(errs, c.Log.validate()...)

	if len(errs) > 0 {
		return cerrors.Wrap(errors.Join(errs...), cerrors.CodeInvalidConfig, "validate config")
	}
	return nil
}

func (s StoreConfig) validate() []error {
	var errs []error
	switch s.Driver {
	case StoreMongo:
		if s.URI == "" {
			errs = append(errs, errors.New("store.uri is required for the mongo driver"))
		}
		if s.Database == "" {
			errs = append(errs, errors.New("store.database is required for the mongo driver"))
		}
	case StoreSQLite, StorePostgres:
		if s.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for the %s driver", s.Driver))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of %s", s.Driver,
			strings.Join([]string{StoreMongo, StoreSQLite, StorePostgres, StoreMemory}, ", ")))
	}
	if s.ConnectTimeout < 0 {
		errs = append(errs, errors.New("store.connect_timeout must not be negative"))
	}
	return errs
}

func (s StorageConfig) validate() []error {
	var errs []error
	switch s.Driver {
	case StorageLocal:
	case StorageMinio:
		if s.Minio.Endpoint == "" {
			errs = append(errs, errors.New("storage.minio.endpoint is required for the minio driver"))
		}
		if s.Minio.Bucket == "" {
			errs = append(errs, errors.New("storage.minio.bucket is required for the minio driver"))
		}
	case StorageS3:
		if s.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of %s, %s, %s",
			s.Driver, StorageLocal, StorageMinio, StorageS3))
	}
	return errs
}

func (l LogConfig) validate() []error {
	var errs []error
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level))
	}
	switch l.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, console", l.Format))
	}
	return errs
}
