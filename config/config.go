// Package config loads the bibliothek configuration.
//
// Values are resolved in order: defaults, then the YAML file, then
// BIBLIOTHEK_* environment variables. The environment variable of a field
// joins the env tags of its path, so store.uri is BIBLIOTHEK_STORE_URI.
//
// # Basic Usage
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath(config.DefaultPath()).
//	    Load()
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Storage drivers.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageS3    = "s3"
)

// Config is the complete bibliothek configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" env:"STORE"`
	Storage StorageConfig `yaml:"storage" env:"STORAGE"`
	Log     LogConfig     `yaml:"log" env:"LOG"`
}

// StoreConfig selects and configures the catalog store.
type StoreConfig struct {
	// Driver is one of mongo, sqlite, postgres or memory.
	Driver string `yaml:"driver" env:"DRIVER"`

	// URI is the MongoDB connection string.
	URI string `yaml:"uri" env:"URI"`

	// Database is the MongoDB database name.
	Database string `yaml:"database" env:"DATABASE"`

	// DSN is the data source name of the sqlite and postgres drivers.
	DSN string `yaml:"dsn" env:"DSN"`

	// ConnectTimeout bounds establishing a store session.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// StorageConfig configures artifact storage.
type StorageConfig struct {
	// Driver is local, minio or s3.
	Driver string `yaml:"driver" env:"DRIVER"`

	// Path is the local storage root.
	Path string `yaml:"path" env:"PATH"`

	// CachePath is where fetched downloads are cached.
	CachePath string `yaml:"cache_path" env:"CACHE_PATH"`

	// VerifyChecksums enables sha256 verification of ingested artifacts.
	VerifyChecksums bool `yaml:"verify_checksums" env:"VERIFY_CHECKSUMS"`

	Minio MinioConfig `yaml:"minio" env:"MINIO"`
	S3    S3Config    `yaml:"s3" env:"S3"`
}

// MinioConfig configures S3 compatible object storage.
type MinioConfig struct {
	Endpoint     string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey    string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey    string `yaml:"secret_key" env:"SECRET_KEY"`
	Bucket       string `yaml:"bucket" env:"BUCKET"`
	Prefix       string `yaml:"prefix" env:"PREFIX"`
	UseSSL       bool   `yaml:"use_ssl" env:"USE_SSL"`
	CreateBucket bool   `yaml:"create_bucket" env:"CREATE_BUCKET"`
}

// S3Config configures Amazon S3 storage. Credentials come from the default
// AWS chain unless AccessKey is set.
type S3Config struct {
	Region         string `yaml:"region" env:"REGION"`
	Bucket         string `yaml:"bucket" env:"BUCKET"`
	Prefix         string `yaml:"prefix" env:"PREFIX"`
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT"`
	ForcePathStyle bool   `yaml:"force_path_style" env:"FORCE_PATH_STYLE"`
	AccessKey      string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey      string `yaml:"secret_key" env:"SECRET_KEY"`
	CreateBucket   bool   `yaml:"create_bucket" env:"CREATE_BUCKET"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`

	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`

	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Default returns the default configuration: the MongoDB store the catalog
// has always used and local artifact storage.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:         StoreMongo,
			URI:            "mongodb://localhost:27017",
			Database:       "library",
			ConnectTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:    StorageLocal,
			CachePath: filepath.Join(xdg.CacheHome, "bibliothek"),
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/bibliothek/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "bibliothek", "config.yaml")
}
