// Package config builds the content service's collaborators from
// declarative configuration.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"github.com/amicale-dev/site-content/migrations"
	"github.com/amicale-dev/site-content/pkg/sitecontent"
	repomemory "github.com/amicale-dev/site-content/pkg/sitecontent/repo/memory"
	repopg "github.com/amicale-dev/site-content/pkg/sitecontent/repo/postgres"
	fsstorage "github.com/amicale-dev/site-content/pkg/sitecontent/storage/fs"
	memorystorage "github.com/amicale-dev/site-content/pkg/sitecontent/storage/memory"
	s3storage "github.com/amicale-dev/site-content/pkg/sitecontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top
// of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		Storage: StorageConfig{
			Type: "memory",
		},
		UploadFolder:     "uploads",
		ViewerBaseURL:    "https://docs.google.com/viewer",
		SweepIntervalSec: 300,
	}
}

// ServerConfig represents server configuration for the content service.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Storage configuration
	Storage StorageConfig

	// Upload pipeline
	UploadFolder     string
	SweepIntervalSec int

	// Document preview
	ViewerBaseURL string

	// Admin API auth. Empty disables the admin routes.
	JWTSecret string

	// Contact notifications
	ContactRecipient string
}

// StorageConfig selects and parameterizes the blob storage backend.
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// fs options
	BaseDir   string
	URLPrefix string

	// s3 options
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	PublicBaseURL   string
	PresignDuration int
	CreateBucket    bool
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type '%s'", c.Storage.Type)
	}

	return nil
}

// BuildRepository creates the document repository, running schema
// migrations when the backend is Postgres.
func (c *ServerConfig) BuildRepository(ctx context.Context) (sitecontent.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		if err := c.runMigrations(ctx); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unknown database type '%s'", c.DatabaseType)
	}
}

func (c *ServerConfig) runMigrations(ctx context.Context) error {
	db, err := sql.Open("pgx", c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// BuildBlobStore creates the configured blob storage backend.
func (c *ServerConfig) BuildBlobStore() (sitecontent.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.Storage.URLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			PublicBaseURL:          c.Storage.PublicBaseURL,
			PresignDuration:        c.Storage.PresignDuration,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unknown storage type '%s'", c.Storage.Type)
	}
}
