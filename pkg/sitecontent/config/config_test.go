package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amicale-dev/site-content/pkg/sitecontent/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.UploadFolder)
	assert.Equal(t, 300, cfg.SweepIntervalSec)
	assert.NotEmpty(t, cfg.ViewerBaseURL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		opt     config.Option
		wantErr string
	}{
		{
			name: "empty port",
			opt: func(c *config.ServerConfig) error {
				c.Port = ""
				return nil
			},
			wantErr: "port",
		},
		{
			name: "bad database type",
			opt: func(c *config.ServerConfig) error {
				c.DatabaseType = "oracle"
				return nil
			},
			wantErr: "database_type",
		},
		{
			name: "postgres without url",
			opt: func(c *config.ServerConfig) error {
				c.DatabaseType = "postgres"
				return nil
			},
			wantErr: "database_url",
		},
		{
			name: "fs storage without base dir",
			opt: func(c *config.ServerConfig) error {
				c.Storage.Type = "fs"
				return nil
			},
			wantErr: "base_dir",
		},
		{
			name: "s3 storage without bucket",
			opt: func(c *config.ServerConfig) error {
				c.Storage.Type = "s3"
				return nil
			},
			wantErr: "bucket",
		},
		{
			name: "unknown storage type",
			opt: func(c *config.ServerConfig) error {
				c.Storage.Type = "tape"
				return nil
			},
			wantErr: "storage type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWithEnv(t *testing.T) {
	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATABASE_URL", "postgres://user:pw@localhost:5432/site")
		t.Setenv("STORAGE_TYPE", "fs")
		t.Setenv("FS_BASE_DIR", "/var/data")
		t.Setenv("UPLOAD_FOLDER", "files")
		t.Setenv("SWEEP_INTERVAL_SEC", "60")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("CONTACT_RECIPIENT", "office@example.com")

		cfg, err := config.Load(config.WithEnv(""))
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "postgres", cfg.DatabaseType)
		assert.Equal(t, "postgres://user:pw@localhost:5432/site", cfg.DatabaseURL)
		assert.Equal(t, "fs", cfg.Storage.Type)
		assert.Equal(t, "/var/data", cfg.Storage.BaseDir)
		assert.Equal(t, "files", cfg.UploadFolder)
		assert.Equal(t, 60, cfg.SweepIntervalSec)
		assert.Equal(t, "s3cret", cfg.JWTSecret)
		assert.Equal(t, "office@example.com", cfg.ContactRecipient)
	})

	t.Run("memory keyword keeps the in-memory backend", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "memory")

		cfg, err := config.Load(config.WithEnv(""))
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.DatabaseType)
		assert.Empty(t, cfg.DatabaseURL)
	})

	t.Run("prefix scopes the lookup", func(t *testing.T) {
		t.Setenv("SITE_PORT", "7070")
		t.Setenv("PORT", "9999")

		cfg, err := config.Load(config.WithEnv("SITE"))
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
	})
}

func TestBuildRepositoryMemory(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	repo, err := cfg.BuildRepository(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestBuildBlobStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		blob, err := cfg.BuildBlobStore()
		require.NoError(t, err)
		assert.NotNil(t, blob)
	})

	t.Run("fs", func(t *testing.T) {
		cfg, err := config.Load(func(c *config.ServerConfig) error {
			c.Storage.Type = "fs"
			c.Storage.BaseDir = t.TempDir()
			return nil
		})
		require.NoError(t, err)

		blob, err := cfg.BuildBlobStore()
		require.NoError(t, err)
		assert.NotNil(t, blob)
	})
}
