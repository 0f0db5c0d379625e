package config

import (
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided
// prefix.
//
// Environment variable mapping:
//
//	PORT          - Server port (default: "8080")
//	ENVIRONMENT   - Runtime environment (default: "development")
//	DATABASE_URL  - Connection string. A "postgres://" or
//	                "postgresql://" prefix selects the Postgres backend;
//	                empty or "memory" keeps the in-memory database.
//	STORAGE_TYPE  - "memory" (default), "fs" or "s3"
//	FS_BASE_DIR, FS_URL_PREFIX                 - fs storage
//	S3_REGION, S3_BUCKET, S3_ACCESS_KEY_ID,
//	S3_SECRET_ACCESS_KEY, S3_ENDPOINT,
//	S3_USE_PATH_STYLE, S3_PUBLIC_BASE_URL,
//	S3_PRESIGN_DURATION, S3_CREATE_BUCKET      - s3 storage
//	UPLOAD_FOLDER        - Key prefix for uploaded objects
//	SWEEP_INTERVAL_SEC   - Orphan sweep interval (0 disables)
//	VIEWER_BASE_URL      - Office preview conversion service
//	JWT_SECRET           - Admin API token secret (empty disables admin)
//	CONTACT_RECIPIENT    - Contact form notification recipient
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}

		if v, ok := lookupEnv(prefix, "DATABASE_URL"); ok {
			switch {
			case v == "" || v == "memory":
				c.DatabaseType = "memory"
				c.DatabaseURL = ""
			case strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://"):
				c.DatabaseType = "postgres"
				c.DatabaseURL = v
			default:
				c.DatabaseURL = v
			}
		}

		if v, ok := lookupEnv(prefix, "STORAGE_TYPE"); ok && v != "" {
			c.Storage.Type = v
		}
		if v, ok := lookupEnv(prefix, "FS_BASE_DIR"); ok {
			c.Storage.BaseDir = v
		}
		if v, ok := lookupEnv(prefix, "FS_URL_PREFIX"); ok {
			c.Storage.URLPrefix = v
		}
		if v, ok := lookupEnv(prefix, "S3_REGION"); ok {
			c.Storage.Region = v
		}
		if v, ok := lookupEnv(prefix, "S3_BUCKET"); ok {
			c.Storage.Bucket = v
		}
		if v, ok := lookupEnv(prefix, "S3_ACCESS_KEY_ID"); ok {
			c.Storage.AccessKeyID = v
		}
		if v, ok := lookupEnv(prefix, "S3_SECRET_ACCESS_KEY"); ok {
			c.Storage.SecretAccessKey = v
		}
		if v, ok := lookupEnv(prefix, "S3_ENDPOINT"); ok {
			c.Storage.Endpoint = v
		}
		if v, ok := lookupEnv(prefix, "S3_PUBLIC_BASE_URL"); ok {
			c.Storage.PublicBaseURL = v
		}
		if v, ok := lookupEnv(prefix, "S3_USE_PATH_STYLE"); ok {
			c.Storage.UsePathStyle = parseBool(v)
		}
		if v, ok := lookupEnv(prefix, "S3_PRESIGN_DURATION"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				c.Storage.PresignDuration = n
			}
		}
		if v, ok := lookupEnv(prefix, "S3_CREATE_BUCKET"); ok {
			c.Storage.CreateBucket = parseBool(v)
		}

		if v, ok := lookupEnv(prefix, "UPLOAD_FOLDER"); ok && v != "" {
			c.UploadFolder = v
		}
		if v, ok := lookupEnv(prefix, "SWEEP_INTERVAL_SEC"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				c.SweepIntervalSec = n
			}
		}
		if v, ok := lookupEnv(prefix, "VIEWER_BASE_URL"); ok && v != "" {
			c.ViewerBaseURL = v
		}
		if v, ok := lookupEnv(prefix, "JWT_SECRET"); ok {
			c.JWTSecret = v
		}
		if v, ok := lookupEnv(prefix, "CONTACT_RECIPIENT"); ok {
			c.ContactRecipient = v
		}

		return nil
	}
}

func lookupEnv(prefix, name string) (string, bool) {
	if prefix != "" {
		name = prefix + "_" + name
	}
	return os.LookupEnv(name)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
