package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/amicale-dev/site-content/pkg/sitecontent/api"
	"github.com/amicale-dev/site-content/pkg/sitecontent/config"
	"github.com/amicale-dev/site-content/pkg/sitecontent/notify"
	"github.com/amicale-dev/site-content/pkg/sitecontent/upload"
)

// AppConfig is the process environment for the server binary.
type AppConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL string `env:"DATABASE_URL" env-default:""`

	StorageType string `env:"STORAGE_TYPE" env-default:"memory"`
	FSBaseDir   string `env:"FS_BASE_DIR" env-default:""`
	FSURLPrefix string `env:"FS_URL_PREFIX" env-default:""`

	S3Region          string `env:"S3_REGION" env-default:""`
	S3Bucket          string `env:"S3_BUCKET" env-default:""`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL" env-default:""`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	UploadFolder     string `env:"UPLOAD_FOLDER" env-default:"uploads"`
	SweepIntervalSec int    `env:"SWEEP_INTERVAL_SEC" env-default:"300"`
	ViewerBaseURL    string `env:"VIEWER_BASE_URL" env-default:""`
	JWTSecret        string `env:"JWT_SECRET" env-default:""`
	ContactRecipient string `env:"CONTACT_RECIPIENT" env-default:""`
}

func (a AppConfig) serverConfig() (*config.ServerConfig, error) {
	return config.Load(func(c *config.ServerConfig) error {
		c.Port = a.Port
		c.Environment = a.Environment
		if a.DatabaseURL != "" && a.DatabaseURL != "memory" {
			c.DatabaseType = "postgres"
			c.DatabaseURL = a.DatabaseURL
		}
		c.Storage.Type = a.StorageType
		c.Storage.BaseDir = a.FSBaseDir
		c.Storage.URLPrefix = a.FSURLPrefix
		c.Storage.Region = a.S3Region
		c.Storage.Bucket = a.S3Bucket
		c.Storage.AccessKeyID = a.S3AccessKeyID
		c.Storage.SecretAccessKey = a.S3SecretAccessKey
		c.Storage.Endpoint = a.S3Endpoint
		c.Storage.UsePathStyle = a.S3UsePathStyle
		c.Storage.PublicBaseURL = a.S3PublicBaseURL
		c.Storage.CreateBucket = a.S3CreateBucket
		c.UploadFolder = a.UploadFolder
		c.SweepIntervalSec = a.SweepIntervalSec
		if a.ViewerBaseURL != "" {
			c.ViewerBaseURL = a.ViewerBaseURL
		}
		c.JWTSecret = a.JWTSecret
		c.ContactRecipient = a.ContactRecipient
		return nil
	})
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var appCfg AppConfig
	if err := cleanenv.ReadEnv(&appCfg); err != nil {
		logger.Error("failed to read configuration", "error", err)
		os.Exit(1)
	}

	cfg, err := appCfg.serverConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := cfg.BuildRepository(ctx)
	if err != nil {
		logger.Error("failed to build repository", "error", err)
		os.Exit(1)
	}

	blob, err := cfg.BuildBlobStore()
	if err != nil {
		logger.Error("failed to build blob store", "error", err)
		os.Exit(1)
	}

	var sweeper *upload.Sweeper
	if cfg.SweepIntervalSec > 0 {
		sweeper = upload.NewSweeper(blob, time.Duration(cfg.SweepIntervalSec)*time.Second, logger)
	}

	server := api.NewServer(api.Options{
		Repo:             repo,
		Blob:             blob,
		Logger:           logger,
		Sender:           notify.NewLogSender(logger),
		JWTSecret:        cfg.JWTSecret,
		ViewerBase:       cfg.ViewerBaseURL,
		UploadFolder:     cfg.UploadFolder,
		Sweeper:          sweeper,
		ContactRecipient: cfg.ContactRecipient,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Mount("/", server.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if sweeper != nil {
		go sweeper.Run(sweepCtx)
	}

	go func() {
		logger.Info("content server starting",
			"port", cfg.Port, "env", cfg.Environment,
			"database", cfg.DatabaseType, "storage", cfg.Storage.Type)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
