// Package config loads server configuration from the environment and
// builds the repository, blob store, and services it describes.
package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagecms/pagecms/pkg/pagecms"
	"github.com/pagecms/pagecms/pkg/pagecms/imaging"
	memoryrepo "github.com/pagecms/pagecms/pkg/pagecms/repo/memory"
	postgresrepo "github.com/pagecms/pagecms/pkg/pagecms/repo/postgres"
	fsstorage "github.com/pagecms/pagecms/pkg/pagecms/storage/fs"
	memorystorage "github.com/pagecms/pagecms/pkg/pagecms/storage/memory"
	s3storage "github.com/pagecms/pagecms/pkg/pagecms/storage/s3"
)

// ServerConfig represents server configuration for the pagecms service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Database configuration
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DatabaseURL  string `env:"DATABASE_URL"`

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"fs"` // "memory", "fs", "s3"
	UploadDir   string `env:"UPLOAD_DIR" env-default:"./data/uploads"`
	S3          S3Config

	// Upload pipeline configuration
	UploadSizes    string `env:"UPLOAD_SIZES" env-default:"xs:160x160,sm:320x320,md:640x640,lg:1280x1280"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"33554432"`
}

// S3Config carries S3/MinIO settings for the s3 storage backend
type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the server configuration
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

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.UploadDir == "" {
			return errors.New("upload_dir is required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return errors.New("storage_type must be 'memory', 'fs' or 's3'")
	}

	if _, err := c.Sizes(); err != nil {
		return err
	}

	return nil
}

// Sizes parses the UPLOAD_SIZES value, e.g. "xs:160x160,sm:320x320".
func (c *ServerConfig) Sizes() ([]imaging.Size, error) {
	var sizes []imaging.Size
	for _, entry := range strings.Split(c.UploadSizes, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, dims, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("malformed upload size %q", entry)
		}
		rawW, rawH, ok := strings.Cut(dims, "x")
		if !ok {
			return nil, fmt.Errorf("malformed upload size %q", entry)
		}

		width, err := strconv.Atoi(rawW)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("malformed upload size %q", entry)
		}
		height, err := strconv.Atoi(rawH)
		if err != nil || height <= 0 {
			return nil, fmt.Errorf("malformed upload size %q", entry)
		}

		sizes = append(sizes, imaging.Size{Name: name, Width: width, Height: height})
	}

	if len(sizes) == 0 {
		return nil, errors.New("at least one upload size is required")
	}
	return sizes, nil
}

// BuildRepository creates the configured page repository. The returned
// cleanup function releases the underlying connection pool, if any.
func (c *ServerConfig) BuildRepository(ctx context.Context) (pagecms.Repository, func(), error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if err := postgresrepo.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgresrepo.NewWithPool(pool), pool.Close, nil
	default:
		return memoryrepo.New(), func() {}, nil
	}
}

// BuildBlobStore creates the configured storage backend.
func (c *ServerConfig) BuildBlobStore() (pagecms.BlobStore, error) {
	switch c.StorageType {
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return memorystorage.New(), nil
	}
}

// BuildImageService creates the image ingest service over the configured
// blob store.
func (c *ServerConfig) BuildImageService(store pagecms.BlobStore) (*imaging.Service, error) {
	sizes, err := c.Sizes()
	if err != nil {
		return nil, err
	}

	return imaging.New(store,
		imaging.WithSizes(sizes),
		imaging.WithMaxUploadBytes(c.MaxUploadBytes),
	)
}
