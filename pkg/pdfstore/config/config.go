// Package config builds a fully wired pdfstore service from environment
// variables or programmatic options.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
	ddbrecords "github.com/loresmith/pdfstore/pkg/pdfstore/records/dynamodb"
	memoryrecords "github.com/loresmith/pdfstore/pkg/pdfstore/records/memory"
	pgrecords "github.com/loresmith/pdfstore/pkg/pdfstore/records/postgres"
	memorystorage "github.com/loresmith/pdfstore/pkg/pdfstore/storage/memory"
	s3storage "github.com/loresmith/pdfstore/pkg/pdfstore/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// defaults, then validates the result.
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
		Port:               "8080",
		Environment:        "development",
		HourlyUploadLimit:  pdfstore.DefaultHourlyUploadLimit,
		DailyUploadLimit:   pdfstore.DefaultDailyUploadLimit,
		RequireAdminDelete: true,
		StorageURL:         "memory://",
		RecordsURL:         "memory://",
	}
}

// ServerConfig represents server configuration for the pdfstore service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Authentication secrets
	APIKey      string
	AdminAPIKey string

	// Admission control
	HourlyUploadLimit  int
	DailyUploadLimit   int
	RequireAdminDelete bool

	// Backend connection strings:
	//   StorageURL: "memory://" or "s3://bucket?region=...&endpoint=..."
	//   RecordsURL: "memory://", "postgresql://...", or "dynamodb://table?region=..."
	StorageURL string
	RecordsURL string
}

// envConfig maps environment variables onto ServerConfig fields.
type envConfig struct {
	Port               string `env:"PORT" env-default:""`
	Environment        string `env:"ENVIRONMENT" env-default:""`
	APIKey             string `env:"API_KEY" env-default:""`
	AdminAPIKey        string `env:"ADMIN_API_KEY" env-default:""`
	HourlyUploadLimit  int    `env:"RATE_LIMIT_UPLOADS_PER_HOUR" env-default:"-1"`
	DailyUploadLimit   int    `env:"RATE_LIMIT_UPLOADS_PER_DAY" env-default:"-1"`
	RequireAdminDelete string `env:"REQUIRE_ADMIN_DELETE" env-default:""`
	StorageURL         string `env:"STORAGE_URL" env-default:""`
	RecordsURL         string `env:"RECORDS_URL" env-default:""`
}

// WithEnv applies environment variable overrides on top of the current values.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.APIKey != "" {
			c.APIKey = env.APIKey
		}
		if env.AdminAPIKey != "" {
			c.AdminAPIKey = env.AdminAPIKey
		}
		if env.HourlyUploadLimit >= 0 {
			c.HourlyUploadLimit = env.HourlyUploadLimit
		}
		if env.DailyUploadLimit >= 0 {
			c.DailyUploadLimit = env.DailyUploadLimit
		}
		if env.RequireAdminDelete != "" {
			switch strings.ToLower(env.RequireAdminDelete) {
			case "true", "1", "yes":
				c.RequireAdminDelete = true
			case "false", "0", "no":
				c.RequireAdminDelete = false
			default:
				return fmt.Errorf("invalid boolean for REQUIRE_ADMIN_DELETE: %q", env.RequireAdminDelete)
			}
		}
		if env.StorageURL != "" {
			c.StorageURL = env.StorageURL
		}
		if env.RecordsURL != "" {
			c.RecordsURL = env.RecordsURL
		}

		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.APIKey == "" {
		return errors.New("API_KEY is required")
	}
	if c.HourlyUploadLimit <= 0 {
		return errors.New("hourly upload limit must be positive")
	}
	if c.DailyUploadLimit <= 0 {
		return errors.New("daily upload limit must be positive")
	}

	switch scheme(c.StorageURL) {
	case "memory", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://' or 's3://...')", c.StorageURL)
	}

	switch scheme(c.RecordsURL) {
	case "memory", "postgres", "postgresql", "dynamodb":
	default:
		return fmt.Errorf("unsupported RECORDS_URL format: %s (use 'memory://', 'postgresql://...', or 'dynamodb://...')", c.RecordsURL)
	}

	return nil
}

// BuildAuthenticator creates the Authenticator from the configured secrets.
func (c *ServerConfig) BuildAuthenticator() *pdfstore.Authenticator {
	return pdfstore.NewAuthenticator(c.APIKey, c.AdminAPIKey)
}

// BuildBlobStore creates the blob store named by StorageURL.
func (c *ServerConfig) BuildBlobStore(ctx context.Context) (pdfstore.BlobStore, error) {
	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		bucket := u.Host
		if bucket == "" {
			return nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		cfg := s3storage.Config{
			Region:          q.Get("region"),
			Bucket:          bucket,
			Endpoint:        q.Get("endpoint"),
			UsePathStyle:    q.Get("path_style") == "true",
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.Region == "" {
			cfg.Region = os.Getenv("AWS_REGION")
		}
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}
		return s3storage.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", u.Scheme)
	}
}

// BuildRecordStore creates the record store named by RecordsURL.
func (c *ServerConfig) BuildRecordStore(ctx context.Context) (pdfstore.RecordStore, error) {
	u, err := url.Parse(c.RecordsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid RECORDS_URL: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return memoryrecords.New(), nil
	case "postgres", "postgresql":
		return pgrecords.Connect(ctx, c.RecordsURL)
	case "dynamodb":
		table := u.Host
		if table == "" {
			return nil, errors.New("DynamoDB table name cannot be empty in RECORDS_URL")
		}
		opts := []func(*awsconfig.LoadOptions) error{}
		if region := u.Query().Get("region"); region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return ddbrecords.New(dynamodb.NewFromConfig(awsCfg), table), nil
	default:
		return nil, fmt.Errorf("unsupported records scheme: %s", u.Scheme)
	}
}

// BuildService creates a fully wired Service instance from the configuration.
func (c *ServerConfig) BuildService(ctx context.Context) (pdfstore.Service, error) {
	blobStore, err := c.BuildBlobStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	recordStore, err := c.BuildRecordStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}

	limiter := pdfstore.NewRateLimiter(
		pdfstore.Namespace(recordStore, "ratelimit"),
		c.HourlyUploadLimit,
		c.DailyUploadLimit,
	)

	return pdfstore.New(
		pdfstore.WithBlobStore(blobStore),
		pdfstore.WithRecordStore(recordStore),
		pdfstore.WithRateLimiter(limiter),
	)
}

func scheme(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Scheme
}
