// Package config loads parkcore settings from PARK_-prefixed environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"parkcore/internal/blob"
	"parkcore/internal/catalog"
	"parkcore/internal/core"
)

// Prefix is prepended to every variable name.
const Prefix = "PARK_"

// Config is the process configuration shared by the CLI and the HTTP server.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"auto"`

	Storage StorageConfig `envPrefix:"STORAGE_"`
	Blob    BlobConfig    `envPrefix:"BLOB_"`

	CompatMode string `env:"COMPAT_MODE" envDefault:"heuristic"`
	SeedFile   string `env:"SEED_FILE"`
	SeedDemo   bool   `env:"SEED_DEMO" envDefault:"false"`

	// Tracing selects the span exporter: off, stdout (OpenTelemetry) or json.
	Tracing string `env:"TRACING" envDefault:"off"`

	RateLimit float64 `env:"RATE_LIMIT" envDefault:"50"`
	RateBurst int     `env:"RATE_BURST" envDefault:"100"`

	// StatusInterval enables a periodic park status log line; 0 disables it.
	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"0s"`
}

// StorageConfig selects the zone store backend.
type StorageConfig struct {
	Driver      string `env:"DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"parkcore.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	BadgerDir   string `env:"BADGER_DIR" envDefault:"parkcore-badger"`
}

// BlobConfig selects where snapshot archives are written.
type BlobConfig struct {
	Driver            string `env:"DRIVER" envDefault:"fs"`
	FSRoot            string `env:"FS_ROOT" envDefault:"./blobdata"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads configuration from the supplied variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerations and impossible limits.
func (c Config) Validate() error {
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres, core.StorageBadger:
	default:
		return fmt.Errorf("invalid %sSTORAGE_DRIVER %q", Prefix, c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("%sBLOB_S3_BUCKET is required for the s3 blob driver", Prefix)
		}
	default:
		return fmt.Errorf("invalid %sBLOB_DRIVER %q", Prefix, c.Blob.Driver)
	}
	switch catalog.Mode(c.CompatMode) {
	case catalog.ModeHeuristic, catalog.ModeStrict:
	default:
		return fmt.Errorf("invalid %sCOMPAT_MODE %q", Prefix, c.CompatMode)
	}
	switch c.Tracing {
	case "off", "stdout", "json":
	default:
		return fmt.Errorf("invalid %sTRACING %q", Prefix, c.Tracing)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid %sLOG_FORMAT %q", Prefix, c.LogFormat)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}
	if c.StatusInterval < 0 {
		return fmt.Errorf("invalid %sSTATUS_INTERVAL %s", Prefix, c.StatusInterval)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid %sLOG_LEVEL %q", Prefix, level)
	}
	return l, nil
}

// StoreConfig converts the storage settings for core.OpenPersistentStore.
func (c Config) StoreConfig(logger *slog.Logger) core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
		BadgerDir:   c.Storage.BadgerDir,
		Logger:      logger,
	}
}

// BlobStoreConfig converts the blob settings for blob.Open.
func (c Config) BlobStoreConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          c.Blob.S3Region,
			Bucket:          c.Blob.S3Bucket,
			Endpoint:        c.Blob.S3Endpoint,
			AccessKeyID:     c.Blob.S3AccessKeyID,
			SecretAccessKey: c.Blob.S3SecretAccessKey,
			PathStyle:       c.Blob.S3PathStyle,
		},
	}
}

// Evaluator builds the compatibility evaluator for the configured mode over c.
func (c Config) Evaluator(cat *catalog.Catalog) (catalog.Evaluator, error) {
	return catalog.NewEvaluator(catalog.Mode(c.CompatMode), cat)
}
