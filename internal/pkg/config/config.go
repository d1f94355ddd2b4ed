package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageGridFS = "gridfs"
	StorageS3     = "s3"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// PublicBaseURL is the externally visible origin of this API; GridFS
	// image URLs are built from it.
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	CleanupWorkers int `env:"CLEANUP_WORKERS, default=4"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER, default=gridfs"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION,      default=us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PublicURL string `env:"S3_PUBLIC_BASE_URL"`
}

// BootstrapConfig names an admin account created at startup when missing.
type BootstrapConfig struct {
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ImageURLPrefix is the URL prefix under which GridFS images are served.
func (c *Config) ImageURLPrefix() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/images"
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	switch c.Storage.Driver {
	case StorageGridFS:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}
