package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string        `env:"DATABASE_URL" yaml:"database_url" usage:"database connection URL or sqlite file path"`
	DatabaseDriver     string        `env:"DATABASE_DRIVER" yaml:"database_driver" default:"postgres" usage:"postgres or sqlite"`
	Port               string        `env:"PORT" yaml:"port" default:"8080"`
	GoEnv              string        `env:"GO_ENV" yaml:"go_env" default:"development"`
	JWTSecret          string        `env:"JWT_SECRET" yaml:"jwt_secret" usage:"HMAC secret used to sign access tokens"`
	JWTIssuer          string        `env:"JWT_ISSUER" yaml:"jwt_issuer" default:"restaurant-oms"`
	JWTAudience        string        `env:"JWT_AUDIENCE" yaml:"jwt_audience" default:"restaurant-oms-api"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" yaml:"token_ttl" default:"24h"`
	AdminUsername      string        `env:"ADMIN_USERNAME" yaml:"admin_username"`
	AdminPassword      string        `env:"ADMIN_PASSWORD" yaml:"admin_password"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" yaml:"cors_origins" default:"*"`
	ImageStorage       string        `env:"IMAGE_STORAGE" yaml:"image_storage" default:"local" usage:"local or s3"`
	UploadDir          string        `env:"UPLOAD_DIR" yaml:"upload_dir" default:"./uploads"`
	AWSRegion          string        `env:"AWS_REGION" yaml:"aws_region" default:"us-east-1"`
	AWSS3Bucket        string        `env:"AWS_S3_BUCKET" yaml:"aws_s3_bucket"`
	AWSAccessKeyID     string        `env:"AWS_ACCESS_KEY_ID" yaml:"aws_access_key_id"`
	AWSSecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" yaml:"aws_secret_access_key"`
	LogLevel           string        `env:"LOG_LEVEL" yaml:"log_level" default:"info"`
}

const testJWTSecret = "test-secret-do-not-use-in-production"

// Load loads the configuration from defaults, an optional config.yaml and
// environment variables. It automatically determines which .env file to load
// based on GO_ENV; variables already present in the environment win.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Missing .env files are fine: in production the variables are set directly.
	if err := godotenv.Load(fmt.Sprintf(".env.%s", env)); err != nil {
		_ = godotenv.Load()
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags:          true,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              []string{"config.yaml", "/etc/restaurant-oms/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.IsTest() && cfg.JWTSecret == "" {
		cfg.JWTSecret = testJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" && c.IsProduction() {
			return errors.New("DATABASE_URL is required")
		}
	case "sqlite":
	default:
		return errors.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	switch c.ImageStorage {
	case "local":
	case "s3":
		if c.AWSS3Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return errors.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}

	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
