package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "local", cfg.ImageStorage)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.JWTSecret, "test mode should provide a signing secret")
	assert.True(t, cfg.IsTest())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "/tmp/oms.db")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/oms.db", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseDriver: "postgres",
			DatabaseURL:    "postgresql://localhost/oms",
			GoEnv:          "development",
			JWTSecret:      "secret",
			TokenTTL:       time.Hour,
			ImageStorage:   "local",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url in production", func(c *Config) { c.DatabaseURL = ""; c.GoEnv = "production" }, "DATABASE_URL is required"},
		{"missing database url in development falls back", func(c *Config) { c.DatabaseURL = "" }, ""},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "unsupported DATABASE_DRIVER"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"non-positive ttl", func(c *Config) { c.TokenTTL = 0 }, "TOKEN_TTL must be positive"},
		{"s3 without bucket", func(c *Config) { c.ImageStorage = "s3" }, "AWS_S3_BUCKET is required"},
		{"s3 with bucket", func(c *Config) { c.ImageStorage = "s3"; c.AWSS3Bucket = "menu-images" }, ""},
		{"unknown storage", func(c *Config) { c.ImageStorage = "ftp" }, "unsupported IMAGE_STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{GoEnv: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsTest())
	assert.False(t, cfg.IsDevelopment())

	cfg.GoEnv = "development"
	assert.True(t, cfg.IsDevelopment())
}

func TestNewLogger(t *testing.T) {
	lg, err := NewLogger(&Config{GoEnv: "development", LogLevel: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, lg)

	_, err = NewLogger(&Config{GoEnv: "development", LogLevel: "loud"})
	assert.Error(t, err)

	nop, err := NewLogger(&Config{GoEnv: "test", LogLevel: "loud"})
	require.NoError(t, err)
	assert.NotNil(t, nop)
}
