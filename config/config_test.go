package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestSetup_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Setup([]string{"--env", noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.Host.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 8*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, time.Hour, cfg.Cleanup.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.Grace)
}

func TestSetup_ConfigFileAndEnvPrecedence(t *testing.T) {
	path := writeFile(t, "config.toml", `
[app]
log_level = "debug"

[host]
port = 9000
cors_origins = ["https://a.example", "https://b.example"]

[jwt]
secret = "from-file"
ttl = "2h"

[storage]
type = "s3"

[s3]
bucket = "forms"
region = "eu-central-1"
`)

	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Setup([]string{"--config", path, "--env", noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9000, cfg.Host.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Host.CORSOrigins)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)

	s3 := cfg.S3Config()
	assert.Equal(t, "forms", s3.Bucket)
	assert.Equal(t, "eu-central-1", s3.Region)
}

func TestSetup_DotEnv(t *testing.T) {
	env := writeFile(t, ".env", "JWT_SECRET=dotenv-secret\nHOST_PORT=7000\n")

	// godotenv never overrides variables that are already set
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("HOST_PORT", "")
	os.Unsetenv("HOST_PORT")

	cfg, err := Setup([]string{"--env", env})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-secret", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Host.Port)
}

func TestSetup_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Setup([]string{"--env", noEnvFile(t)})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSetup_MissingExplicitConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")

	_, err := Setup([]string{"--config", filepath.Join(t.TempDir(), "nope.toml"), "--env", noEnvFile(t)})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var c Config
		c.App.LogLevel = "info"
		c.Host.Port = 8080
		c.Host.CORSOrigins = []string{"http://localhost:5173"}
		c.JWT.Secret = "x"
		c.DB.Driver = "sqlite"
		c.DB.DSN = "test.db"
		c.Storage.Type = "local"
		c.Storage.LocalPath = "uploads"
		c.Upload.MaxSize = 1
		return &c
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.App.LogLevel = "loud" }},
		{"port", func(c *Config) { c.Host.Port = 0 }},
		{"cors", func(c *Config) { c.Host.CORSOrigins = nil }},
		{"driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"dsn", func(c *Config) { c.DB.DSN = "" }},
		{"storage type", func(c *Config) { c.Storage.Type = "ftp" }},
		{"local path", func(c *Config) { c.Storage.LocalPath = "" }},
		{"s3 bucket", func(c *Config) { c.Storage.Type = "s3"; c.S3.Region = "x" }},
		{"s3 half credentials", func(c *Config) {
			c.Storage.Type = "s3"
			c.S3.Bucket = "b"
			c.S3.Region = "x"
			c.S3.AccessKeyID = "id"
		}},
		{"upload size", func(c *Config) { c.Upload.MaxSize = 0 }},
		{"rate limit", func(c *Config) { c.Security.RateLimit = -1 }},
		{"cleanup", func(c *Config) { c.Cleanup.Grace = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
