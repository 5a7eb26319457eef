// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"bitwise74/formdrop-api/db"
	"bitwise74/formdrop-api/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{storage.TypeLocal, storage.TypeS3}
	validDrivers      = []string{db.DriverSQLite, db.DriverPostgres}
)

// ErrMissingSecret is returned when no JWT secret is configured. The error
// message carries a freshly generated one that can be pasted into the config.
var ErrMissingSecret = errors.New("no JWT secret set")

type Config struct {
	App struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	Host struct {
		Port        int      `mapstructure:"port"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"host"`

	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`

	DB struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"db"`

	Storage struct {
		Type      string `mapstructure:"type"`
		LocalPath string `mapstructure:"local_path"`
	} `mapstructure:"storage"`

	S3 struct {
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	} `mapstructure:"s3"`

	Upload struct {
		// In MiB
		MaxSize int64 `mapstructure:"max_size"`
	} `mapstructure:"upload"`

	Security struct {
		RateLimit float64 `mapstructure:"rate_limit"`
		RateBurst int     `mapstructure:"rate_burst"`
	} `mapstructure:"security"`

	Cleanup struct {
		Interval time.Duration `mapstructure:"interval"`
		Grace    time.Duration `mapstructure:"grace"`
	} `mapstructure:"cleanup"`
}

// MaxUploadBytes is the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSize << 20
}

func (c *Config) S3Config() storage.S3Config {
	return storage.S3Config{
		Bucket:          c.S3.Bucket,
		Region:          c.S3.Region,
		Endpoint:        c.S3.Endpoint,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
	}
}

var defaults = map[string]any{
	"app.log_level": "info",

	"host.port":         8080,
	"host.cors_origins": []string{"http://localhost:5173"},

	"jwt.secret": "",
	"jwt.ttl":    "8h",

	"db.driver": db.DriverSQLite,
	"db.dsn":    "formdrop.db",

	"storage.type":       storage.TypeLocal,
	"storage.local_path": "uploads",

	"s3.bucket":            "",
	"s3.region":            "us-east-1",
	"s3.endpoint":          "",
	"s3.access_key_id":     "",
	"s3.secret_access_key": "",

	"upload.max_size": 50,

	"security.rate_limit": 10,
	"security.rate_burst": 20,

	"cleanup.interval": "1h",
	"cleanup.grace":    "24h",
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup reads .env, the optional TOML config file and the environment, in
// that order of increasing precedence. Every key can be set through the
// environment by upper-casing it and replacing dots with underscores, e.g.
// JWT_SECRET. args are the command line arguments without the program name.
func Setup(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("formdrop", pflag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a TOML config file (default ./config.toml)")
	envPath := flags.String("env", ".env", "Path to a .env file")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s, %w", *envPath, err)
	}

	v := viper.New()
	v.SetConfigType("toml")

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	for key, val := range defaults {
		v.SetDefault(key, val)
		v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly requested file has to exist
		if !errors.As(err, &notFound) || *configPath != "" {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate returns an error if something is critically wrong and the
// application can't run because of that
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 || c.Host.Port > 65535 {
		return errors.New("invalid port provided")
	}

	if len(c.Host.CORSOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("%w, set JWT_SECRET or jwt.secret in config.toml. Here is a random one:\n\n%s", ErrMissingSecret, genSecret())
	}

	if c.JWT.TTL < 0 {
		return errors.New("jwt.ttl can't be negative")
	}

	if !slices.Contains(validDrivers, c.DB.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.DB.DSN == "" {
		return errors.New("db.dsn can't be empty")
	}

	switch c.Storage.Type {
	case storage.TypeS3:
		if c.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.S3.Region == "" {
			return errors.New("region can't be empty")
		}
		// Static credentials come in pairs, otherwise the default chain is used
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return errors.New("access key id and secret access key must be set together")
		}
	case storage.TypeLocal:
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local_path can't be empty")
		}
	default:
		return errors.New("invalid storage type provided")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Security.RateLimit < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if c.Cleanup.Interval < 0 || c.Cleanup.Grace < 0 {
		return errors.New("cleanup durations can't be negative")
	}

	return nil
}
