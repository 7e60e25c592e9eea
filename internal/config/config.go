package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string       `yaml:"env"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Auth   AuthConfig   `yaml:"auth"`
	Email  EmailConfig  `yaml:"email"`
	Backup BackupConfig `yaml:"backup"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RetryAttempts  int           `yaml:"retry_attempts"`
	RetryInterval  time.Duration `yaml:"retry_interval"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type EmailConfig struct {
	PostmarkToken string `yaml:"postmark_token"`
	FromEmail     string `yaml:"from_email"`
}

type BackupConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	Retention  time.Duration `yaml:"retention"`
	Passphrase string        `yaml:"passphrase"`
	S3         S3Config      `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Default returns a configuration safe for local development. Secrets have no
// defaults — the JWT secret in particular must come from the file or the
// environment.
func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log:    LogConfig{Level: "info"},
		SQLite: SQLiteConfig{Path: "campushub.db"},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "campushub",
			ConnectTimeout: 10 * time.Second,
			RetryAttempts:  3,
			RetryInterval:  5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Backup: BackupConfig{
			Interval:  24 * time.Hour,
			Retention: 30 * 24 * time.Hour,
		},
	}
}

// Load builds the config from defaults, an optional YAML file, and environment
// overrides, in that order. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("config: auth jwt secret is required (CAMPUSHUB_JWT_SECRET)")
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CAMPUSHUB_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("CAMPUSHUB_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("CAMPUSHUB_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CAMPUSHUB_DB_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("CAMPUSHUB_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("CAMPUSHUB_MONGO_DB"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("CAMPUSHUB_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("CAMPUSHUB_TOKEN_TTL", &cfg.Auth.TokenTTL); err != nil {
		return err
	}
	if v := os.Getenv("CAMPUSHUB_POSTMARK_TOKEN"); v != "" {
		cfg.Email.PostmarkToken = v
	}
	if v := os.Getenv("CAMPUSHUB_FROM_EMAIL"); v != "" {
		cfg.Email.FromEmail = v
	}
	if err := overrideBool("CAMPUSHUB_BACKUP_ENABLED", &cfg.Backup.Enabled); err != nil {
		return err
	}
	if err := overrideDuration("CAMPUSHUB_BACKUP_INTERVAL", &cfg.Backup.Interval); err != nil {
		return err
	}
	if v := os.Getenv("CAMPUSHUB_BACKUP_PASSPHRASE"); v != "" {
		cfg.Backup.Passphrase = v
	}
	if v := os.Getenv("CAMPUSHUB_S3_ENDPOINT"); v != "" {
		cfg.Backup.S3.Endpoint = v
	}
	if v := os.Getenv("CAMPUSHUB_S3_REGION"); v != "" {
		cfg.Backup.S3.Region = v
	}
	if v := os.Getenv("CAMPUSHUB_S3_BUCKET"); v != "" {
		cfg.Backup.S3.Bucket = v
	}
	if v := os.Getenv("CAMPUSHUB_S3_ACCESS_KEY"); v != "" {
		cfg.Backup.S3.AccessKey = v
	}
	if v := os.Getenv("CAMPUSHUB_S3_SECRET_KEY"); v != "" {
		cfg.Backup.S3.SecretKey = v
	}
	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
