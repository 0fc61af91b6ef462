package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// MinBcryptCost mirrors the hasher's lower bound so bad settings fail at load time.
const MinBcryptCost = bcrypt.DefaultCost

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string

	DatabaseDriver string
	DatabasePath   string // SQLite file, used when DatabaseDriver is "sqlite"
	MongoURI       string
	MongoDatabase  string

	JWTSecret  string
	BcryptCost int

	PostsImportSource string // local path or s3://bucket/key
	AWSRegion         string
	S3Endpoint        string
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// env binds config keys to their environment variable names.
var env = map[string]string{
	"port":                "PORT",
	"app_env":             "APP_ENV",
	"log_level":           "LOG_LEVEL",
	"cors_origins":        "CORS_ORIGINS",
	"database_driver":     "DATABASE_DRIVER",
	"database_path":       "DATABASE_PATH",
	"mongodb_uri":         "MONGODB_URI",
	"mongodb_database":    "MONGODB_DATABASE",
	"jwt_secret":          "JWT_SECRET",
	"bcrypt_cost":         "BCRYPT_COST",
	"posts_import_source": "POSTS_IMPORT_SOURCE",
	"aws_region":          "AWS_REGION",
	"s3_endpoint":         "S3_ENDPOINT",
}

// Load loads configuration from environment variables, an optional
// config.yaml in the working directory, and defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	v.SetDefault("port", 8080)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("database_driver", DriverMongo)
	v.SetDefault("database_path", "./storefront.db")
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb_database", "storefront")
	v.SetDefault("bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("posts_import_source", "./post.json")
	v.SetDefault("aws_region", "us-east-1")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:        v.GetInt("port"),
		AppEnv:            v.GetString("app_env"),
		LogLevel:          v.GetString("log_level"),
		AllowedOrigins:    splitList(v.GetString("cors_origins")),
		DatabaseDriver:    strings.ToLower(v.GetString("database_driver")),
		DatabasePath:      v.GetString("database_path"),
		MongoURI:          v.GetString("mongodb_uri"),
		MongoDatabase:     v.GetString("mongodb_database"),
		JWTSecret:         v.GetString("jwt_secret"),
		BcryptCost:        v.GetInt("bcrypt_cost"),
		PostsImportSource: v.GetString("posts_import_source"),
		AWSRegion:         v.GetString("aws_region"),
		S3Endpoint:        v.GetString("s3_endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.ServerPort)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", MinBcryptCost, bcrypt.MaxCost, c.BcryptCost)
	}
	switch c.DatabaseDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGODB_URI and MONGODB_DATABASE are required for the mongo driver")
		}
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
