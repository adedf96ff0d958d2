package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/generator"
)

const dateLayout = "2006-01-02"

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Generator GeneratorConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Feed      FeedConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// GeneratorConfig holds the synthetic post generator settings
type GeneratorConfig struct {
	StartDate    time.Time
	Seed         int64 // 0 seeds from the clock
	InitialPosts int
}

// DatabaseConfig holds database configuration; an empty path disables the archive
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                 int
	MaxRequestsPerMinute int
}

// FeedConfig holds the background feeder settings
type FeedConfig struct {
	Interval  int // seconds, 0 disables the feeder
	BatchSize int
}

// LoadConfig loads configuration from an optional .env file and the environment
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	if err := godotenv.Load(envPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		log.WithField("file", envPath).Info("No .env file found, using environment and defaults")
	}

	startDate, err := time.Parse(dateLayout, getEnv("GENERATOR_START_DATE", generator.DefaultStartDate))
	if err != nil {
		return nil, fmt.Errorf("GENERATOR_START_DATE must be formatted as YYYY-MM-DD: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Post Index"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Generator: GeneratorConfig{
			StartDate:    startDate,
			Seed:         getEnvAsInt64("GENERATOR_SEED", 0),
			InitialPosts: getEnvAsInt("INITIAL_POSTS", 10),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", ""),
		},
		Server: ServerConfig{
			Port:                 getEnvAsInt("SERVER_PORT", 8080),
			MaxRequestsPerMinute: getEnvAsInt("SERVER_MAX_REQUESTS_PER_MINUTE", 100),
		},
		Feed: FeedConfig{
			Interval:  getEnvAsInt("FEED_INTERVAL", 0),
			BatchSize: getEnvAsInt("FEED_BATCH_SIZE", 5),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Generator.InitialPosts < 0 {
		return fmt.Errorf("INITIAL_POSTS must not be negative")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if config.Server.MaxRequestsPerMinute < 1 {
		return fmt.Errorf("SERVER_MAX_REQUESTS_PER_MINUTE must be positive")
	}
	if config.Feed.Interval < 0 {
		return fmt.Errorf("FEED_INTERVAL must not be negative")
	}
	if config.Feed.Interval > 0 && config.Feed.BatchSize < 1 {
		return fmt.Errorf("FEED_BATCH_SIZE must be positive when the feeder is enabled")
	}

	// if we are storing the db in a nested directory, create the directory
	if config.Database.Path != "" {
		dbDir := filepath.Dir(config.Database.Path)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	return nil
}
