package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Import   ImportConfig
}

// DatabaseConfig holds database-related configuration.
// A postgres:// or postgresql:// DSN selects PostgreSQL; anything else is a SQLite path.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractBin     string
	Language         string
	HeicConverter    string
	TessdataDir      string
	ArtifactCacheDir string
	Timeout          time.Duration
}

// ImportConfig controls batch screenshot import.
type ImportConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadDotEnv loads a .env file when present. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return WrapError(err, "load "+p)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "jobtracker.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			TesseractBin:     getEnv("TESSERACT_BIN", "tesseract"),
			Language:         getEnv("OCR_LANG", "eng"),
			HeicConverter:    getEnv("HEIC_CONVERTER", "magick"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			Timeout:          getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Import: ImportConfig{
			Workers:        getEnvAsInt("IMPORT_WORKERS", 2),
			QueueSize:      getEnvAsInt("IMPORT_QUEUE_SIZE", 16),
			ProcessTimeout: getEnvAsDuration("IMPORT_TIMEOUT", 2*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.OCR.Language == "" {
		return NewAppError(CodeConfig, "OCR_LANG is required", ErrInvalidInput)
	}
	if c.Import.Workers <= 0 || c.Import.QueueSize <= 0 {
		return NewAppError(CodeConfig, "IMPORT_WORKERS and IMPORT_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
