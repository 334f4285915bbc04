// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DatabaseFile is the name of the SQLite database inside the data path.
const DatabaseFile = "books.db"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Pictures  PictureConfig
	Tags      TagConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the database (default: ~/BooksAPI/data).
	BasePath string
}

// DatabasePath returns the location of the SQLite database.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, DatabaseFile)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// BaseURL prefixes hypermedia references; empty yields relative ones.
	BaseURL        string
	AllowedOrigins []string
}

// PictureConfig holds cover picture processing configuration.
type PictureConfig struct {
	MinWidth      int   // Pictures larger than this are scaled down (default: 196)
	MinHeight     int   // (default: 196)
	Quality       int   // JPEG quality, 1-100 (default: 75)
	MaxUploadSize int64 // Upload limit in bytes (default: 10 MiB)
}

// TagConfig holds tag handling configuration.
type TagConfig struct {
	// RelaxedMatching matches tag references case-insensitively (default: false).
	RelaxedMatching bool
	// Seed inserts the default tags into an empty catalog (default: true).
	Seed bool
}

// RateLimitConfig bounds writes per client.
type RateLimitConfig struct {
	WritesPerMinute int // (default: 120)
	WriteBurst      int // (default: 30)
}

// LoadConfig loads configuration from the process's command line.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("books-api", flag.ContinueOnError)

	// Define command-line flags.
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory holding the database")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	baseURL := fs.String("base-url", "", "Base URL of hypermedia references")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: any)")

	// Picture flags
	pictureMinWidth := fs.String("picture-min-width", "", "Picture width threshold (default: 196)")
	pictureMinHeight := fs.String("picture-min-height", "", "Picture height threshold (default: 196)")
	pictureQuality := fs.String("picture-quality", "", "JPEG quality (default: 75)")
	maxUploadSize := fs.String("max-upload-size", "", "Maximum picture upload in bytes (default: 10485760)")

	// Tag flags
	relaxedTags := fs.String("relaxed-tag-matching", "", "Match tags case-insensitively (default: false)")
	seedTags := fs.String("seed-tags", "", "Seed default tags into an empty catalog (default: true)")

	// Rate limit flags
	writeRate := fs.String("write-rate-limit", "", "Writes per minute per client (default: 120)")
	writeBurst := fs.String("write-rate-burst", "", "Write burst per client (default: 30)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			BaseURL:        getConfigValue(*baseURL, "BOOKS_API_URI", ""),
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Pictures: PictureConfig{
			MinWidth:      getIntConfigValue(*pictureMinWidth, "PICTURE_MIN_WIDTH", 196),
			MinHeight:     getIntConfigValue(*pictureMinHeight, "PICTURE_MIN_HEIGHT", 196),
			Quality:       getIntConfigValue(*pictureQuality, "PICTURE_QUALITY", 75),
			MaxUploadSize: int64(getIntConfigValue(*maxUploadSize, "MAX_UPLOAD_SIZE", 10<<20)),
		},
		Tags: TagConfig{
			RelaxedMatching: getBoolConfigValue(*relaxedTags, "RELAXED_TAG_MATCHING", false),
			Seed:            getBoolConfigValue(*seedTags, "SEED_TAGS", true),
		},
		RateLimit: RateLimitConfig{
			WritesPerMinute: getIntConfigValue(*writeRate, "WRITE_RATE_LIMIT", 120),
			WriteBurst:      getIntConfigValue(*writeBurst, "WRITE_RATE_BURST", 30),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Pictures.MinWidth <= 0 || c.Pictures.MinHeight <= 0 {
		return fmt.Errorf("picture thresholds must be positive, got %dx%d", c.Pictures.MinWidth, c.Pictures.MinHeight)
	}
	if c.Pictures.Quality < 1 || c.Pictures.Quality > 100 {
		return fmt.Errorf("invalid picture quality: %d (must be 1-100)", c.Pictures.Quality)
	}
	if c.Pictures.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	if c.RateLimit.WritesPerMinute <= 0 || c.RateLimit.WriteBurst <= 0 {
		return errors.New("write rate limit and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "BooksAPI", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
