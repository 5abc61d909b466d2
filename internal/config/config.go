package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	APIURL      string // Base URL of the ScholarVault REST API
	Home        string // Local state directory (credentials, cache, logs)
	// Snapshot cache: "" = sqlite file under Home, "off" = disabled,
	// postgres://... = pgx pool
	CacheDatabaseURL string
	TablePrefix      string
	JWKSURL          string // Optional; enables signature verification of session tokens
	HTTPTimeout      time.Duration
	UploadTimeout    time.Duration
	// Browse server
	Port        string
	CORSOrigins string
	// Logging
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:      env,
		APIURL:           strings.TrimRight(getEnv("SCHOLARVAULT_API_URL", "http://localhost:3000"), "/"),
		Home:             getEnv("SCHOLARVAULT_HOME", defaultHome()),
		CacheDatabaseURL: getEnv("CACHE_DATABASE_URL", ""),
		TablePrefix:      getTablePrefix(env),
		JWKSURL:          getEnv("JWKS_URL", ""),
		HTTPTimeout:      getDuration("HTTP_TIMEOUT", 30*time.Second),
		UploadTimeout:    getDuration("UPLOAD_TIMEOUT", 5*time.Minute),
		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogMaxFiles:      getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// CredentialsPath is where the session token is persisted between runs
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Home, "credentials.yaml")
}

// CachePath is the sqlite snapshot file used when no cache URL is configured
func (c *Config) CachePath() string {
	return filepath.Join(c.Home, "library.db")
}

// LogDir holds the CLI's rotating log files
func (c *Config) LogDir() string {
	return filepath.Join(c.Home, "logs")
}

// CacheDisabled reports whether the snapshot cache was switched off
func (c *Config) CacheDisabled() bool {
	return c.CacheDatabaseURL == "off"
}

// UsesPostgresCache reports whether the snapshot cache lives in PostgreSQL
func (c *Config) UsesPostgresCache() bool {
	return strings.HasPrefix(c.CacheDatabaseURL, "postgres://") ||
		strings.HasPrefix(c.CacheDatabaseURL, "postgresql://")
}

// defaultHome returns $XDG_CONFIG_HOME/scholarvault or ~/.config/scholarvault
func defaultHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scholarvault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scholarvault"
	}
	return filepath.Join(home, ".config", "scholarvault")
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
