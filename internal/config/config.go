package config

import (
	"os"
	"strconv"
	"time"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	DBDriver    string
	SQLitePath  string
	DatabaseURL string
	TablePrefix string
	WatchDBFile bool // Re-run live queries when another process writes the SQLite file
	// Live queries
	LiveTickInterval time.Duration
	SSEKeepAlive     time.Duration
	MCPProbeTimeout  time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Storage
		DBDriver:    getEnv("DB_DRIVER", DriverSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath()),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		WatchDBFile: getEnv("WATCH_DB_FILE", "false") == "true",
		// Live queries
		LiveTickInterval: getDuration("LIVE_TICK_INTERVAL", 16*time.Millisecond),
		SSEKeepAlive:     getDuration("SSE_KEEPALIVE", 10*time.Second),
		MCPProbeTimeout:  getDuration("MCP_PROBE_TIMEOUT", 15*time.Second),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 5),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// defaultSQLitePath places the store under the user's config directory
func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "chatterhub.db"
	}
	return dir + string(os.PathSeparator) + "chatterhub" + string(os.PathSeparator) + "chatterhub.db"
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
		return ""
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
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	// Zero or negative intervals would disable coalescing and keepalives
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
