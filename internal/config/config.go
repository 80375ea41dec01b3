package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends understood by the dataset store
const (
	StoreBackendFile  = "file"
	StoreBackendMySQL = "mysql"
)

// Config holds all configuration for our application
type Config struct {
	Port         string
	Origins      []string
	Environment  string
	LogLevel     string
	DatasetsDir  string
	StoreBackend string
	Database     DatabaseConfig
	Redis        RedisConfig
	Gemini       GeminiConfig
	Tools        ToolsConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds the optional redis used for cross-process dataset locks.
// An empty Addr means locks stay in-process.
type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
	LockWait time.Duration
}

// GeminiConfig holds Google Gemini settings for document analysis and research
type GeminiConfig struct {
	APIKey        string
	DocumentModel string
	AgentModel    string
}

// ToolsConfig protects the agent tool routes
type ToolsConfig struct {
	JWTSecret            string
	JWTExpirationMinutes int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medcompanion"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	lockTTL, err := strconv.Atoi(getEnv("LOCK_TTL_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL_SECONDS: %w", err)
	}

	lockWait, err := strconv.Atoi(getEnv("LOCK_WAIT_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_WAIT_SECONDS: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("TOOLS_JWT_EXPIRATION_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOOLS_JWT_EXPIRATION_MINUTES: %w", err)
	}

	backend := strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile))
	if backend != StoreBackendFile && backend != StoreBackendMySQL {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: expected %s or %s", backend, StoreBackendFile, StoreBackendMySQL)
	}

	return &Config{
		Port:         getEnv("PORT", "8001"),
		Origins:      splitList(getEnv("ORIGIN", "*")),
		Environment:  getEnv("NODE_ENV", getEnv("ENVIRONMENT", "development")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatasetsDir:  getEnv("DATASETS_DIR", "datasets"),
		StoreBackend: backend,
		Database:     dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			LockTTL:  time.Duration(lockTTL) * time.Second,
			LockWait: time.Duration(lockWait) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:        getEnv("GOOGLE_API_KEY", ""),
			DocumentModel: getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			AgentModel:    getEnv("AGENT_MODEL", "gemini-2.5-flash"),
		},
		Tools: ToolsConfig{
			JWTSecret:            getEnv("TOOLS_JWT_SECRET", ""),
			JWTExpirationMinutes: jwtExpMinutes,
		},
	}, nil
}

// AllowsAllOrigins reports whether CORS should be fully permissive.
func (c *Config) AllowsAllOrigins() bool {
	for _, o := range c.Origins {
		if o == "*" {
			return true
		}
	}
	return len(c.Origins) == 0
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
