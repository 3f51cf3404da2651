package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yukikurage/column-task-api/internal/constants"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported session stores.
const (
	SessionStoreRedis  = "redis"
	SessionStoreCookie = "cookie"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBPath           string
	DBLogLevel       string
	SessionStore     string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	ServerAddr       string
	AuthUsername     string
	AuthPasswordHash string
	AuthPassword     string
	OpenAIAPIKey     string
	MaxTreeDepth     int
}

func Load() *Config {
	return &Config{
		DBDriver:         getEnv("DB_DRIVER", DriverMySQL),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "taskuser"),
		DBPassword:       getEnv("DB_PASSWORD", "taskpassword"),
		DBName:           getEnv("DB_NAME", "column_tasks"),
		DBPath:           getEnv("DB_PATH", "data/column_tasks.db"),
		DBLogLevel:       getEnv("DB_LOG_LEVEL", "warn"),
		SessionStore:     getEnv("SESSION_STORE", SessionStoreRedis),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		AuthUsername:     getEnv("AUTH_USERNAME", "admin"),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		AuthPassword:     getEnv("AUTH_PASSWORD", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		MaxTreeDepth:     getEnvInt("MAX_TREE_DEPTH", constants.DefaultMaxTreeDepth),
	}
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreCookie:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	if c.AuthUsername == "" {
		return fmt.Errorf("AUTH_USERNAME must not be empty")
	}
	if c.MaxTreeDepth < 1 {
		return fmt.Errorf("MAX_TREE_DEPTH must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost,
			c.DBPort,
			c.DBUser,
			c.DBPassword,
			c.DBName,
		)
	case DriverSQLite:
		return c.DBPath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser,
			c.DBPassword,
			c.DBHost,
			c.DBPort,
			c.DBName,
		)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
