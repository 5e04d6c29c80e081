package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-catalog/internal/infrastructure/database"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is populated from environment variables.
type Config struct {
	App         AppConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Transaction TransactionConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type StorageConfig struct {
	Driver     string // postgres, sqlite
	SQLitePath string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	TTL      time.Duration
}

// TransactionConfig controls the isolation level and the retry policy of
// catalog write transactions.
type TransactionConfig struct {
	Isolation   string
	MaxAttempts int
	RetryDelay  time.Duration
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", DriverPostgres),
			SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
		Transaction: TransactionConfig{
			Isolation:   getEnv("TX_ISOLATION", "read committed"),
			MaxAttempts: getEnvInt("TX_MAX_ATTEMPTS", 3),
			RetryDelay:  getEnvDuration("TX_RETRY_DELAY", 10*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the application cannot start without.
func (c *Config) Validate() error {
	return validation.Errors{
		"STORAGE_DRIVER": validation.Validate(c.Storage.Driver,
			validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		"SQLITE_PATH": validation.Validate(c.Storage.SQLitePath,
			validation.When(c.Storage.Driver == DriverSQLite, validation.Required)),
		"TX_ISOLATION": validation.Validate(c.Transaction.Isolation,
			validation.By(isolationLevel)),
		"TX_MAX_ATTEMPTS": validation.Validate(c.Transaction.MaxAttempts,
			validation.Required, validation.Min(1), validation.Max(10)),
		"APP_PORT": validation.Validate(c.App.Port, validation.Required),
	}.Filter()
}

func isolationLevel(value interface{}) error {
	s, _ := value.(string)
	_, err := database.ParseIsoLevel(s)
	return err
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
