package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	AppPort         string
	AppEnv          string
	LogLevel        string
	StorageDriver   string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBLogSQL        bool
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	DefaultLanguage string

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
	// Warnings lists values rejected in favour of defaults; main logs them.
	Warnings []string
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	loaded := godotenv.Load() == nil
	cfg := FromEnv()
	cfg.EnvFileLoaded = loaded
	return cfg
}

func FromEnv() *Config {
	l := &loader{}
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "task_user"),
		DBPassword:      getEnv("DB_PASSWORD", "task_pass"),
		DBName:          getEnv("DB_NAME", "task_db"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		DBLogSQL:        l.getBool("DB_LOG_SQL", false),
		RequestTimeout:  l.getDuration("REQUEST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: l.getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
	}
	cfg.Warnings = l.warnings
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

type loader struct {
	warnings []string
}

func (l *loader) warn(kind, key, value string) {
	l.warnings = append(l.warnings, fmt.Sprintf("invalid %s %s=%q, using default", kind, key, value))
}

func (l *loader) getBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		l.warn("boolean", key, value)
		return defaultVal
	}
	return parsed
}

func (l *loader) getDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		l.warn("duration", key, value)
		return defaultVal
	}
	return parsed
}
