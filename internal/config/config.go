package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	LogDevelopment  bool
	Database        Database
}

// Database selects the store's connection target.
type Database struct {
	Driver      string
	Host        string
	Port        string
	Username    string
	Password    string
	Name        string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (Config, error) {
	port, err := getEnvAsInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	development, err := getEnvAsBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return Config{}, err
	}
	migrate, err := getEnvAsBool("DB_AUTO_MIGRATE", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:            port,
		ShutdownTimeout: shutdown,
		LogDevelopment:  development,
		Database: Database{
			Driver:      getEnv("DB_DRIVER", DriverPostgres),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			Username:    os.Getenv("DB_USERNAME"),
			Password:    os.Getenv("DB_PASSWORD"),
			Name:        getEnv("DB_DATABASE", "todos"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("DB_SQLITE_PATH", "todos.db"),
			AutoMigrate: migrate,
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return c.Database.Validate()
}

func (d Database) Validate() error {
	switch d.Driver {
	case DriverPostgres:
		if d.Host == "" || d.Name == "" {
			return fmt.Errorf("DB_HOST and DB_DATABASE must be set for the %s driver", d.Driver)
		}
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH must be set for the %s driver", d.Driver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", d.Driver, DriverPostgres, DriverSQLite)
	}
	return nil
}

// DSN renders the connection string for the selected driver.
func (d Database) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.Username, d.Password, d.Name, d.Port, d.SSLMode)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, v)
	}
	return i, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %q", key, v)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %q", key, v)
	}
	return d, nil
}
