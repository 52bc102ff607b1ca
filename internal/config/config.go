// Package config reads Stockwarp settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Database  database.Options
	SecretKey string
	Port      int
	LogLevel  string
	LogPretty bool
	Debug     bool
}

// Load reads an optional .env file and then the environment.
//
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	driver, err := database.ParseDriver(os.Getenv("DB_DRIVER"))

	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: database.Options{
			Driver:   driver,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", defaultPort(driver)),
			Name:     getEnv("DB_NAME", "stockwarp"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		SecretKey: os.Getenv("SECRET_KEY"),
		Port:      getEnvAsInt("PORT", 8000),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Debug:     getEnvAsBool("DEBUG", false),
	}

	return cfg, nil
}

// RequireSecret checks the session secret needed by the web server is set.
func (c *Config) RequireSecret() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}

	return nil
}

// Address is the address the web server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func defaultPort(driver database.Driver) string {
	if driver == database.Postgres {
		return "5432"
	}

	return "9000"
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}

	return defaultValue
}
