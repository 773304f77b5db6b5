// Package config loads settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/padraicbc/kayaclock/models"
)

// DefaultGateCount is used when GATE_COUNT is not set.
const DefaultGateCount = 24

// Config holds all application configuration.
type Config struct {
	// Number of gates on the course; fixes the length of every run's
	// penalisation list.
	GateCount int

	Debug bool

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	// Only needed when provisioning the schema.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables, exiting on invalid values.
func Load() *Config {
	cfg, err := Read(newViper())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Read builds a Config from v, applying defaults first.
func Read(v *viper.Viper) (*Config, error) {
	v.SetDefault("GATE_COUNT", DefaultGateCount)
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_USER", "kayaclock")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "kayaclock")
	v.SetDefault("DB_SSLMODE", "disable")

	cfg := &Config{
		GateCount:   v.GetInt("GATE_COUNT"),
		Debug:       v.GetBool("DEBUG"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBUser:      v.GetString("DB_USER"),
		DBPass:      v.GetString("DB_PASS"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RaceConfig returns the course layout for building and decoding runs.
func (c *Config) RaceConfig() (models.RaceConfig, error) {
	return models.NewRaceConfig(c.GateCount)
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) validate() error {
	var err error
	if c.GateCount <= 0 {
		err = multierr.Append(err, fmt.Errorf("GATE_COUNT must be positive, got %d", c.GateCount))
	}
	if c.DatabaseURL == "" {
		if _, perr := strconv.Atoi(c.DBPort); perr != nil {
			err = multierr.Append(err, fmt.Errorf("DB_PORT must be a number, got %q", c.DBPort))
		}
	}
	return err
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}
