// Package config reads service settings from the environment.
// A .env file, when present, is loaded by the commands before Load is called.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"noor-service/internal/heading"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port        string
	LogLevel    string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	SeedPath    string
	ORSAPIKey   string
	Compass     CompassConfig
}

// CompassConfig tunes the heading filter and sample pacing.
type CompassConfig struct {
	Gain           float64
	SampleInterval time.Duration
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, v, err)
	}
	return f, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration: %w", key, v, err)
	}
	return d, nil
}

// Load assembles the Config from environment variables, reporting every
// invalid value at once.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		LogLevel:    Get("LOG_LEVEL", "info"),
		DBDriver:    strings.ToLower(Get("DB_DRIVER", DriverSQLite)),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisURL:    Get("REDIS_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/places.json"),
		ORSAPIKey:   Get("ORS_API_KEY", ""),
	}

	var errs, err error
	cfg.Compass.Gain, err = GetFloat("COMPASS_GAIN", heading.DefaultGain)
	errs = multierr.Append(errs, err)
	cfg.Compass.SampleInterval, err = GetDuration("COMPASS_SAMPLE_INTERVAL", heading.DefaultSampleInterval)
	errs = multierr.Append(errs, err)

	errs = multierr.Append(errs, cfg.Validate())
	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs error
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = multierr.Append(errs, errors.New("config: DB_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = multierr.Append(errs, errors.New("config: DATABASE_URL is required for postgres"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.Compass.Gain <= 0 || c.Compass.Gain > 1 {
		errs = multierr.Append(errs, fmt.Errorf("config: COMPASS_GAIN %v must be in (0, 1]", c.Compass.Gain))
	}
	if c.Compass.SampleInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: COMPASS_SAMPLE_INTERVAL %v must be positive", c.Compass.SampleInterval))
	}
	return errs
}
