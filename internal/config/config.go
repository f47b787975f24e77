package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bridgesim/domain/reliability"
	"bridgesim/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Server     ServerConfig
	Log        LogConfig
}

// SimulationConfig holds defaults applied when a request leaves a field unset
type SimulationConfig struct {
	Trials        int
	Seed          int64
	HistogramBins int
	StressUnit    reliability.StressUnit
	SweepWorkers  int
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// LoadWithEnvFile loads the given .env files (if present) before reading the environment.
// A missing file is not an error; system environment variables still apply.
func LoadWithEnvFile(paths ...string) (*Config, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file %s", path)
		}
	}
	return Load()
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Simulation: *loadSimulationConfig(),
		Server:     *loadServerConfig(),
		Log:        LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		Trials:        getEnvIntOrDefault("SIM_TRIALS", 10000),
		Seed:          getEnvInt64OrDefault("SIM_SEED", 42),
		HistogramBins: getEnvIntOrDefault("SIM_HISTOGRAM_BINS", 30),
		StressUnit:    reliability.StressUnit(strings.ToLower(getEnvOrDefault("SIM_STRESS_UNIT", string(reliability.StressUnitPascal)))),
		SweepWorkers:  getEnvIntOrDefault("SIM_SWEEP_WORKERS", 4),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		ReadTimeout:  getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 2*time.Minute),
	}
}

func validateConfig(config *Config) error {
	if config.Simulation.Trials <= 0 {
		return errors.ConfigInvalid("SIM_TRIALS must be positive")
	}
	if config.Simulation.HistogramBins <= 0 {
		return errors.ConfigInvalid("SIM_HISTOGRAM_BINS must be positive")
	}
	if config.Simulation.SweepWorkers <= 0 {
		return errors.ConfigInvalid("SIM_SWEEP_WORKERS must be positive")
	}
	if _, err := config.Simulation.StressUnit.Scale(); err != nil {
		return errors.ConfigInvalid("SIM_STRESS_UNIT must be pa or mpa")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
