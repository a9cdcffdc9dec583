package config

import (
	"os"
	"strconv"
	"time"

	"gomonte/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	LogLevel   string
}

// SimulationConfig holds default engine settings sourced from the
// environment. Zero values defer to the engine's own defaults.
type SimulationConfig struct {
	Iterations           int
	BurnIn               int
	Thinning             int
	Chains               int
	Seed                 int64
	Timeout              time.Duration
	ConvergenceThreshold float64
}

// Load reads configuration from SIM_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Simulation: SimulationConfig{
			Iterations: getEnvInt("SIM_ITERATIONS", 10000),
			BurnIn:     getEnvInt("SIM_BURN_IN", -1),
			Thinning:   getEnvInt("SIM_THINNING", 1),
			Chains:     getEnvInt("SIM_CHAINS", 1),
			Timeout:    time.Duration(getEnvInt("SIM_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid SIM_SEED %q", v)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("SIM_CONVERGENCE_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid SIM_CONVERGENCE_THRESHOLD %q", v)
		}
		cfg.Simulation.ConvergenceThreshold = t
	}

	if cfg.Simulation.Iterations < 1 {
		return nil, errors.Newf(errors.CodeInvalidParams, "SIM_ITERATIONS must be positive, got %d", cfg.Simulation.Iterations)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
