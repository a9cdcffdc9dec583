package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Blank out anything the ambient environment may carry; Load treats
	// empty values as unset.
	for _, key := range []string{
		"SIM_ITERATIONS", "SIM_BURN_IN", "SIM_THINNING", "SIM_CHAINS",
		"SIM_TIMEOUT_SECONDS", "SIM_SEED", "SIM_CONVERGENCE_THRESHOLD", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Simulation.Iterations)
	assert.Equal(t, -1, cfg.Simulation.BurnIn)
	assert.Equal(t, 1, cfg.Simulation.Thinning)
	assert.Equal(t, 1, cfg.Simulation.Chains)
	assert.Equal(t, 60*time.Second, cfg.Simulation.Timeout)
	assert.Equal(t, int64(0), cfg.Simulation.Seed)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SIM_ITERATIONS", "500")
	t.Setenv("SIM_BURN_IN", "50")
	t.Setenv("SIM_CHAINS", "4")
	t.Setenv("SIM_TIMEOUT_SECONDS", "5")
	t.Setenv("SIM_SEED", "12345")
	t.Setenv("SIM_CONVERGENCE_THRESHOLD", "0.001")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Simulation.Iterations)
	assert.Equal(t, 50, cfg.Simulation.BurnIn)
	assert.Equal(t, 4, cfg.Simulation.Chains)
	assert.Equal(t, 5*time.Second, cfg.Simulation.Timeout)
	assert.Equal(t, int64(12345), cfg.Simulation.Seed)
	assert.Equal(t, 0.001, cfg.Simulation.ConvergenceThreshold)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("non-numeric seed", func(t *testing.T) {
		t.Setenv("SIM_SEED", "not-a-number")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-numeric threshold", func(t *testing.T) {
		t.Setenv("SIM_CONVERGENCE_THRESHOLD", "much")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive iterations", func(t *testing.T) {
		t.Setenv("SIM_ITERATIONS", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
