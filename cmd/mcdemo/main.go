package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gomonte/app"
	"gomonte/domain/core"
	"gomonte/domain/dist"
	"gomonte/domain/model"
	"gomonte/internal"
	"gomonte/internal/config"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "mcdemo",
		Short: "Demo driver for the gomonte simulation engine",
	}
	rootCmd.AddCommand(newSimulateCmd(), newChainsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func engineConfig(cmd *cobra.Command) (app.MonteCarloConfig, error) {
	appCfg, err := config.Load()
	if err != nil {
		return app.MonteCarloConfig{}, err
	}
	sim := appCfg.Simulation

	cfg := app.NewConfig(sim.Iterations)
	cfg.BurnIn = sim.BurnIn
	cfg.Thinning = sim.Thinning
	cfg.Seed = sim.Seed
	cfg.Timeout = sim.Timeout
	cfg.Chains = sim.Chains
	cfg.ConvergenceThreshold = sim.ConvergenceThreshold

	if v, _ := cmd.Flags().GetInt("iterations"); v > 0 {
		cfg.Iterations = v
	}
	if v, _ := cmd.Flags().GetInt64("seed"); v != 0 {
		cfg.Seed = v
	}
	return cfg, nil
}

// demoModel mixes distribution families so the output exercises most of
// the sampler set.
func demoModel() (*model.StochasticModel, error) {
	return model.NewStochasticModel([]model.Variable{
		{Name: core.VariableKey("revenue"), Spec: dist.LogNormal(10, 0.5)},
		{Name: core.VariableKey("demand"), Spec: dist.Poisson(42)},
		{Name: core.VariableKey("margin"), Spec: dist.BetaDist(4, 2)},
		{Name: core.VariableKey("lead_time"), Spec: dist.Triangular(2, 5, 14)},
	})
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the demo model once and print posterior summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := internal.DefaultLogger
			cfg, err := engineConfig(cmd)
			if err != nil {
				return err
			}
			m, err := demoModel()
			if err != nil {
				return err
			}

			engine := app.NewEngine(cfg)
			log.Info("simulating %d iterations (seed %d)", cfg.Iterations, engine.Seed())

			started := time.Now()
			result, err := engine.Simulate(context.Background(), m, func(p app.ProgressReport) {
				log.Debug("progress %.0f%% (%d samples kept)", p.Percentage, p.SamplesCollected)
			})
			if err != nil {
				return err
			}
			log.Info("done in %v: %d kept rows, ESS %d, R-hat %.3f",
				time.Since(started), result.Samples.Rows(),
				result.EffectiveSamples, result.Diagnostics.RHat)
			for _, w := range result.Warnings {
				log.Warn("%s", w)
			}

			summaries := app.SummarizeResult(result, 0.95)
			return printJSON(map[string]interface{}{
				"run_id":      result.RunID,
				"summaries":   summaries,
				"diagnostics": result.Diagnostics,
			})
		},
	}
	cmd.Flags().Int("iterations", 0, "override SIM_ITERATIONS")
	cmd.Flags().Int64("seed", 0, "override SIM_SEED")
	return cmd
}

func newChainsCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "Run multiple independent chains and print cross-chain R-hat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig(cmd)
			if err != nil {
				return err
			}
			m, err := demoModel()
			if err != nil {
				return err
			}
			result, err := app.RunChains(context.Background(), cfg, m, n)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"chains":    n,
				"r_hat":     result.RHat,
				"max_r_hat": result.MaxRHat,
			})
		},
	}
	cmd.Flags().IntVar(&n, "chains", 4, "number of independent chains")
	cmd.Flags().Int("iterations", 0, "override SIM_ITERATIONS")
	cmd.Flags().Int64("seed", 0, "override SIM_SEED")
	return cmd
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
