package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reefharvest/bioecon-core/internal/dynamics"
	"github.com/reefharvest/bioecon-core/internal/optimize"
	"github.com/reefharvest/bioecon-core/internal/report"
	"github.com/reefharvest/bioecon-core/internal/sweep"
	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/logger"
	"github.com/reefharvest/bioecon-core/pkg/models"
)

var rootArgs struct {
	configPath string
	logLevel   string
	outputPath string
	csvPath    string
}

var rootCmd = &cobra.Command{
	Use:   "bioeconctl",
	Short: "Two-reef bioeconomic harvest simulator and optimizer",
	Long: "bioeconctl simulates two linked fish stocks under logistic growth, " +
		"density-dependent migration and harvest offtake, and optimizes " +
		"per-period fishing effort for discounted log-utility of total harvest.",
	SilenceUsage: true,
}

var simulateArgs struct {
	effort1 string
	effort2 string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulator at fixed effort trajectories",
	RunE:  runSimulate,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize effort trajectories for a single parameter set",
	RunE:  runOptimize,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the Monte Carlo uncertainty sweep",
	RunE:  runSweep,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.configPath, "config", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&rootArgs.outputPath, "output", "o", "", "write the JSON summary to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&rootArgs.csvPath, "csv", "", "also write the per-period time series as CSV to this file")

	simulateCmd.Flags().StringVar(&simulateArgs.effort1, "effort1", "", "reef 1 effort: comma-separated per-period values, or one value for all periods (default 0)")
	simulateCmd.Flags().StringVar(&simulateArgs.effort2, "effort2", "", "reef 2 effort: comma-separated per-period values, or one value for all periods (default 0)")

	rootCmd.AddCommand(simulateCmd, optimizeCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the logger
func loadConfig() (*config.Config, error) {
	if rootArgs.configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(rootArgs.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if rootArgs.logLevel != "" {
		level = rootArgs.logLevel
	}
	logger.SetDefault(logger.NewText(level, os.Stderr))

	return cfg, nil
}

func runSimulate(cmd *cobra.Command, argv []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	effort1, err := parseEffort(simulateArgs.effort1, cfg.Model.Periods)
	if err != nil {
		return fmt.Errorf("invalid --effort1: %w", err)
	}
	effort2, err := parseEffort(simulateArgs.effort2, cfg.Model.Periods)
	if err != nil {
		return fmt.Errorf("invalid --effort2: %w", err)
	}

	rec, err := dynamics.Simulate(effort1, effort2, &cfg.Model)
	if err != nil {
		return err
	}

	return writeOutputs(report.NewRunSummary(nil, rec), rec, effort1, effort2)
}

func runOptimize(cmd *cobra.Command, argv []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sol, rec, err := optimize.Optimize(cfg)
	if err != nil {
		return err
	}
	if !sol.Converged {
		logger.Warn("optimizer did not converge; best-found solution reported", "reason", sol.Reason)
	}

	return writeOutputs(report.NewRunSummary(sol, rec), rec, sol.Effort1, sol.Effort2)
}

func runSweep(cmd *cobra.Command, argv []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sweep == nil {
		return fmt.Errorf("config has no sweep section")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := sweep.NewStore()
	orchestrator := sweep.NewOrchestrator(store, cfg.Solver, cfg.Sweep.Parallelism)

	result, err := orchestrator.Run(ctx, cfg.Model, *cfg.Sweep)
	if err != nil {
		return err
	}

	return writeOutputs(report.NewSweepSummary(result), result.MeanRecord, nil, nil)
}

// writeOutputs writes the JSON summary and the optional CSV time series
func writeOutputs(summary *report.Summary, rec models.Record, effort1, effort2 []float64) error {
	out := os.Stdout
	if rootArgs.outputPath != "" {
		f, err := os.Create(rootArgs.outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteJSON(out, summary); err != nil {
		return err
	}

	if rootArgs.csvPath != "" {
		f, err := os.Create(rootArgs.csvPath)
		if err != nil {
			return fmt.Errorf("failed to create csv file: %w", err)
		}
		defer f.Close()
		if err := report.WriteRecordCSV(f, rec, effort1, effort2); err != nil {
			return err
		}
	}
	return nil
}

// parseEffort parses an effort flag: empty means zero effort, a single
// value is broadcast to all periods, otherwise one value per period
func parseEffort(s string, periods int) ([]float64, error) {
	out := make([]float64, periods)
	if s == "" {
		return out, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	if len(parts) != periods {
		return nil, fmt.Errorf("got %d values, want %d (one per period)", len(parts), periods)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
