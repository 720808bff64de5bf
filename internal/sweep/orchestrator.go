package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reefharvest/bioecon-core/internal/optimize"
	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/logger"
	"github.com/reefharvest/bioecon-core/pkg/models"
	"github.com/reefharvest/bioecon-core/pkg/utils"
)

// Orchestrator runs the trials of one Monte Carlo sweep. Trials are
// independent: each starts from the same fixed initial guess with its
// own parameter draw, and no state is shared or warm-started between
// them, so running them in parallel cannot change any result.
type Orchestrator struct {
	store       *Store
	tuning      config.Solver
	parallelism int
}

// NewOrchestrator creates a sweep orchestrator backed by the given store
func NewOrchestrator(store *Store, tuning config.Solver, parallelism int) *Orchestrator {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Orchestrator{
		store:       store,
		tuning:      tuning,
		parallelism: parallelism,
	}
}

// Run draws parameters for every trial, executes the full
// optimize-then-simulate pipeline per trial on a bounded worker pool,
// and aggregates completed records into an elementwise mean.
// Trial seeds are derived from the sweep seed and trial index before
// any scheduling happens, keeping draws independent of parallelism.
func (o *Orchestrator) Run(ctx context.Context, base config.Model, sw config.Sweep) (*models.SweepResult, error) {
	if sw.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", sw.Trials)
	}

	start := time.Now()
	drawer := NewDrawer(base, sw.Draws)

	trials := make([]*models.Trial, sw.Trials)
	for i := 0; i < sw.Trials; i++ {
		seed := sw.Seed + uint64(i)
		params, err := drawer.Draw(seed)
		if err != nil {
			return nil, fmt.Errorf("failed to draw parameters for trial %d: %w", i, err)
		}
		trials[i] = o.store.Create(i, seed, params)
	}

	semaphore := make(chan struct{}, o.parallelism)
	var wg sync.WaitGroup

	for _, trial := range trials {
		wg.Add(1)
		go func(trial *models.Trial) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				o.markFailed(trial.ID, err)
				return
			}

			if err := o.store.SetStatus(trial.ID, models.TrialStatusRunning, ""); err != nil {
				logger.Error("failed to mark trial running", "trial_id", trial.ID, "error", err)
				return
			}

			sol, rec, err := optimize.OptimizeModel(&trial.Params, o.tuning)
			if err != nil {
				o.markFailed(trial.ID, err)
				return
			}

			if err := o.store.SetResult(trial.ID, sol, rec); err != nil {
				logger.Error("failed to record trial result", "trial_id", trial.ID, "error", err)
				return
			}
			if err := o.store.SetStatus(trial.ID, models.TrialStatusCompleted, ""); err != nil {
				logger.Error("failed to mark trial completed", "trial_id", trial.ID, "error", err)
				return
			}

			logger.Info("trial completed",
				"trial_id", trial.ID,
				"index", trial.Index,
				"utility", sol.Utility,
				"converged", sol.Converged)
		}(trial)
	}

	wg.Wait()

	result := &models.SweepResult{
		Trials:   trials,
		Duration: time.Since(start),
	}

	records := make([]models.Record, 0, len(trials))
	utilities := make([]float64, 0, len(trials))
	objectives := make([]float64, 0, len(trials))
	for _, trial := range trials {
		switch trial.Status {
		case models.TrialStatusCompleted:
			result.Completed++
			records = append(records, trial.Record)
			utilities = append(utilities, trial.Solution.Utility)
			objectives = append(objectives, trial.Solution.Objective)
		case models.TrialStatusFailed:
			result.Failed++
		}
	}

	if result.Completed == 0 {
		return result, fmt.Errorf("all %d trials failed", sw.Trials)
	}

	result.MeanRecord = MeanRecord(records)
	result.MeanUtility = utils.Mean(utilities)
	result.MeanObjective = utils.Mean(objectives)

	logger.Info("sweep complete",
		"trials", sw.Trials,
		"completed", result.Completed,
		"failed", result.Failed,
		"mean_utility", result.MeanUtility,
		"duration", result.Duration)

	return result, nil
}

// markFailed records a trial failure without interrupting other trials
func (o *Orchestrator) markFailed(trialID string, cause error) {
	logger.Warn("trial failed", "trial_id", trialID, "error", cause)
	if err := o.store.SetStatus(trialID, models.TrialStatusFailed, cause.Error()); err != nil {
		logger.Error("failed to mark trial failed", "trial_id", trialID, "error", err)
	}
}

// MeanRecord folds the records into an elementwise sum over fixed-size
// period arrays and divides once at the end. All records must have the
// same length; the mean carries no utility-domain flags.
func MeanRecord(records []models.Record) models.Record {
	if len(records) == 0 {
		return nil
	}

	periods := len(records[0])
	mean := make(models.Record, periods)
	for t := 0; t < periods; t++ {
		mean[t].Period = t + 1
	}

	for _, rec := range records {
		for t := 0; t < periods && t < len(rec); t++ {
			mean[t].Stock1 += rec[t].Stock1
			mean[t].Stock2 += rec[t].Stock2
			mean[t].Growth1 += rec[t].Growth1
			mean[t].Growth2 += rec[t].Growth2
			mean[t].Migration1 += rec[t].Migration1
			mean[t].Migration2 += rec[t].Migration2
			mean[t].Harvest1 += rec[t].Harvest1
			mean[t].Harvest2 += rec[t].Harvest2
			mean[t].HarvestTotal += rec[t].HarvestTotal
			mean[t].Utility += rec[t].Utility
		}
	}

	n := float64(len(records))
	for t := range mean {
		mean[t].Stock1 /= n
		mean[t].Stock2 /= n
		mean[t].Growth1 /= n
		mean[t].Growth2 /= n
		mean[t].Migration1 /= n
		mean[t].Migration2 /= n
		mean[t].Harvest1 /= n
		mean[t].Harvest2 /= n
		mean[t].HarvestTotal /= n
		mean[t].Utility /= n
	}
	return mean
}
