package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/models"
)

func sweepTuning() config.Solver {
	return config.Solver{
		RelativeTolerance: 1e-3,
		MaxEvaluations:    600,
		OuterIterations:   5,
		InitialPenalty:    10.0,
	}
}

func TestOrchestratorDegenerateDraws(t *testing.T) {
	store := NewStore()
	orch := NewOrchestrator(store, sweepTuning(), 2)

	sw := config.Sweep{
		Trials:      3,
		Seed:        42,
		Parallelism: 2,
		Draws: map[string]config.Draw{
			"growth_rate": {Dist: config.DistNormal, Mean: 0.12, Stddev: 0},
		},
	}

	result, err := orch.Run(context.Background(), baseModel(), sw)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Completed != 3 || result.Failed != 0 {
		t.Fatalf("expected 3 completed and 0 failed, got %d and %d", result.Completed, result.Failed)
	}
	if len(result.MeanRecord) != 2 {
		t.Fatalf("expected mean record over 2 periods, got %d", len(result.MeanRecord))
	}

	// With a degenerate draw every trial sees the same parameters, so the
	// mean must match each trial's own record and utility.
	for _, trial := range result.Trials {
		if trial.Status != models.TrialStatusCompleted {
			t.Fatalf("trial %d: expected completed, got %s (%s)", trial.Index, trial.Status, trial.Error)
		}
		if trial.Params.GrowthRate != 0.12 {
			t.Fatalf("trial %d: expected drawn growth rate 0.12, got %f", trial.Index, trial.Params.GrowthRate)
		}
		if math.Abs(trial.Solution.Utility-result.MeanUtility) > 1e-9 {
			t.Fatalf("trial %d: utility %f differs from mean %f", trial.Index, trial.Solution.Utility, result.MeanUtility)
		}
		for i, p := range trial.Record {
			if math.Abs(p.Stock1-result.MeanRecord[i].Stock1) > 1e-9 {
				t.Fatalf("period %d: trial stock %f differs from mean %f", p.Period, p.Stock1, result.MeanRecord[i].Stock1)
			}
		}
	}
}

func TestOrchestratorParallelismInvariance(t *testing.T) {
	sw := config.Sweep{
		Trials: 4,
		Seed:   99,
		Draws: map[string]config.Draw{
			"growth_rate":   {Dist: config.DistNormal, Mean: 0.1, Stddev: 0.02},
			"initial_stock": {Dist: config.DistUniform, Min: 800, Max: 1200},
		},
	}

	run := func(parallelism int) *models.SweepResult {
		store := NewStore()
		orch := NewOrchestrator(store, sweepTuning(), parallelism)
		result, err := orch.Run(context.Background(), baseModel(), sw)
		if err != nil {
			t.Fatalf("Run with parallelism %d failed: %v", parallelism, err)
		}
		return result
	}

	serial := run(1)
	parallel := run(4)

	// Seeds are derived from the trial index before scheduling and
	// aggregation walks trials in index order, so results are identical
	// regardless of worker count.
	if serial.MeanUtility != parallel.MeanUtility {
		t.Fatalf("mean utility differs across parallelism: %f vs %f", serial.MeanUtility, parallel.MeanUtility)
	}
	if serial.MeanObjective != parallel.MeanObjective {
		t.Fatalf("mean objective differs across parallelism: %f vs %f", serial.MeanObjective, parallel.MeanObjective)
	}
	for i := range serial.MeanRecord {
		if serial.MeanRecord[i].Stock1 != parallel.MeanRecord[i].Stock1 {
			t.Fatalf("period %d: mean stock differs across parallelism", i+1)
		}
		if serial.MeanRecord[i].HarvestTotal != parallel.MeanRecord[i].HarvestTotal {
			t.Fatalf("period %d: mean harvest differs across parallelism", i+1)
		}
	}

	for i := range serial.Trials {
		if serial.Trials[i].Seed != parallel.Trials[i].Seed {
			t.Fatalf("trial %d: seeds differ across runs", i)
		}
		if serial.Trials[i].Params != parallel.Trials[i].Params {
			t.Fatalf("trial %d: drawn params differ across parallelism", i)
		}
	}
}

func TestOrchestratorZeroTrials(t *testing.T) {
	orch := NewOrchestrator(NewStore(), sweepTuning(), 1)
	if _, err := orch.Run(context.Background(), baseModel(), config.Sweep{Trials: 0}); err == nil {
		t.Fatal("expected error for zero trials")
	}
}

func TestOrchestratorAllTrialsFail(t *testing.T) {
	store := NewStore()
	orch := NewOrchestrator(store, sweepTuning(), 2)

	// A negative carrying capacity makes every trial's optimization fail.
	sw := config.Sweep{
		Trials: 2,
		Seed:   1,
		Draws: map[string]config.Draw{
			"carrying_capacity": {Dist: config.DistUniform, Min: -5, Max: -5},
		},
	}

	result, err := orch.Run(context.Background(), baseModel(), sw)
	if err == nil {
		t.Fatal("expected error when every trial fails")
	}
	if result == nil {
		t.Fatal("expected partial result alongside the error")
	}
	if result.Failed != 2 || result.Completed != 0 {
		t.Fatalf("expected 2 failed and 0 completed, got %d and %d", result.Failed, result.Completed)
	}
	for _, trial := range result.Trials {
		if trial.Status != models.TrialStatusFailed {
			t.Fatalf("trial %d: expected failed status, got %s", trial.Index, trial.Status)
		}
		if trial.Error == "" {
			t.Fatalf("trial %d: expected recorded error message", trial.Index)
		}
	}
}

func TestOrchestratorCanceledContext(t *testing.T) {
	orch := NewOrchestrator(NewStore(), sweepTuning(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := orch.Run(ctx, baseModel(), config.Sweep{Trials: 2, Seed: 1}); err == nil {
		t.Fatal("expected error when context is already canceled")
	}
}

func TestMeanRecord(t *testing.T) {
	if MeanRecord(nil) != nil {
		t.Fatal("expected nil mean for no records")
	}

	records := []models.Record{
		{{Period: 1, Stock1: 100, Stock2: 200, HarvestTotal: 10, Utility: 1}},
		{{Period: 1, Stock1: 300, Stock2: 400, HarvestTotal: 30, Utility: 3}},
	}

	mean := MeanRecord(records)
	if len(mean) != 1 {
		t.Fatalf("expected 1 period, got %d", len(mean))
	}
	if mean[0].Period != 1 {
		t.Fatalf("expected period numbering from 1, got %d", mean[0].Period)
	}
	if mean[0].Stock1 != 200 || mean[0].Stock2 != 300 {
		t.Fatalf("unexpected mean stocks: %f and %f", mean[0].Stock1, mean[0].Stock2)
	}
	if mean[0].HarvestTotal != 20 || mean[0].Utility != 2 {
		t.Fatalf("unexpected mean harvest %f or utility %f", mean[0].HarvestTotal, mean[0].Utility)
	}
}
