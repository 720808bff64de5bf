package optimize

import (
	"fmt"

	"github.com/reefharvest/bioecon-core/internal/dynamics"
	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/logger"
	"github.com/reefharvest/bioecon-core/pkg/models"
	"github.com/reefharvest/bioecon-core/pkg/utils"
)

// initialEffort is the starting value for every decision variable,
// clamped into bounds before the search begins.
const initialEffort = 1.0

// OptimizeModel runs the full search for one parameter set and
// re-simulates at the optimum to produce the reporting-grade record.
// A non-converged search still returns the best-found solution; only
// invalid inputs and solver setup failures produce an error.
func OptimizeModel(m *config.Model, tuning config.Solver) (*models.Solution, models.Record, error) {
	if m.Periods <= 0 {
		return nil, nil, fmt.Errorf("periods must be positive, got %d", m.Periods)
	}
	if m.CarryingCapacity <= 0 {
		return nil, nil, fmt.Errorf("carrying_capacity must be positive, got %f", m.CarryingCapacity)
	}
	if m.EffortCap < 0 {
		return nil, nil, fmt.Errorf("effort_cap cannot be negative, got %f", m.EffortCap)
	}

	dim := 2 * m.Periods
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	x0 := make([]float64, dim)
	for i := 0; i < dim; i++ {
		upper[i] = m.EffortCap
		x0[i] = utils.ClampFloat64(initialEffort, 0, m.EffortCap)
	}

	solver, err := NewAugLag(
		func(v []float64) float64 { return Objective(v, m) },
		func(v []float64) []float64 { return Constraint(v, m) },
		lower, upper, tuning,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to construct solver: %w", err)
	}

	res, err := solver.Minimize(x0)
	if err != nil {
		return nil, nil, fmt.Errorf("optimization failed: %w", err)
	}

	// Project any residual cap violation out of the accepted solution so
	// the per-period constraint holds exactly, not just within the
	// solver's tolerance.
	effort := projectToCap(res.X, m)

	effort1, effort2 := SplitEffort(effort, m.Periods)
	rec, err := dynamics.Simulate(effort1, effort2, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to simulate at optimum: %w", err)
	}

	sol := &models.Solution{
		Effort:       effort,
		Effort1:      append([]float64(nil), effort1...),
		Effort2:      append([]float64(nil), effort2...),
		Objective:    Objective(effort, m),
		Utility:      rec.TotalUtility(),
		Evaluations:  res.Evaluations,
		Converged:    res.Converged,
		Reason:       res.Reason,
		MaxViolation: maxViolation(Constraint(effort, m)),
	}

	logger.Info("optimization complete",
		"periods", m.Periods,
		"utility", sol.Utility,
		"evaluations", sol.Evaluations,
		"converged", sol.Converged,
		"reason", sol.Reason)

	return sol, rec, nil
}

// Optimize runs OptimizeModel for a validated configuration
func Optimize(cfg *config.Config) (*models.Solution, models.Record, error) {
	return OptimizeModel(&cfg.Model, cfg.Solver)
}

// projectToCap scales each period's effort pair down onto the joint cap
// when it overshoots. Scaling both reefs by the same factor keeps the
// solver's allocation between reefs intact.
func projectToCap(flat []float64, m *config.Model) []float64 {
	out := append([]float64(nil), flat...)
	for t := 0; t < m.Periods; t++ {
		joint := out[t] + out[m.Periods+t]
		if joint > m.EffortCap && joint > 0 {
			scale := m.EffortCap / joint
			out[t] *= scale
			out[m.Periods+t] *= scale
		}
	}
	return out
}
