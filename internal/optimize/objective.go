// Package optimize searches for the effort trajectories that maximize
// total discounted harvest utility, subject to box bounds on each
// effort value and a per-period joint-effort cap.
package optimize

import (
	"github.com/reefharvest/bioecon-core/internal/dynamics"
	"github.com/reefharvest/bioecon-core/pkg/config"
)

// infeasiblePenalty is returned by the objective when a candidate
// produces a period with non-positive scaled harvest. Large enough to
// dominate any attainable utility, finite so the direct search can
// still rank candidates instead of aborting.
const infeasiblePenalty = 1e9

// SplitEffort splits a flat decision vector of length 2T into the two
// per-reef effort trajectories (first T entries reef 1, rest reef 2)
func SplitEffort(flat []float64, periods int) (effort1, effort2 []float64) {
	return flat[:periods], flat[periods : 2*periods]
}

// Objective evaluates a flat effort vector: it runs the simulator and
// returns the negative total discounted utility (the solver minimizes).
// Deterministic and stateless; infeasible candidates get the penalty.
func Objective(flat []float64, m *config.Model) float64 {
	effort1, effort2 := SplitEffort(flat, m.Periods)
	rec, err := dynamics.Simulate(effort1, effort2, m)
	if err != nil {
		return infeasiblePenalty
	}
	if !rec.Feasible() {
		return infeasiblePenalty
	}
	return -rec.TotalUtility()
}

// Constraint returns the per-period inequality values
// effort1[t] + effort2[t] - effort_cap; an entry is satisfied when it
// is non-positive. The cap is enforced period by period, never on
// aggregate effort.
func Constraint(flat []float64, m *config.Model) []float64 {
	g := make([]float64, m.Periods)
	for t := 0; t < m.Periods; t++ {
		g[t] = flat[t] + flat[m.Periods+t] - m.EffortCap
	}
	return g
}
