package models

import (
	"time"

	"github.com/reefharvest/bioecon-core/pkg/config"
)

// Period holds the simulated quantities of one time step.
// Reef indices are fixed: 1 and 2 refer to the two linked stocks.
type Period struct {
	Period       int     `json:"period"`
	Stock1       float64 `json:"stock_reef1"`
	Stock2       float64 `json:"stock_reef2"`
	Growth1      float64 `json:"growth_reef1"`
	Growth2      float64 `json:"growth_reef2"`
	Migration1   float64 `json:"migration_reef1"`
	Migration2   float64 `json:"migration_reef2"`
	Harvest1     float64 `json:"harvest_reef1"`
	Harvest2     float64 `json:"harvest_reef2"`
	HarvestTotal float64 `json:"harvest_total"`
	// Utility is the discounted log-utility of the scaled total harvest.
	// Zero with Infeasible set when the log argument is not positive.
	Utility    float64 `json:"utility"`
	Infeasible bool    `json:"infeasible,omitempty"`
}

// Record is the full per-period simulation output, ordered by period.
// A record is produced fresh by each simulator invocation and is never
// mutated after being returned.
type Record []Period

// TotalUtility sums the discounted utility over all periods
func (r Record) TotalUtility() float64 {
	total := 0.0
	for _, p := range r {
		total += p.Utility
	}
	return total
}

// Feasible reports whether every period had positive scaled harvest
func (r Record) Feasible() bool {
	for _, p := range r {
		if p.Infeasible {
			return false
		}
	}
	return true
}

// Solution is the outcome of one constrained optimization run
type Solution struct {
	// Effort is the flat decision vector of length 2*periods
	// (first half reef 1, second half reef 2).
	Effort  []float64 `json:"effort"`
	Effort1 []float64 `json:"effort_reef1"`
	Effort2 []float64 `json:"effort_reef2"`
	// Objective is the minimized value: negative total discounted utility.
	Objective    float64 `json:"objective"`
	Utility      float64 `json:"utility"`
	Evaluations  int     `json:"evaluations"`
	Converged    bool    `json:"converged"`
	Reason       string  `json:"reason,omitempty"`
	MaxViolation float64 `json:"max_violation"`
}

// TrialStatus represents the status of a sweep trial
type TrialStatus string

const (
	TrialStatusPending   TrialStatus = "pending"
	TrialStatusRunning   TrialStatus = "running"
	TrialStatusCompleted TrialStatus = "completed"
	TrialStatusFailed    TrialStatus = "failed"
)

// Trial is one independent optimize-and-simulate run of a sweep,
// carrying its drawn parameters and its result once completed
type Trial struct {
	ID        string       `json:"id"`
	Index     int          `json:"index"`
	Seed      uint64       `json:"seed"`
	Status    TrialStatus  `json:"status"`
	Params    config.Model `json:"params"`
	Solution  *Solution    `json:"solution,omitempty"`
	Record    Record       `json:"record,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	// StartedAt and EndedAt are nil until the matching transition
	// happens, so pending trials serialize without timestamp noise.
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// SweepResult aggregates a full Monte Carlo sweep
type SweepResult struct {
	Trials []*Trial `json:"trials"`
	// MeanRecord is the elementwise average of completed trial records,
	// descriptive output only.
	MeanRecord    Record        `json:"mean_record,omitempty"`
	MeanUtility   float64       `json:"mean_utility"`
	MeanObjective float64       `json:"mean_objective"`
	Completed     int           `json:"completed"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration"`
}
