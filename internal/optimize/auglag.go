package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	gopt "gonum.org/v1/gonum/optimize"

	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/logger"
	"github.com/reefharvest/bioecon-core/pkg/utils"
)

// AugLag is an augmented-Lagrangian outer loop wrapped around gonum's
// Nelder-Mead direct search. Box bounds are handled by clamping
// candidates into range before evaluation; inequality constraints are
// absorbed into the augmented objective with per-constraint multipliers.
type AugLag struct {
	objective       func([]float64) float64
	constraint      func([]float64) []float64
	lower           []float64
	upper           []float64
	relTol          float64
	maxEvaluations  int
	outerIterations int
	initialPenalty  float64

	evaluations int
	history     []OuterStep
}

// OuterStep records one outer iteration of the augmented-Lagrangian loop
type OuterStep struct {
	Iteration    int
	Objective    float64
	MaxViolation float64
	StepSize     float64
	Penalty      float64
}

// Result contains the final solver outcome
type Result struct {
	X               []float64
	Objective       float64
	MaxViolation    float64
	Evaluations     int
	OuterIterations int
	History         []OuterStep
	Converged       bool
	Reason          string
}

// NewAugLag creates a new augmented-Lagrangian solver. The objective
// and constraint callbacks must be deterministic and stateless; lower
// and upper are elementwise box bounds on the decision vector.
func NewAugLag(objective func([]float64) float64, constraint func([]float64) []float64, lower, upper []float64, tuning config.Solver) (*AugLag, error) {
	if objective == nil {
		return nil, fmt.Errorf("objective function is required")
	}
	if constraint == nil {
		return nil, fmt.Errorf("constraint function is required")
	}
	if len(lower) != len(upper) {
		return nil, fmt.Errorf("bounds length mismatch: %d vs %d", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, fmt.Errorf("bound %d: lower %f exceeds upper %f", i, lower[i], upper[i])
		}
	}

	relTol := tuning.RelativeTolerance
	if relTol <= 0 {
		relTol = 1e-4
	}
	maxEval := tuning.MaxEvaluations
	if maxEval <= 0 {
		maxEval = 20000
	}
	outer := tuning.OuterIterations
	if outer <= 0 {
		outer = 20
	}
	mu := tuning.InitialPenalty
	if mu <= 0 {
		mu = 10.0
	}

	return &AugLag{
		objective:       objective,
		constraint:      constraint,
		lower:           lower,
		upper:           upper,
		relTol:          relTol,
		maxEvaluations:  maxEval,
		outerIterations: outer,
		initialPenalty:  mu,
		history:         make([]OuterStep, 0),
	}, nil
}

// Minimize runs the solver from the given starting point. Exhausting
// the evaluation budget or the outer iteration limit is not an error:
// the best point found so far is returned with Converged false.
func (a *AugLag) Minimize(x0 []float64) (*Result, error) {
	if len(x0) != len(a.lower) {
		return nil, fmt.Errorf("starting point length %d does not match bounds length %d", len(x0), len(a.lower))
	}
	if len(x0) == 0 {
		return nil, fmt.Errorf("starting point is empty")
	}

	a.evaluations = 0
	a.history = a.history[:0]

	x := a.clamped(x0)
	lambda := make([]float64, len(a.constraint(x)))
	penalty := a.initialPenalty
	prevViolation := math.Inf(1)

	for outer := 1; outer <= a.outerIterations; outer++ {
		remaining := a.maxEvaluations - a.evaluations
		// Nelder-Mead needs at least a full initial simplex.
		if remaining < len(x)+2 {
			return a.buildResult(x, false, "evaluation budget exhausted"), nil
		}

		augmented := func(v []float64) float64 {
			a.evaluations++
			c := a.clamped(v)
			f := a.objective(c)
			for i, g := range a.constraint(c) {
				f += multiplierPenalty(g, lambda[i], penalty)
			}
			return f
		}

		problem := gopt.Problem{Func: augmented}
		settings := &gopt.Settings{
			FuncEvaluations: remaining,
			Converger: &gopt.FunctionConverge{
				Relative:   a.relTol,
				Absolute:   a.relTol * 1e-3,
				Iterations: 50,
			},
		}

		res, err := gopt.Minimize(problem, x, settings, &gopt.NelderMead{})
		if err != nil {
			if res == nil || res.X == nil {
				return nil, fmt.Errorf("inner solve failed at outer iteration %d: %w", outer, err)
			}
			// Budget-style terminations still carry a usable point.
			logger.Warn("inner solve ended early", "outer_iteration", outer, "error", err)
		}

		next := a.clamped(res.X)
		step := floats.Distance(next, x, 2) / (1 + floats.Norm(x, 2))
		x = next

		g := a.constraint(x)
		violation := maxViolation(g)
		a.evaluations++
		objective := a.objective(x)

		a.history = append(a.history, OuterStep{
			Iteration:    outer,
			Objective:    objective,
			MaxViolation: violation,
			StepSize:     step,
			Penalty:      penalty,
		})

		logger.Debug("outer iteration complete",
			"iteration", outer,
			"objective", objective,
			"max_violation", violation,
			"step", step,
			"evaluations", a.evaluations)

		if violation <= a.relTol && step <= a.relTol {
			return a.buildResult(x, true, fmt.Sprintf("relative step %g within tolerance after %d outer iterations", step, outer)), nil
		}

		for i := range lambda {
			lambda[i] = math.Max(0, lambda[i]+penalty*g[i])
		}
		// Grow the penalty only while violations stall.
		if violation > a.relTol && violation > 0.25*prevViolation {
			penalty *= 10
		}
		prevViolation = violation
	}

	return a.buildResult(x, false, "outer iteration limit reached"), nil
}

// Evaluations returns the number of objective evaluations consumed so far
func (a *AugLag) Evaluations() int {
	return a.evaluations
}

// buildResult constructs the solver result for the final point
func (a *AugLag) buildResult(x []float64, converged bool, reason string) *Result {
	history := make([]OuterStep, len(a.history))
	copy(history, a.history)

	return &Result{
		X:               a.clamped(x),
		Objective:       a.objective(x),
		MaxViolation:    maxViolation(a.constraint(x)),
		Evaluations:     a.evaluations,
		OuterIterations: len(a.history),
		History:         history,
		Converged:       converged,
		Reason:          reason,
	}
}

// clamped returns a copy of v with every element clamped into bounds
func (a *AugLag) clamped(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = utils.ClampFloat64(v[i], a.lower[i], a.upper[i])
	}
	return out
}

// multiplierPenalty is the augmented-Lagrangian term for one inequality
// constraint g <= 0 with multiplier lambda and penalty weight mu
func multiplierPenalty(g, lambda, mu float64) float64 {
	t := lambda + mu*g
	if t > 0 {
		return (t*t - lambda*lambda) / (2 * mu)
	}
	return -lambda * lambda / (2 * mu)
}

// maxViolation returns the largest positive constraint value, 0 if feasible
func maxViolation(g []float64) float64 {
	v := 0.0
	for _, gi := range g {
		if gi > v {
			v = gi
		}
	}
	return v
}
