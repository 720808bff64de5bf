package config

// Config represents the full run configuration
type Config struct {
	LogLevel string `yaml:"log_level"`
	Model    Model  `yaml:"model"`
	Solver   Solver `yaml:"solver"`
	Sweep    *Sweep `yaml:"sweep,omitempty"`
}

// Model holds the biological and economic parameters of one run.
// Both reefs share the same parameter values; a value copy of this
// struct is what a sweep trial mutates with its drawn parameters.
type Model struct {
	InitialStock           float64 `yaml:"initial_stock"`
	CarryingCapacity       float64 `yaml:"carrying_capacity"`
	GrowthRate             float64 `yaml:"growth_rate"`
	HarvestConstant        float64 `yaml:"harvest_constant"`
	MigrationConstant      float64 `yaml:"migration_constant"`
	EffortCap              float64 `yaml:"effort_cap"`
	Periods      int     `yaml:"periods"`
	DiscountRate float64 `yaml:"discount_rate"`
	// Zero means unset and is defaulted to 1 during parsing; an
	// explicit zero is invalid anyway (validation requires > 0).
	UtilityScalingConstant float64 `yaml:"utility_scaling_constant"`
}

// Solver holds optimizer tuning parameters. Zero values mean unset and
// are replaced with defaults during parsing, so an explicit zero never
// reaches validation; all four fields must end up positive.
type Solver struct {
	RelativeTolerance float64 `yaml:"relative_tolerance"`
	MaxEvaluations    int     `yaml:"max_evaluations"`
	OuterIterations   int     `yaml:"outer_iterations"`
	InitialPenalty    float64 `yaml:"initial_penalty"`
}

// Sweep configures the Monte Carlo uncertainty sweep
type Sweep struct {
	Trials      int             `yaml:"trials"`
	Seed        uint64          `yaml:"seed"`
	Parallelism int             `yaml:"parallelism"`
	Draws       map[string]Draw `yaml:"draws,omitempty"`
}

// Draw specifies the per-trial distribution of one model parameter.
// Parameters without a draw entry keep their base value in every trial.
type Draw struct {
	Dist   string  `yaml:"dist"` // normal, lognormal, or uniform
	Mean   float64 `yaml:"mean,omitempty"`
	Stddev float64 `yaml:"stddev,omitempty"`
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
}

// Distribution names recognized in a Draw
const (
	DistNormal    = "normal"
	DistLogNormal = "lognormal"
	DistUniform   = "uniform"
)

// DrawableParams lists the model parameters a sweep may draw.
// Periods is deliberately absent: the horizon length is structural,
// not an uncertain scalar.
var DrawableParams = []string{
	"initial_stock",
	"carrying_capacity",
	"growth_rate",
	"harvest_constant",
	"migration_constant",
	"effort_cap",
	"discount_rate",
	"utility_scaling_constant",
}
