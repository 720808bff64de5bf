// Package dynamics implements the discrete-time two-reef population
// model: logistic growth, density-dependent migration toward carrying
// capacity, and effort-proportional harvest offtake.
package dynamics

import (
	"fmt"
	"math"

	"github.com/reefharvest/bioecon-core/pkg/config"
	"github.com/reefharvest/bioecon-core/pkg/models"
)

// Simulate runs the population model over the full horizon for fixed
// effort trajectories and returns the per-period record.
//
// Both reefs open period 1 at the model's initial stock. For t > 1 the
// opening stock is the previous period's stock plus its realized growth
// and migration minus its harvest; the stock is deliberately not clamped
// at zero, so over-harvesting shows up as a negative stock in the record.
// The returned record is owned by the caller; Simulate keeps no state.
func Simulate(effort1, effort2 []float64, m *config.Model) (models.Record, error) {
	if m.Periods <= 0 {
		return nil, fmt.Errorf("periods must be positive, got %d", m.Periods)
	}
	if len(effort1) != m.Periods || len(effort2) != m.Periods {
		return nil, fmt.Errorf("effort length mismatch: got %d and %d, want %d", len(effort1), len(effort2), m.Periods)
	}
	if m.CarryingCapacity <= 0 {
		return nil, fmt.Errorf("carrying_capacity must be positive, got %f", m.CarryingCapacity)
	}

	rec := make(models.Record, 0, m.Periods)
	for t := 1; t <= m.Periods; t++ {
		var s1, s2 float64
		if t == 1 {
			s1, s2 = m.InitialStock, m.InitialStock
		} else {
			prev := rec[len(rec)-1]
			s1 = prev.Stock1 + prev.Growth1 + prev.Migration1 - prev.Harvest1
			s2 = prev.Stock2 + prev.Growth2 + prev.Migration2 - prev.Harvest2
		}

		p := models.Period{
			Period:     t,
			Stock1:     s1,
			Stock2:     s2,
			Growth1:    m.GrowthRate * s1 * (1 - s1/m.CarryingCapacity),
			Growth2:    m.GrowthRate * s2 * (1 - s2/m.CarryingCapacity),
			Migration1: m.MigrationConstant * (m.CarryingCapacity - s1),
			Migration2: m.MigrationConstant * (m.CarryingCapacity - s2),
			Harvest1:   m.HarvestConstant * effort1[t-1] * s1,
			Harvest2:   m.HarvestConstant * effort2[t-1] * s2,
		}
		p.HarvestTotal = p.Harvest1 + p.Harvest2

		// The log term is only defined for positive scaled harvest; the
		// objective layer turns an infeasible period into a penalty.
		if scaled := m.UtilityScalingConstant * p.HarvestTotal; scaled > 0 {
			p.Utility = math.Pow(m.DiscountRate, float64(t-1)) * math.Log(scaled)
		} else {
			p.Infeasible = true
		}

		rec = append(rec, p)
	}

	return rec, nil
}
