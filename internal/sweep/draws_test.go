package sweep

import (
	"math"
	"testing"

	"github.com/reefharvest/bioecon-core/pkg/config"
)

func baseModel() config.Model {
	return config.Model{
		InitialStock:           1000.0,
		CarryingCapacity:       2000.0,
		GrowthRate:             0.1,
		HarvestConstant:        0.05,
		MigrationConstant:      0.01,
		EffortCap:              15.0,
		Periods:                2,
		DiscountRate:           0.95,
		UtilityScalingConstant: 1.0,
	}
}

func TestDrawerSeedDeterminism(t *testing.T) {
	drawer := NewDrawer(baseModel(), map[string]config.Draw{
		"growth_rate":       {Dist: config.DistNormal, Mean: 0.1, Stddev: 0.02},
		"carrying_capacity": {Dist: config.DistLogNormal, Mean: 7.6, Stddev: 0.1},
		"initial_stock":     {Dist: config.DistUniform, Min: 500, Max: 1500},
	})

	first, err := drawer.Draw(42)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	second, err := drawer.Draw(42)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if first != second {
		t.Fatalf("same seed produced different draws: %+v vs %+v", first, second)
	}

	other, err := drawer.Draw(43)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if other == first {
		t.Fatal("different seeds produced identical draws")
	}

	// Undrawn parameters keep their base values.
	if first.HarvestConstant != 0.05 || first.Periods != 2 {
		t.Fatalf("expected undrawn parameters untouched, got %+v", first)
	}
}

func TestDrawerDegenerateDistributions(t *testing.T) {
	drawer := NewDrawer(baseModel(), map[string]config.Draw{
		"growth_rate":       {Dist: config.DistNormal, Mean: 0.12, Stddev: 0},
		"carrying_capacity": {Dist: config.DistLogNormal, Mean: 7.6, Stddev: 0},
		"effort_cap":        {Dist: config.DistUniform, Min: 8, Max: 8},
	})

	m, err := drawer.Draw(7)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if m.GrowthRate != 0.12 {
		t.Errorf("expected degenerate normal to return mean 0.12, got %f", m.GrowthRate)
	}
	// For a lognormal the mean parameter lives in log space, so the
	// degenerate value is exp(7.6), not 7.6.
	if m.CarryingCapacity != math.Exp(7.6) {
		t.Errorf("expected degenerate lognormal to return exp(7.6) = %f, got %f", math.Exp(7.6), m.CarryingCapacity)
	}
	if m.EffortCap != 8 {
		t.Errorf("expected degenerate uniform to return 8, got %f", m.EffortCap)
	}
}

func TestDrawerLogNormalZeroSigmaLimit(t *testing.T) {
	exact := NewDrawer(baseModel(), map[string]config.Draw{
		"carrying_capacity": {Dist: config.DistLogNormal, Mean: 7.6, Stddev: 0},
	})
	near := NewDrawer(baseModel(), map[string]config.Draw{
		"carrying_capacity": {Dist: config.DistLogNormal, Mean: 7.6, Stddev: 1e-12},
	})

	me, err := exact.Draw(5)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	mn, err := near.Draw(5)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	// The zero-sigma value must be continuous with vanishing sigma: a
	// draw at sigma 1e-12 sits within a hair of exp(7.6) ~ 1998, and so
	// must the exact zero-sigma shortcut.
	if math.Abs(me.CarryingCapacity-math.Exp(7.6)) > 1e-9 {
		t.Fatalf("zero-sigma lognormal returned %f, want exp(7.6) = %f", me.CarryingCapacity, math.Exp(7.6))
	}
	if math.Abs(mn.CarryingCapacity-me.CarryingCapacity) > 1e-6*me.CarryingCapacity {
		t.Fatalf("sigma 1e-12 draw %f is discontinuous with zero-sigma value %f", mn.CarryingCapacity, me.CarryingCapacity)
	}
}

func TestDrawerNoDraws(t *testing.T) {
	base := baseModel()
	drawer := NewDrawer(base, nil)

	m, err := drawer.Draw(1)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if m != base {
		t.Fatalf("expected base model unchanged, got %+v", m)
	}
}

func TestDrawerInvalidDist(t *testing.T) {
	drawer := NewDrawer(baseModel(), map[string]config.Draw{
		"growth_rate": {Dist: "cauchy", Mean: 0.1, Stddev: 0.02},
	})
	if _, err := drawer.Draw(1); err == nil {
		t.Fatal("expected error for invalid distribution")
	}
}

func TestAssignCoversDrawableParams(t *testing.T) {
	// Every advertised drawable parameter must be assignable.
	for _, name := range config.DrawableParams {
		m := baseModel()
		if err := assign(&m, name, 123.0); err != nil {
			t.Errorf("assign(%q) failed: %v", name, err)
		}
		if m == baseModel() {
			t.Errorf("assign(%q) did not change the model", name)
		}
	}

	m := baseModel()
	if err := assign(&m, "periods", 5); err == nil {
		t.Error("expected error for non-drawable parameter")
	}
}
