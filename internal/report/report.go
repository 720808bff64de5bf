// Package report shapes in-memory results for external consumers
// (plotting and analysis layers). It is the module's only output
// surface: JSON summaries and CSV time series.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/reefharvest/bioecon-core/pkg/models"
)

// Summary is the top-level export of one run or sweep
type Summary struct {
	Solution *models.Solution `json:"solution,omitempty"`
	Record   models.Record    `json:"record,omitempty"`
	Sweep    *SweepSummary    `json:"sweep,omitempty"`
}

// SweepSummary carries sweep aggregates without the per-trial records,
// which can dwarf the aggregate output for large N
type SweepSummary struct {
	Trials        int           `json:"trials"`
	Completed     int           `json:"completed"`
	Failed        int           `json:"failed"`
	MeanUtility   float64       `json:"mean_utility"`
	MeanObjective float64       `json:"mean_objective"`
	MeanRecord    models.Record `json:"mean_record"`
	TrialSeeds    []uint64      `json:"trial_seeds"`
}

// NewRunSummary builds the summary for a single optimization run
func NewRunSummary(sol *models.Solution, rec models.Record) *Summary {
	return &Summary{
		Solution: sol,
		Record:   rec,
	}
}

// NewSweepSummary builds the summary for a Monte Carlo sweep
func NewSweepSummary(res *models.SweepResult) *Summary {
	seeds := make([]uint64, 0, len(res.Trials))
	for _, trial := range res.Trials {
		seeds = append(seeds, trial.Seed)
	}
	return &Summary{
		Sweep: &SweepSummary{
			Trials:        len(res.Trials),
			Completed:     res.Completed,
			Failed:        res.Failed,
			MeanUtility:   res.MeanUtility,
			MeanObjective: res.MeanObjective,
			MeanRecord:    res.MeanRecord,
			TrialSeeds:    seeds,
		},
	}
}

// WriteJSON writes an indented JSON summary
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// csvHeader is the column layout of the time-series export
var csvHeader = []string{
	"period",
	"stock_reef1", "stock_reef2",
	"growth_reef1", "growth_reef2",
	"migration_reef1", "migration_reef2",
	"effort_reef1", "effort_reef2",
	"harvest_reef1", "harvest_reef2",
	"harvest_total", "utility",
}

// WriteRecordCSV writes the per-period record as CSV for plotting
// layers. Efforts may be nil (e.g. for a mean record, where per-trial
// efforts have no single trajectory); their columns are left empty.
func WriteRecordCSV(w io.Writer, rec models.Record, effort1, effort2 []float64) error {
	if effort1 != nil && len(effort1) != len(rec) {
		return fmt.Errorf("effort1 length %d does not match record length %d", len(effort1), len(rec))
	}
	if effort2 != nil && len(effort2) != len(rec) {
		return fmt.Errorf("effort2 length %d does not match record length %d", len(effort2), len(rec))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, p := range rec {
		e1, e2 := "", ""
		if effort1 != nil {
			e1 = formatFloat(effort1[i])
		}
		if effort2 != nil {
			e2 = formatFloat(effort2[i])
		}
		row := []string{
			strconv.Itoa(p.Period),
			formatFloat(p.Stock1), formatFloat(p.Stock2),
			formatFloat(p.Growth1), formatFloat(p.Growth2),
			formatFloat(p.Migration1), formatFloat(p.Migration2),
			e1, e2,
			formatFloat(p.Harvest1), formatFloat(p.Harvest2),
			formatFloat(p.HarvestTotal), formatFloat(p.Utility),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
