// Package pareto implements the ranked cumulative-percentage breakdown used
// at every drill-down level of the dashboard, plus the 80% drill-down rule.
package pareto

import (
	"math"
	"sort"

	lo "github.com/samber/lo"

	"ci-dashboard/domain/loss"
)

// Row is one ranked line of a Pareto breakdown.
type Row struct {
	Category string  `json:"category"`
	Minutes  float64 `json:"loss_minutes"`
	Pct      float64 `json:"pct"`
	CumPct   float64 `json:"cum_pct"`
}

// DrilldownCutoff is the cumulative-percentage threshold for Level-2 focus.
const DrilldownCutoff = 80.0

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate groups records by key, sums loss minutes per group, and ranks the
// groups descending. Pct is rounded to 2 decimals per row and CumPct is the
// running sum of those rounded values (re-rounded at each step), so the final
// row lands on 100.00 only within rounding drift. Ties on minutes break by
// category name ascending to keep repeated renders stable.
// Empty input yields an empty result.
func Aggregate(records []loss.Record, key func(loss.Record) string) []Row {
	if len(records) == 0 {
		return nil
	}

	sums := map[string]float64{}
	var order []string
	for _, r := range records {
		k := key(r)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += r.Minutes
	}

	sort.Slice(order, func(i, j int) bool {
		if sums[order[i]] != sums[order[j]] {
			return sums[order[i]] > sums[order[j]]
		}
		return order[i] < order[j]
	})

	total := lo.Sum(lo.Values(sums))
	if total == 0 {
		// All-zero minutes: rank alphabetically with zero percentages rather
		// than dividing by zero.
		return lo.Map(order, func(k string, _ int) Row { return Row{Category: k} })
	}

	rows := make([]Row, 0, len(order))
	cum := 0.0
	for _, k := range order {
		pct := round2(sums[k] / total * 100)
		cum = round2(cum + pct)
		rows = append(rows, Row{Category: k, Minutes: sums[k], Pct: pct, CumPct: cum})
	}
	return rows
}

// ByDepartment aggregates level-1 by department.
func ByDepartment(records []loss.Record) []Row {
	return Aggregate(records, func(r loss.Record) string { return r.Department })
}

// ByReason aggregates level-2 by root reason.
func ByReason(records []loss.Record) []Row {
	return Aggregate(records, func(r loss.Record) string { return r.Reason })
}

// SelectDrilldown picks the level-1 categories that warrant a level-2 view:
// every category whose cumulative percentage is within the cutoff. When a
// single cause dominates and nothing clears the cutoff, the top two ranks are
// drilled into instead, so a non-empty level-1 never yields an empty
// selection.
func SelectDrilldown(level1 []Row) []string {
	selected := lo.FilterMap(level1, func(r Row, _ int) (string, bool) {
		return r.Category, r.CumPct <= DrilldownCutoff
	})
	if len(selected) == 0 {
		top := level1
		if len(top) > 2 {
			top = top[:2]
		}
		selected = lo.Map(top, func(r Row, _ int) string { return r.Category })
	}
	return selected
}
