package calculate

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	lo "github.com/samber/lo"

	"ci-dashboard/connectors/config"
	ccsv "ci-dashboard/connectors/csv"
	"ci-dashboard/domain/loss"
	"ci-dashboard/domain/pareto"
	"ci-dashboard/domain/sixm"
)

// Run executes the offline pipeline: read the raw CSVs from the data
// directory, normalize them, and write the derived trend and Pareto views
// back as CSVs a chart frontend (or spreadsheet) can consume directly.
//
// Usage:
//
//	ci-dashboard calculate [-data ./data]
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	dataDir := fs.String("data", "", "directory containing raw CSV files (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	base := cfg.Data.Dir
	if *dataDir != "" {
		base = *dataDir
	}

	oaeTable, err := ccsv.ReadTableFile(filepath.Join(base, ccsv.OAEFile))
	if err != nil {
		return fmt.Errorf("calculate: read %s: %w", ccsv.OAEFile, err)
	}
	lossTable, err := ccsv.ReadTableFile(filepath.Join(base, ccsv.LossFile))
	if err != nil {
		return fmt.Errorf("calculate: read %s: %w", ccsv.LossFile, err)
	}

	oae := loss.NormalizeOAE(oaeTable.Headers, oaeTable.Rows, cfg.Dashboard.DefaultTargetOAE)
	records := loss.NormalizeLosses(lossTable.Headers, lossTable.Rows)

	latest := loss.LatestWeek(records)
	week := loss.FilterWeek(records, latest)
	month := loss.FilterWeeks(records, loss.LastWeeks(records, cfg.Dashboard.MonthlyWeeks))
	day := loss.LatestDay(records, cfg.Dashboard.DailyFallbackTail)

	outputs := map[string][]pareto.Row{
		"pareto_daily.csv":           pareto.ByDepartment(day),
		"pareto_week_department.csv": pareto.ByDepartment(week),
		"pareto_week_6m.csv": pareto.Aggregate(week, func(r loss.Record) string {
			return string(sixm.Classify(r.Reason))
		}),
		"pareto_month.csv": pareto.ByDepartment(month),
	}

	files := 0
	for name, rows := range outputs {
		if err := ccsv.WriteTableFile(filepath.Join(base, name), paretoTable(rows)); err != nil {
			return err
		}
		files++
	}

	level1 := outputs["pareto_week_department.csv"]
	drill := drilldownTable(week, pareto.SelectDrilldown(level1))
	if err := ccsv.WriteTableFile(filepath.Join(base, "pareto_week_drilldown.csv"), drill); err != nil {
		return err
	}
	files++

	if err := ccsv.WriteTableFile(filepath.Join(base, "oae_trend.csv"), ccsv.OAETable(loss.TrendTail(oae, cfg.Dashboard.TrendWeeks))); err != nil {
		return err
	}
	files++

	fmt.Fprintf(os.Stderr, "calculate.done records=%d week=%s files=%d\n", len(records), latest, files)
	return nil
}

func paretoTable(rows []pareto.Row) ccsv.Table {
	t := ccsv.Table{Headers: []string{"category", "loss_minutes", "pct", "cum_pct"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Category,
			strconv.FormatFloat(r.Minutes, 'f', -1, 64),
			strconv.FormatFloat(r.Pct, 'f', 2, 64),
			strconv.FormatFloat(r.CumPct, 'f', 2, 64),
		})
	}
	return t
}

// drilldownTable flattens the level-2 breakdown of each selected category
// into one table, category column first.
func drilldownTable(week []loss.Record, categories []string) ccsv.Table {
	t := ccsv.Table{Headers: []string{"category", "reason", "loss_minutes", "pct", "cum_pct"}}
	for _, cat := range categories {
		sub := lo.Filter(week, func(r loss.Record, _ int) bool { return r.Department == cat })
		for _, r := range pareto.ByReason(sub) {
			t.Rows = append(t.Rows, []string{
				cat,
				r.Category,
				strconv.FormatFloat(r.Minutes, 'f', -1, 64),
				strconv.FormatFloat(r.Pct, 'f', 2, 64),
				strconv.FormatFloat(r.CumPct, 'f', 2, 64),
			})
		}
	}
	return t
}

