package web

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	lo "github.com/samber/lo"

	ccsv "ci-dashboard/connectors/csv"
	"ci-dashboard/domain/action"
	"ci-dashboard/domain/loss"
	"ci-dashboard/domain/pareto"
	"ci-dashboard/domain/sixm"
)

// Grouping modes for the weekly views.
const (
	groupDepartment = "department"
	group6M         = "6m"
)

// Upload table roles resolved by header sniffing.
const (
	roleOAE    = "oae"
	roleLosses = "losses"
)

func registerRoutes(e *echo.Echo, s *Store) {
	e.GET("/api/oae", s.handleOAE)
	e.GET("/api/pareto/daily", s.handleDaily)
	e.GET("/api/pareto/weekly", s.handleWeekly)
	e.GET("/api/pareto/weekly/drilldown", s.handleDrilldown)
	e.GET("/api/pareto/monthly", s.handleMonthly)
	e.GET("/api/suggestions", s.handleSuggestions)
	e.POST("/api/losses", s.handleAddLoss)
	e.POST("/api/upload", s.handleUpload)
	e.GET("/api/actions", s.handleListActions)
	e.POST("/api/actions", s.handleAddAction)
	e.POST("/api/actions/:id/status", s.handleUpdateStatus)
	e.GET("/api/actions/export", s.handleExportActions)
	e.POST("/api/actions/import", s.handleImportActions)
	e.GET("/api/alerts", s.handleAlerts)
	e.GET("/api/fivewhys", s.handleListFiveWhys)
	e.POST("/api/fivewhys", s.handleAddFiveWhy)
}

func (s *Store) handleOAE(c echo.Context) error {
	return c.JSON(http.StatusOK, loss.TrendTail(s.OAE(), s.cfg.Dashboard.TrendWeeks))
}

func (s *Store) handleDaily(c echo.Context) error {
	day := loss.LatestDay(s.Losses(), s.cfg.Dashboard.DailyFallbackTail)
	return c.JSON(http.StatusOK, map[string]any{
		"rows": pareto.ByDepartment(day),
	})
}

// groupKey returns the level-1 grouping function for a mode.
func groupKey(group string) func(loss.Record) string {
	if group == group6M {
		return func(r loss.Record) string { return string(sixm.Classify(r.Reason)) }
	}
	return func(r loss.Record) string { return r.Department }
}

func (s *Store) latestWeekRecords() (string, []loss.Record) {
	records := s.Losses()
	week := loss.LatestWeek(records)
	return week, loss.FilterWeek(records, week)
}

func (s *Store) handleWeekly(c echo.Context) error {
	group := c.QueryParam("group")
	if group != group6M {
		group = groupDepartment
	}
	week, records := s.latestWeekRecords()
	return c.JSON(http.StatusOK, map[string]any{
		"week":  week,
		"group": group,
		"rows":  pareto.Aggregate(records, groupKey(group)),
	})
}

// drilldownEntry is one level-2 breakdown plus the canned countermeasures for
// its heaviest reason.
type drilldownEntry struct {
	Category    string       `json:"category"`
	Rows        []pareto.Row `json:"rows"`
	TopReason   string       `json:"top_reason,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

func (s *Store) handleDrilldown(c echo.Context) error {
	group := c.QueryParam("group")
	if group != group6M {
		group = groupDepartment
	}
	week, records := s.latestWeekRecords()
	key := groupKey(group)

	level1 := pareto.Aggregate(records, key)
	entries := lo.Map(pareto.SelectDrilldown(level1), func(cat string, _ int) drilldownEntry {
		sub := lo.Filter(records, func(r loss.Record, _ int) bool { return key(r) == cat })
		rows := pareto.ByReason(sub)
		entry := drilldownEntry{Category: cat, Rows: rows}
		if len(rows) > 0 {
			entry.TopReason = rows[0].Category
			entry.Suggestions = sixm.SuggestActions(rows[0].Category)
		}
		return entry
	})
	return c.JSON(http.StatusOK, map[string]any{
		"week":       week,
		"group":      group,
		"categories": entries,
	})
}

// monthlySummary is the auto-suggest block of the monthly rollup.
type monthlySummary struct {
	TopDepartment string  `json:"top_department"`
	LossMinutes   float64 `json:"loss_minutes"`
	Pct           float64 `json:"pct"`
	Focus         string  `json:"focus"`
}

func (s *Store) handleMonthly(c echo.Context) error {
	records := s.Losses()
	weeks := loss.LastWeeks(records, s.cfg.Dashboard.MonthlyWeeks)
	rows := pareto.ByDepartment(loss.FilterWeeks(records, weeks))

	resp := map[string]any{"weeks": weeks, "rows": rows}
	if len(rows) > 0 {
		resp["summary"] = monthlySummary{
			TopDepartment: rows[0].Category,
			LossMinutes:   rows[0].Minutes,
			Pct:           rows[0].Pct,
			Focus:         "Perform 5-Why and implement permanent actions for top reasons.",
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Store) handleSuggestions(c echo.Context) error {
	reason := c.QueryParam("reason")
	return c.JSON(http.StatusOK, map[string]any{
		"reason":      reason,
		"category":    sixm.Classify(reason),
		"suggestions": sixm.SuggestActions(reason),
	})
}

// lossEntry is the ad-hoc loss entry payload.
type lossEntry struct {
	Date       string  `json:"date"`
	Department string  `json:"department"`
	Reason     string  `json:"reason"`
	Minutes    float64 `json:"loss_minutes"`
}

func (s *Store) handleAddLoss(c echo.Context) error {
	var in lossEntry
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid payload"})
	}
	rec := loss.Record{
		Date:       in.Date,
		Week:       loss.UnresolvedWeek,
		Department: in.Department,
		Reason:     in.Reason,
		Minutes:    in.Minutes,
	}
	if rec.Department == "" {
		rec.Department = "Unknown"
	}
	if rec.Reason == "" {
		rec.Reason = "Unknown"
	}
	if t, ok := loss.ParseDate(in.Date); ok {
		rec.Date = t.Format("2006-01-02")
		rec.Week = loss.WeekKey(t)
	}
	s.AddLoss(rec)
	return c.JSON(http.StatusCreated, rec)
}

func (s *Store) handleListActions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Actions())
}

func (s *Store) handleAddAction(c echo.Context) error {
	var in action.Item
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid payload"})
	}
	in.ID = ""
	return c.JSON(http.StatusCreated, s.AddAction(in))
}

func (s *Store) handleUpdateStatus(c echo.Context) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&in); err != nil || in.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "status required"})
	}
	if !s.UpdateStatus(c.Param("id"), in.Status) {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "unknown action id"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Store) handleExportActions(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="action_tracker.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return ccsv.WriteActions(c.Response(), s.Actions())
}

func (s *Store) handleImportActions(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "unreadable file"})
	}
	defer f.Close()
	items, err := ccsv.ReadActions(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "malformed CSV"})
	}
	s.ImportActions(items)
	return c.JSON(http.StatusOK, map[string]any{"imported": len(items)})
}

func (s *Store) handleAlerts(c echo.Context) error {
	alerts := s.Alerts()
	if alerts == nil {
		alerts = []action.Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (s *Store) handleListFiveWhys(c echo.Context) error {
	return c.JSON(http.StatusOK, s.FiveWhys())
}

func (s *Store) handleAddFiveWhy(c echo.Context) error {
	var in action.FiveWhy
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid payload"})
	}
	s.AddFiveWhy(in)
	return c.JSON(http.StatusCreated, in)
}

// handleUpload accepts a multipart "workbook": any number of CSV files whose
// roles are sniffed from their headers the same way sheet roles are. When
// nothing in the upload is recognizable the bundled sample dataset is loaded
// instead of failing the render.
func (s *Store) handleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "multipart form required"})
	}

	var oae []loss.OAERecord
	var losses []loss.Record
	for _, files := range form.File {
		for _, fh := range files {
			t, ok := readUploadTable(fh)
			if !ok {
				continue
			}
			switch sniffRole(t) {
			case roleOAE:
				oae = loss.NormalizeOAE(t.Headers, t.Rows, s.cfg.Dashboard.DefaultTargetOAE)
			case roleLosses:
				losses = loss.NormalizeLosses(t.Headers, t.Rows)
			}
		}
	}

	if oae == nil && losses == nil {
		s.ReplaceData(ccsv.SampleOAE(), ccsv.SampleLosses())
		return c.JSON(http.StatusOK, map[string]any{
			"fallback": true,
			"message":  "Uploaded file not recognized; falling back to sample data.",
		})
	}
	s.ReplaceData(oae, losses)
	return c.JSON(http.StatusOK, map[string]any{
		"fallback":  false,
		"oae_rows":  len(oae),
		"loss_rows": len(losses),
	})
}

func readUploadTable(fh *multipart.FileHeader) (ccsv.Table, bool) {
	f, err := fh.Open()
	if err != nil {
		return ccsv.Table{}, false
	}
	defer f.Close()
	t, err := ccsv.ReadTable(f)
	if err != nil || t.Empty() {
		return ccsv.Table{}, false
	}
	return t, true
}

// sniffRole decides whether a table looks like the efficiency trend or the
// loss log, from its header names alone. Unrecognizable tables map to "".
func sniffRole(t ccsv.Table) string {
	cols := strings.ToLower(strings.Join(t.Headers, " "))
	if len(t.Headers) >= 2 && (strings.Contains(cols, "oae") || strings.Contains(cols, "oee") || strings.Contains(cols, "target")) {
		return roleOAE
	}
	for _, k := range []string{"reason", "loss", "minutes", "downtime", "duration", "department"} {
		if strings.Contains(cols, k) {
			return roleLosses
		}
	}
	return ""
}
