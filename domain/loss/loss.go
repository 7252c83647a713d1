package loss

import (
	"strconv"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

// Record is one downtime loss entry in canonical shape.
type Record struct {
	Date       string  `json:"date"` // YYYY-MM-DD when parseable, raw text otherwise
	Week       string  `json:"week"`
	Department string  `json:"department"`
	Reason     string  `json:"reason"`
	Minutes    float64 `json:"loss_minutes"`
}

// OAERecord is one weekly efficiency trend point.
type OAERecord struct {
	Week   string  `json:"week"`
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
}

// DefaultTarget is used when an uploaded trend table carries no target column.
const DefaultTarget = 85.0

// Canonical column roles resolved by the normalizer.
const (
	roleMinutes    = "Loss Minutes"
	roleDepartment = "Department"
	roleReason     = "Reason"
	roleWeek       = "Week"
	roleDate       = "Date"
)

// roleMatchers is the heuristic column-name dispatch table. Order matters
// twice over: roles are resolved top to bottom, and within a role the first
// header containing any listed substring wins. Changing either order changes
// which column a messy upload binds to.
var roleMatchers = []struct {
	role       string
	substrings []string
}{
	{roleMinutes, []string{"loss", "minute", "downtime"}},
	{roleDepartment, []string{"dept", "department", "area"}},
	{roleReason, []string{"reason", "cause", "desc"}},
	{roleWeek, []string{"week"}},
	{roleDate, []string{"date"}},
}

// resolveRoles maps canonical roles to column indexes. An exact (trimmed,
// case-insensitive) header match binds before any substring heuristic, and a
// column claimed by one role is not offered to later roles.
func resolveRoles(headers []string) map[string]int {
	roles := map[string]int{}
	claimed := map[int]bool{}

	bind := func(role string, idx int) {
		roles[role] = idx
		claimed[idx] = true
	}

	for _, m := range roleMatchers {
		if _, idx, ok := lo.FindIndexOf(headers, func(h string) bool {
			return strings.EqualFold(strings.TrimSpace(h), m.role)
		}); ok && !claimed[idx] {
			bind(m.role, idx)
		}
	}
	for _, m := range roleMatchers {
		if _, done := roles[m.role]; done {
			continue
		}
		for idx, h := range headers {
			if claimed[idx] {
				continue
			}
			lower := strings.ToLower(h)
			if lo.SomeBy(m.substrings, func(s string) bool { return strings.Contains(lower, s) }) {
				bind(m.role, idx)
				break
			}
		}
	}
	return roles
}

// dateLayouts accepted for loss dates and action target dates.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "02/01/2006"}

// ParseDate parses a date cell against the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeLosses coerces an arbitrary loss table into canonical records.
// It never fails: unmatched columns degrade to "Unknown" department/reason,
// zero minutes, and the unresolved week marker, so a malformed upload still
// renders.
func NormalizeLosses(headers []string, rows [][]string) []Record {
	roles := resolveRoles(headers)

	cell := func(row []string, role string) (string, bool) {
		idx, ok := roles[role]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{Department: "Unknown", Reason: "Unknown"}

		if v, ok := cell(row, roleDepartment); ok && v != "" {
			rec.Department = v
		}
		if v, ok := cell(row, roleReason); ok && v != "" {
			rec.Reason = v
		}
		if v, ok := cell(row, roleMinutes); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				rec.Minutes = f
			}
		}

		rawDate, _ := cell(row, roleDate)
		parsedDate, dateOK := ParseDate(rawDate)
		if dateOK {
			rec.Date = parsedDate.Format("2006-01-02")
		} else {
			rec.Date = rawDate
		}

		switch week, ok := cell(row, roleWeek); {
		case ok && week != "":
			rec.Week = week
		case dateOK:
			rec.Week = WeekKey(parsedDate)
		default:
			rec.Week = UnresolvedWeek
		}

		records = append(records, rec)
	}
	return records
}

// NormalizeOAE coerces a trend table: first column is the week, second the
// actual value. A column literally named "Target OAE" supplies the target;
// failing that the third column does; failing that every row gets
// defaultTarget.
func NormalizeOAE(headers []string, rows [][]string, defaultTarget float64) []OAERecord {
	if len(headers) < 2 {
		return nil
	}

	_, targetIdx, hasTarget := lo.FindIndexOf(headers, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), "Target OAE")
	})
	if !hasTarget && len(headers) > 2 {
		targetIdx, hasTarget = 2, true
	}

	num := func(row []string, idx int) float64 {
		if idx >= len(row) {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return 0
		}
		return f
	}

	records := make([]OAERecord, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		rec := OAERecord{
			Week:   strings.TrimSpace(row[0]),
			Actual: num(row, 1),
			Target: defaultTarget,
		}
		if hasTarget {
			rec.Target = num(row, targetIdx)
		}
		records = append(records, rec)
	}
	return records
}

// FilterWeek returns the records belonging to one week.
func FilterWeek(records []Record, week string) []Record {
	return lo.Filter(records, func(r Record, _ int) bool { return r.Week == week })
}

// FilterWeeks returns the records belonging to any of the given weeks.
func FilterWeeks(records []Record, weeks []string) []Record {
	set := lo.SliceToMap(weeks, func(w string) (string, struct{}) { return w, struct{}{} })
	return lo.Filter(records, func(r Record, _ int) bool {
		_, ok := set[r.Week]
		return ok
	})
}

// LatestDay selects the records for the most recent date string present.
// Raw date strings compare lexically, which is chronological for the
// normalized YYYY-MM-DD form. When no row carries a date, the last n rows
// stand in so the daily view still shows something.
func LatestDay(records []Record, fallbackTail int) []Record {
	dates := lo.FilterMap(records, func(r Record, _ int) (string, bool) { return r.Date, r.Date != "" })
	if len(dates) == 0 {
		if len(records) > fallbackTail {
			return records[len(records)-fallbackTail:]
		}
		return records
	}
	last := lo.Max(dates)
	return lo.Filter(records, func(r Record, _ int) bool { return r.Date == last })
}
