package loss

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UnresolvedWeek marks rows whose week could not be derived from any column.
// It sorts before every real week so it never displaces the "latest week" view.
const UnresolvedWeek = "W??-YYYY"

// WeekKey formats a date as W<week>-<year> using Sunday-start week numbering
// (strftime %U): week 00 covers the days before the year's first Sunday.
func WeekKey(t time.Time) string {
	yday := t.YearDay() - 1
	wday := int(t.Weekday())
	week := (yday + 7 - wday) / 7
	return fmt.Sprintf("W%02d-%d", week, t.Year())
}

// ParseWeekKey extracts (year, week) from a W<ww>-<yyyy> identifier.
// Anything unparseable (including UnresolvedWeek) returns (0, 0, false).
func ParseWeekKey(key string) (year int, week int, ok bool) {
	rest, found := strings.CutPrefix(key, "W")
	if !found {
		return 0, 0, false
	}
	wk, yr, found := strings.Cut(rest, "-")
	if !found {
		return 0, 0, false
	}
	week, err := strconv.Atoi(wk)
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(yr)
	if err != nil {
		return 0, 0, false
	}
	return year, week, true
}

// WeekLess orders week identifiers chronologically by (year, week) tuple.
// Zero-padding makes lexical order coincide with numeric order within a year,
// but not across year boundaries, so both parts are compared numerically.
// Unparseable keys sort first.
func WeekLess(a, b string) bool {
	ay, aw, aok := ParseWeekKey(a)
	by, bw, bok := ParseWeekKey(b)
	if aok != bok {
		return !aok
	}
	if ay != by {
		return ay < by
	}
	return aw < bw
}

// SortWeeks sorts week identifiers chronologically in place and returns them.
func SortWeeks(weeks []string) []string {
	sort.Slice(weeks, func(i, j int) bool { return WeekLess(weeks[i], weeks[j]) })
	return weeks
}

// LastWeeks returns the last n distinct weeks present in records, chronological.
func LastWeeks(records []Record, n int) []string {
	seen := map[string]struct{}{}
	var weeks []string
	for _, r := range records {
		if _, ok := seen[r.Week]; !ok {
			seen[r.Week] = struct{}{}
			weeks = append(weeks, r.Week)
		}
	}
	SortWeeks(weeks)
	if len(weeks) > n {
		weeks = weeks[len(weeks)-n:]
	}
	return weeks
}

// TrendTail orders trend points chronologically and keeps the last n.
func TrendTail(records []OAERecord, n int) []OAERecord {
	sorted := append([]OAERecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return WeekLess(sorted[i].Week, sorted[j].Week) })
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// LatestWeek returns the chronologically last week present in records, or
// UnresolvedWeek when there are none.
func LatestWeek(records []Record) string {
	latest := UnresolvedWeek
	first := true
	for _, r := range records {
		if first || WeekLess(latest, r.Week) {
			latest = r.Week
			first = false
		}
	}
	return latest
}
