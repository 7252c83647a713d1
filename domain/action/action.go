// Package action tracks corrective actions against downtime causes and
// derives due-soon / overdue alerts from their target dates.
package action

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lo "github.com/samber/lo"

	"ci-dashboard/domain/loss"
	"ci-dashboard/domain/pareto"
)

// Action types.
const (
	TypeTemporary = "Temporary"
	TypePermanent = "Permanent"
)

// Action statuses.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Item is one corrective action in the session tracker.
type Item struct {
	ID         string `json:"id"`
	Department string `json:"department"`
	Reason     string `json:"reason"`
	Owner      string `json:"owner"`
	Target     string `json:"target"` // YYYY-MM-DD
	Type       string `json:"type"`
	Status     string `json:"status"`
}

// Alert kinds.
const (
	KindDueSoon = "due_soon"
	KindOverdue = "overdue"
)

// Alert is a derived notification; recomputed on every evaluation pass,
// never stored.
type Alert struct {
	Kind     string `json:"type"`
	Message  string `json:"message"`
	Escalate bool   `json:"escalate,omitempty"`
}

// Evaluation thresholds (days).
const (
	DueSoonWindow    = 2
	EscalateAfter    = 1
	DefaultDueOffset = 7
	evaluationWindow = 20 // only the first N actions are examined per pass
)

// TargetDate parses an item's target date, defaulting an unparseable value to
// today + DefaultDueOffset so one bad row never blocks the alert view.
func (i Item) TargetDate(today time.Time) time.Time {
	if t, ok := loss.ParseDate(i.Target); ok {
		return t
	}
	return today.AddDate(0, 0, DefaultDueOffset)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysLeft is the whole-day calendar distance from today to the target.
func daysLeft(target, today time.Time) int {
	return int(midnight(target).Sub(midnight(today)).Hours() / 24)
}

// Evaluate derives alerts from the current action set. Completed actions
// never alert. An action due within DueSoonWindow days raises due_soon; a
// past-due action raises overdue, escalated once it is more than
// EscalateAfter days late. At most the first 20 actions are examined.
func Evaluate(items []Item, today time.Time) []Alert {
	if len(items) > evaluationWindow {
		items = items[:evaluationWindow]
	}

	var alerts []Alert
	for _, it := range items {
		if it.Status == StatusCompleted {
			continue
		}
		owner := it.Owner
		if owner == "" {
			owner = "Unassigned"
		}
		left := daysLeft(it.TargetDate(today), today)
		switch {
		case left >= 0 && left <= DueSoonWindow:
			alerts = append(alerts, Alert{
				Kind:    KindDueSoon,
				Message: fmt.Sprintf("Action '%s' assigned to %s is due in %d day(s).", it.Reason, owner, left),
			})
		case left < 0:
			overdue := -left
			escalate := overdue > EscalateAfter
			alerts = append(alerts, Alert{
				Kind:     KindOverdue,
				Message:  fmt.Sprintf("Action '%s' is OVERDUE by %d day(s). Escalate: %t", it.Reason, overdue, escalate),
				Escalate: escalate,
			})
		}
	}
	return alerts
}

// seedCount is how many top level-2 reasons seed the tracker.
const seedCount = 6

// Seed builds the initial tracker from the latest week's top
// (department, reason) pairs by loss minutes, due in a week, temporary,
// not started.
func Seed(latestWeek []loss.Record, today time.Time) []Item {
	rows := pareto.Aggregate(latestWeek, func(r loss.Record) string {
		return r.Department + "\x00" + r.Reason
	})
	if len(rows) > seedCount {
		rows = rows[:seedCount]
	}

	target := today.AddDate(0, 0, DefaultDueOffset).Format("2006-01-02")
	return lo.Map(rows, func(r pareto.Row, _ int) Item {
		dept, reason := splitSeedKey(r.Category)
		return Item{
			ID:         uuid.NewString(),
			Department: dept,
			Reason:     reason,
			Target:     target,
			Type:       TypeTemporary,
			Status:     StatusNotStarted,
		}
	})
}

func splitSeedKey(k string) (dept, reason string) {
	for i := 0; i < len(k); i++ {
		if k[i] == 0 {
			return k[:i], k[i+1:]
		}
	}
	return k, ""
}
