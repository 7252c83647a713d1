// Package sixm classifies free-text downtime reasons into the fixed 6M
// root-cause taxonomy and suggests first countermeasures per reason keyword.
package sixm

import (
	"strings"

	lo "github.com/samber/lo"
)

// Category is one of the six fixed root-cause buckets.
type Category string

const (
	Machine     Category = "Machine"
	Man         Category = "Man"
	Material    Category = "Material"
	Method      Category = "Method"
	Measurement Category = "Measurement"
	Other       Category = "Environment/Other"
)

// Categories lists the taxonomy in classification priority order.
var Categories = []Category{Machine, Man, Material, Method, Measurement, Other}

// keywordGroups drive classification. Groups are tested top to bottom and the
// first hit wins, so a reason mentioning both an operator and a material part
// lands in Man. Keep this order: downstream reports depend on it.
var keywordGroups = []struct {
	category Category
	keywords []string
}{
	{Machine, []string{"chill", "pump", "motor", "elect", "compressor"}},
	{Man, []string{"operator", "man", "training", "absent", "skill"}},
	{Material, []string{"material", "part", "vendor", "raw"}},
	{Method, []string{"method", "setup", "procedure", "wrong"}},
	{Measurement, []string{"measure", "sensor", "calib", "accuracy"}},
}

// Classify maps a reason string to its 6M category. Total: every input,
// including the empty string, yields exactly one category.
func Classify(reason string) Category {
	r := strings.ToLower(reason)
	for _, g := range keywordGroups {
		if lo.SomeBy(g.keywords, func(k string) bool { return strings.Contains(r, k) }) {
			return g.category
		}
	}
	return Other
}

// suggestionRules map reason keywords to canned countermeasures, first match
// wins. "setup" and "wrong" share a rule.
var suggestionRules = []struct {
	keywords []string
	actions  []string
}{
	{[]string{"chill"}, []string{
		"Check condenser & fan; schedule PM; install clog sensor",
		"Keep spare compressor ready",
	}},
	{[]string{"pump"}, []string{
		"Check seals/bearings; lubrication schedule; maintain spare pump",
	}},
	{[]string{"material"}, []string{
		"Improve vendor planning; implement kanban; maintain buffer stock",
	}},
	{[]string{"rework"}, []string{
		"Review QC checklist; update SOP; operator training",
	}},
	{[]string{"plc"}, []string{
		"Check I/O modules; firmware update; keep spare PLC",
	}},
	{[]string{"setup", "wrong"}, []string{
		"Standardize setup checklist; operator training; poka-yoke",
	}},
}

// fallbackSuggestions apply when no keyword rule matches.
var fallbackSuggestions = []string{
	"Containment action; perform 5-Why; assign owner for permanent fix",
}

// SuggestActions returns recommended countermeasures for a reason.
func SuggestActions(reason string) []string {
	r := strings.ToLower(reason)
	for _, rule := range suggestionRules {
		if lo.SomeBy(rule.keywords, func(k string) bool { return strings.Contains(r, k) }) {
			return rule.actions
		}
	}
	return fallbackSuggestions
}
