package sixm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		reason string
		want   Category
	}{
		{"Chiller breakdown", Machine},
		{"Pump failure", Machine},
		{"Operator absent", Man},
		{"Raw material shortage", Material},
		{"Wrong setup", Method},
		{"Sensor calibration drift", Measurement},
		{"Power outage", Other},
		{"", Other},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.reason))
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A reason matching several groups lands in the first one tested.
	assert.Equal(t, Man, Classify("Operator used wrong material"))
	assert.Equal(t, Machine, Classify("Operator broke the pump"))
	assert.Equal(t, Material, Classify("Vendor shipped the wrong part"))
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []string{"", " ", "???", "chiller", "CHILLER", "completely unrelated text", "操作"}
	valid := map[Category]bool{}
	for _, c := range Categories {
		valid[c] = true
	}
	for _, in := range inputs {
		got := Classify(in)
		assert.True(t, valid[got], "Classify(%q) returned %q outside the taxonomy", in, got)
	}
}

func TestSuggestActions(t *testing.T) {
	got := SuggestActions("Chiller breakdown")
	require.Len(t, got, 2)
	assert.True(t, strings.Contains(got[0], "schedule PM"), "expected a PM-scheduling recommendation, got %v", got)

	assert.Equal(t,
		[]string{"Standardize setup checklist; operator training; poka-yoke"},
		SuggestActions("Wrong setup"))

	assert.Equal(t, fallbackSuggestions, SuggestActions("Power outage"))
}
