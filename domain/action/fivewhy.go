package action

// FiveWhy is one session-only 5-Why note set captured against a root reason.
type FiveWhy struct {
	Category        string    `json:"category"`
	Reason          string    `json:"reason"`
	Whys            [5]string `json:"whys"`
	TemporaryAction string    `json:"temporary_action"`
	PermanentAction string    `json:"permanent_action"`
	Owner           string    `json:"owner"`
	Target          string    `json:"target"` // YYYY-MM-DD
}
