package model

import "time"

// Manifest flag names recognized in the Flags column.
const (
	FlagTwoPeak             = "TwoPeak"
	FlagDetectPreviousEvent = "DetectPreviousEvent"
	FlagSubtractBG          = "SubtractBG"
)

// Entry is one row of the batch manifest: a time period and experiment to
// run through the per-event analysis.
type Entry struct {
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Experiment string    `json:"experiment"` // GOES-08..GOES-15, EPHIN, SEPEM, SEPEMv3, or "user"
	FluxType   string    `json:"flux_type"`  // integral or differential
	Flags      []string  `json:"flags,omitempty"`
	ModelName  string    `json:"model_name,omitempty"`
	UserFile   string    `json:"user_file,omitempty"`
	Options    []string  `json:"options,omitempty"`
	BGStart    string    `json:"bg_start,omitempty"`
	BGEnd      string    `json:"bg_end,omitempty"`
	JSONType   string    `json:"json_type,omitempty"` // model or observations
}

// HasFlag reports whether the entry's Flags column contains name.
func (e Entry) HasFlag(name string) bool {
	for _, f := range e.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// DisplayName is the name recorded in run history and outcome reports:
// the model name for user-supplied flux files, otherwise the experiment.
func (e Entry) DisplayName() string {
	if e.Experiment == "user" && e.ModelName != "" {
		return e.ModelName
	}
	return e.Experiment
}
