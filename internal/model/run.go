package model

import "time"

// RunStatus represents the outcome of one analysis run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Run records the outcome of running one manifest entry through the
// analysis and collation steps.
type Run struct {
	ID         string    `json:"id"`
	Experiment string    `json:"experiment"` // DisplayName of the manifest entry
	SEPDate    string    `json:"sep_date"`   // start date of the analyzed period
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	JSONPath   string    `json:"json_path,omitempty"` // result document, when produced
	CreatedAt  time.Time `json:"created_at"`
}
