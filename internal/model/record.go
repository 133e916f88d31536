package model

import "strings"

// EventRecord is one row of an event-list sink: the quantities extracted
// for a single (event, combination) pair. Fields are kept in the accessor's
// native string form; a field holding the accessor's sentinel means the
// event was detected but that one quantity was unavailable.
type EventRecord struct {
	Source        string // experiment or model name, option-qualified
	SEPDate       string // YYYY-MM-DD, derived from the start time
	StartTime     string
	EndTime       string
	OnsetPeak     string
	OnsetPeakTime string
	MaxFlux       string
	MaxFluxTime   string
	Fluence       string
}

// Row renders the record as one comma-separated sink line, in header order,
// without a trailing newline.
func (r EventRecord) Row() string {
	return strings.Join([]string{
		r.Source,
		r.SEPDate,
		r.StartTime,
		r.EndTime,
		r.OnsetPeak,
		r.OnsetPeakTime,
		r.MaxFlux,
		r.MaxFluxTime,
		r.Fluence,
	}, ",")
}
