// Package sepjson reads the per-event JSON documents produced by the
// operational SEP analysis and exposes their contents through a
// sentinel-returning accessor. The documents follow the CCMC SEP
// scoreboard schema: a forecast or observation submission holding one
// block per energy channel.
package sepjson

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// Number decodes a JSON value that may arrive as a number or as a quoted
// numeric string; CCMC files are inconsistent about this.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		var err error
		s, err = strconv.Unquote(s)
		if err != nil {
			return eris.Wrapf(err, "sepjson: unquote number %s", string(data))
		}
	}
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "sepjson: parse number %q", s)
	}
	*n = Number(f)
	return nil
}

// StringList decodes a JSON value that may be a single string or a list of
// strings. The options field appears both ways in the wild.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "sepjson: decode options string")
		}
		*l = StringList{s}
		return nil
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err != nil {
		return eris.Wrap(err, "sepjson: decode options list")
	}
	*l = StringList(ss)
	return nil
}

// EventLength is one threshold crossing's event window.
type EventLength struct {
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Threshold      *Number `json:"threshold"`
	ThresholdUnits string  `json:"threshold_units"`
}

// FluenceEntry is the channel fluence integrated over the matching event
// window; the fluences array parallels event_lengths index-for-index.
type FluenceEntry struct {
	Fluence *Number `json:"fluence"`
	Units   string  `json:"units"`
}

// FluenceSpectrum is a fluence spectrum computed from one start threshold.
type FluenceSpectrum struct {
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	ThresholdStart *Number `json:"threshold_start"`
	ThresholdEnd   *Number `json:"threshold_end"`
	FluenceUnits   string  `json:"fluence_units"`
}

// ThresholdCrossing records when the flux first crossed one threshold.
type ThresholdCrossing struct {
	CrossingTime   string  `json:"crossing_time"`
	Threshold      *Number `json:"threshold"`
	ThresholdUnits string  `json:"threshold_units"`
}

// Probability is the probability of crossing one threshold.
type Probability struct {
	Value          *Number `json:"probability_value"`
	Uncertainty    *Number `json:"uncertainty"`
	Threshold      *Number `json:"threshold"`
	ThresholdUnits string  `json:"threshold_units"`
}

// PeakIntensity is a peak flux value with its timestamp.
type PeakIntensity struct {
	Intensity *Number `json:"intensity"`
	Units     string  `json:"units"`
	Time      string  `json:"time"`
}

// Block holds one energy channel's results.
type Block struct {
	EnergyChannel      model.EnergyChannel `json:"energy_channel"`
	EventLengths       []EventLength       `json:"event_lengths"`
	Fluences           []FluenceEntry      `json:"fluences"`
	FluenceSpectra     []FluenceSpectrum   `json:"fluence_spectra"`
	ThresholdCrossings []ThresholdCrossing `json:"threshold_crossings"`
	Probabilities      []Probability       `json:"probabilities"`
	PeakIntensity      *PeakIntensity      `json:"peak_intensity"`
	PeakIntensityMax   *PeakIntensity      `json:"peak_intensity_max"`
}

// Document is one parsed result document. The accessor methods never
// mutate it; one Document serves a full discovery+write cycle.
type Document struct {
	shortName string
	options   []string
	blocks    []Block
}

type rawSource struct {
	ShortName string `json:"short_name"`
}

type rawSubmission struct {
	Model        *rawSource `json:"model"`
	Observatory  *rawSource `json:"observatory"`
	Options      StringList `json:"options"`
	Forecasts    []Block    `json:"forecasts"`
	Observations []Block    `json:"observations"`
}

type rawFile struct {
	Forecast    *rawSubmission `json:"sep_forecast_submission"`
	Observation *rawSubmission `json:"sep_observation_submission"`
}

// Load reads and parses a result document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sepjson: read %s", path)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "sepjson: parse %s", path)
	}
	return doc, nil
}

// Parse decodes a result document from raw JSON. Both forecast and
// observation submissions are accepted; a file containing neither yields
// an empty document rather than an error.
func Parse(data []byte) (*Document, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "sepjson: decode")
	}

	sub := raw.Observation
	if raw.Forecast != nil {
		sub = raw.Forecast
	}
	if sub == nil {
		return &Document{}, nil
	}

	doc := &Document{options: []string(sub.Options)}
	switch {
	case sub.Model != nil:
		doc.shortName = sub.Model.ShortName
	case sub.Observatory != nil:
		doc.shortName = sub.Observatory.ShortName
	}
	doc.blocks = sub.Observations
	if len(sub.Forecasts) > 0 {
		doc.blocks = sub.Forecasts
	}
	return doc, nil
}
