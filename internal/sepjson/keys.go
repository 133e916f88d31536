package sepjson

// Sentinel is the canonical "not found" marker returned by the accessor.
// It is distinct from any legitimate numeric or time value and from the
// empty string; callers compare against it to distinguish "no event" from
// "event detected but one quantity unavailable".
const Sentinel = "Value Not Found"

// Key is a semantic identifier for a value inside a result document.
type Key string

// Document-level keys.
const (
	KeyShortName Key = "short_name"
	KeyOptions   Key = "options"
)

// Block-level keys.
const (
	KeyEnergyChannel Key = "energy_channel"
	KeyEnergyMin     Key = "energy_min"
	KeyEnergyMax     Key = "energy_max"
)

// Array keys. Each block may carry several threshold-scoped entries under
// these fields; every one of them can introduce a new combination.
const (
	KeyEventLengths       Key = "event_lengths"
	KeyFluenceSpectra     Key = "fluence_spectra"
	KeyThresholdCrossings Key = "threshold_crossings"
	KeyProbabilities      Key = "probabilities"
)

// Per-entry threshold keys, matched index-for-index with the array keys.
const (
	KeyEventLengthThreshold          Key = "event_length_threshold"
	KeyFluenceSpectrumThresholdStart Key = "fluence_spectrum_threshold_start"
	KeyCrossingThreshold             Key = "crossing_threshold"
	KeyProbThreshold                 Key = "prob_threshold"
)

// Quantity keys extracted into event-list rows.
const (
	KeyEventLengthStartTime Key = "event_length_start_time"
	KeyEventLengthEndTime   Key = "event_length_end_time"
	KeyPeakIntensity        Key = "peak_intensity"
	KeyPeakIntensityTime    Key = "peak_intensity_time"
	KeyPeakIntensityMax     Key = "peak_intensity_max"
	KeyPeakIntensityMaxTime Key = "peak_intensity_max_time"
	KeyFluence              Key = "fluence"
)
