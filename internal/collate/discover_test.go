package collate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
	"github.com/spacewx-tools/sepbatch/internal/sepjson"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// eventDoc has one >10 MeV block with a detection at 10 pfu (the same
// threshold repeated across all four array fields) and one >100 MeV block
// whose 1 pfu threshold appears only in a probability entry and an empty
// event length.
const eventDoc = `{
  "sep_observation_submission": {
    "observatory": {"short_name": "GOES-15"},
    "options": ["S14", "Bruno2017"],
    "observations": [
      {
        "energy_channel": {"min": 10, "max": -1, "units": "MeV"},
        "peak_intensity": {"intensity": 283.4, "units": "pfu", "time": "2012-03-07T05:10Z"},
        "peak_intensity_max": {"intensity": 1500.2, "units": "pfu", "time": "2012-03-08T11:15Z"},
        "event_lengths": [
          {"start_time": "2012-03-07T05:10Z", "end_time": "2012-03-11T14:50Z", "threshold": 10, "threshold_units": "pfu"}
        ],
        "fluences": [{"fluence": 460000000, "units": "cm^-2*sr^-1"}],
        "fluence_spectra": [
          {"start_time": "2012-03-07T05:10Z", "end_time": "2012-03-11T14:50Z", "threshold_start": 10}
        ],
        "threshold_crossings": [{"crossing_time": "2012-03-07T05:10Z", "threshold": 10}],
        "probabilities": [{"probability_value": 1, "threshold": 10}]
      },
      {
        "energy_channel": {"min": 100, "max": -1, "units": "MeV"},
        "event_lengths": [{"start_time": "", "end_time": "", "threshold": 1}],
        "probabilities": [{"probability_value": 0.3, "threshold": 1}]
      }
    ]
  }
}`

func parseEventDoc(t *testing.T) *sepjson.Document {
	t.Helper()
	doc, err := sepjson.Parse([]byte(eventDoc))
	require.NoError(t, err)
	return doc
}

func TestDiscover_DedupAcrossFields(t *testing.T) {
	doc := parseEventDoc(t)

	combos := Discover(doc)

	// Threshold 10 appears in event_lengths, fluence_spectra,
	// threshold_crossings, and probabilities of block 0 but must yield
	// exactly one combination; threshold 1 of block 1 yields the second.
	require.Len(t, combos, 2)
	assert.Equal(t, model.Combination{Channel: model.EnergyChannel{Min: 10, Max: -1}, Threshold: 10}, combos[0])
	assert.Equal(t, model.Combination{Channel: model.EnergyChannel{Min: 100, Max: -1}, Threshold: 1}, combos[1])
}

func TestDiscover_ProbabilityOnlyCombination(t *testing.T) {
	doc, err := sepjson.Parse([]byte(`{
	  "sep_forecast_submission": {
	    "model": {"short_name": "MAG4"},
	    "forecasts": [
	      {
	        "energy_channel": {"min": 10, "max": -1},
	        "probabilities": [{"probability_value": 0.42, "threshold": 10}]
	      }
	    ]
	  }
	}`))
	require.NoError(t, err)

	combos := Discover(doc)
	require.Len(t, combos, 1)
	assert.Equal(t, 10.0, combos[0].Threshold)
}

func TestDiscover_EmptyDocument(t *testing.T) {
	doc, err := sepjson.Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, Discover(doc))
}

func TestMerge(t *testing.T) {
	ch10 := model.EnergyChannel{Min: 10, Max: -1}
	ch100 := model.EnergyChannel{Min: 100, Max: -1}

	existing := []model.Combination{{Channel: ch10, Threshold: 10}}
	found := []model.Combination{
		{Channel: ch10, Threshold: 10},
		{Channel: ch100, Threshold: 1},
	}

	merged := Merge(existing, found)
	require.Len(t, merged, 2)
	assert.Equal(t, ch10, merged[0].Channel)
	assert.Equal(t, ch100, merged[1].Channel)

	// Merging again changes nothing.
	assert.Len(t, Merge(merged, found), 2)
}
