package sepjson

import (
	"strconv"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// BlockCount returns the number of energy-channel blocks in the document.
func (d *Document) BlockCount() int {
	return len(d.blocks)
}

// ShortName returns the experiment or model short name, or the empty
// string when the document does not declare one.
func (d *Document) ShortName() string {
	return d.shortName
}

// Options returns the option flags declared by the document, possibly nil.
func (d *Document) Options() []string {
	return d.options
}

// BlockChannel returns the energy channel of block i.
func (d *Document) BlockChannel(i int) (model.EnergyChannel, bool) {
	if i < 0 || i >= len(d.blocks) {
		return model.EnergyChannel{}, false
	}
	return d.blocks[i].EnergyChannel, true
}

// ArrayLen returns the length of the named array field in block i, or 0
// when the block or field is absent.
func (d *Document) ArrayLen(key Key, i int) int {
	if i < 0 || i >= len(d.blocks) {
		return 0
	}
	b := &d.blocks[i]
	switch key {
	case KeyEventLengths:
		return len(b.EventLengths)
	case KeyFluenceSpectra:
		return len(b.FluenceSpectra)
	case KeyThresholdCrossings:
		return len(b.ThresholdCrossings)
	case KeyProbabilities:
		return len(b.Probabilities)
	}
	return 0
}

// Threshold returns the threshold value carried by entry k of the array
// identified by the given threshold key in block i. The second return is
// false when the entry or its threshold is absent.
func (d *Document) Threshold(key Key, i, k int) (float64, bool) {
	if i < 0 || i >= len(d.blocks) || k < 0 {
		return 0, false
	}
	b := &d.blocks[i]
	switch key {
	case KeyEventLengthThreshold:
		if k < len(b.EventLengths) {
			return numValue(b.EventLengths[k].Threshold)
		}
	case KeyFluenceSpectrumThresholdStart:
		if k < len(b.FluenceSpectra) {
			return numValue(b.FluenceSpectra[k].ThresholdStart)
		}
	case KeyCrossingThreshold:
		if k < len(b.ThresholdCrossings) {
			return numValue(b.ThresholdCrossings[k].Threshold)
		}
	case KeyProbThreshold:
		if k < len(b.Probabilities) {
			return numValue(b.Probabilities[k].Threshold)
		}
	}
	return 0, false
}

// Value returns the value for a semantic key at block i (and optional
// sub-index into an array field) in its native string form, or Sentinel
// when absent.
func (d *Document) Value(key Key, i int, sub ...int) string {
	switch key {
	case KeyShortName:
		return orSentinel(d.shortName)
	}

	if i < 0 || i >= len(d.blocks) {
		return Sentinel
	}
	b := &d.blocks[i]

	k := 0
	if len(sub) > 0 {
		k = sub[0]
	}

	switch key {
	case KeyEnergyMin:
		return model.FormatNum(b.EnergyChannel.Min)
	case KeyEnergyMax:
		return model.FormatNum(b.EnergyChannel.Max)
	case KeyEventLengthThreshold, KeyFluenceSpectrumThresholdStart, KeyCrossingThreshold, KeyProbThreshold:
		if v, ok := d.Threshold(key, i, k); ok {
			return model.FormatNum(v)
		}
	case KeyEventLengthStartTime:
		if k >= 0 && k < len(b.EventLengths) {
			return orSentinel(b.EventLengths[k].StartTime)
		}
	case KeyEventLengthEndTime:
		if k >= 0 && k < len(b.EventLengths) {
			return orSentinel(b.EventLengths[k].EndTime)
		}
	case KeyPeakIntensity:
		if b.PeakIntensity != nil {
			return numString(b.PeakIntensity.Intensity)
		}
	case KeyPeakIntensityTime:
		if b.PeakIntensity != nil {
			return orSentinel(b.PeakIntensity.Time)
		}
	case KeyPeakIntensityMax:
		if b.PeakIntensityMax != nil {
			return numString(b.PeakIntensityMax.Intensity)
		}
	case KeyPeakIntensityMaxTime:
		if b.PeakIntensityMax != nil {
			return orSentinel(b.PeakIntensityMax.Time)
		}
	case KeyFluence:
		if k >= 0 && k < len(b.Fluences) {
			return numString(b.Fluences[k].Fluence)
		}
	}
	return Sentinel
}

// ValueByThreshold returns the value for a semantic key within the block
// matching the given energy channel, disambiguated by threshold when the
// quantity is threshold-scoped. Thresholds, not block indexes, identify
// the entry because one channel may report several crossings.
func (d *Document) ValueByThreshold(key Key, ch model.EnergyChannel, threshold float64) string {
	for i := range d.blocks {
		if d.blocks[i].EnergyChannel != ch {
			continue
		}
		b := &d.blocks[i]

		switch key {
		case KeyPeakIntensity, KeyPeakIntensityTime, KeyPeakIntensityMax, KeyPeakIntensityMaxTime:
			// Peak flux is reported once per block, independent of threshold.
			return d.Value(key, i)
		}

		// The fluences array parallels event_lengths index-for-index, so
		// every remaining quantity resolves through the matching event
		// length entry.
		for k := range b.EventLengths {
			v, ok := numValue(b.EventLengths[k].Threshold)
			if !ok || v != threshold {
				continue
			}
			switch key {
			case KeyEventLengthStartTime, KeyEventLengthEndTime, KeyEventLengthThreshold:
				return d.Value(key, i, k)
			case KeyFluence:
				return d.Value(KeyFluence, i, k)
			}
			return Sentinel
		}
		return Sentinel
	}
	return Sentinel
}

func numValue(n *Number) (float64, bool) {
	if n == nil {
		return 0, false
	}
	return float64(*n), true
}

func numString(n *Number) string {
	if n == nil {
		return Sentinel
	}
	return strconv.FormatFloat(float64(*n), 'g', -1, 64)
}

func orSentinel(s string) string {
	if s == "" {
		return Sentinel
	}
	return s
}
