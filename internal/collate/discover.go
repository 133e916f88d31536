// Package collate turns per-event result documents into per-threshold
// event-list sinks: it discovers every energy-channel/threshold
// combination a document mentions, keeps one append-only CSV sink per
// combination, and extracts a fixed-schema row per detected event.
package collate

import (
	"github.com/spacewx-tools/sepbatch/internal/model"
	"github.com/spacewx-tools/sepbatch/internal/sepjson"
)

// Accessor is the read-only view of a parsed result document the collation
// engine consumes. *sepjson.Document implements it.
type Accessor interface {
	BlockCount() int
	BlockChannel(i int) (model.EnergyChannel, bool)
	ArrayLen(key sepjson.Key, i int) int
	Threshold(key sepjson.Key, i, k int) (float64, bool)
	ValueByThreshold(key sepjson.Key, ch model.EnergyChannel, threshold float64) string
	ShortName() string
	Options() []string
}

// thresholdFields enumerates every block field whose entries can carry a
// threshold. Each entry pairs the array key with the key of its threshold
// value; one generic scan loop covers all four shapes.
var thresholdFields = []struct {
	Array     sepjson.Key
	Threshold sepjson.Key
}{
	{sepjson.KeyEventLengths, sepjson.KeyEventLengthThreshold},
	{sepjson.KeyFluenceSpectra, sepjson.KeyFluenceSpectrumThresholdStart},
	{sepjson.KeyThresholdCrossings, sepjson.KeyCrossingThreshold},
	{sepjson.KeyProbabilities, sepjson.KeyProbThreshold},
}

// Discover scans every block and every threshold-bearing array field and
// returns the deduplicated combinations present in the document, in
// insertion order. A combination referenced only by a probability entry is
// still discovered, so its sink will exist even when no row is ever
// written for it. A document with zero blocks yields an empty set.
func Discover(doc Accessor) []model.Combination {
	var combos []model.Combination
	for i := 0; i < doc.BlockCount(); i++ {
		ch, ok := doc.BlockChannel(i)
		if !ok {
			continue
		}
		for _, field := range thresholdFields {
			n := doc.ArrayLen(field.Array, i)
			for k := 0; k < n; k++ {
				thresh, ok := doc.Threshold(field.Threshold, i, k)
				if !ok {
					continue
				}
				combo := model.Combination{Channel: ch, Threshold: thresh}
				if !model.ContainsCombination(combos, combo) {
					combos = append(combos, combo)
				}
			}
		}
	}
	return combos
}

// Merge appends the combinations from src that dst does not already hold,
// preserving dst's order. The orchestrator uses it to grow the
// batch-lifetime combination set one document at a time.
func Merge(dst, src []model.Combination) []model.Combination {
	for _, c := range src {
		if !model.ContainsCombination(dst, c) {
			dst = append(dst, c)
		}
	}
	return dst
}
