package collate

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
	"github.com/spacewx-tools/sepbatch/internal/sepjson"
)

// Writer appends one event row per (document, combination) into the
// matching sinks. It holds no per-document state; everything is re-derived
// from the document and the combination set on each call.
type Writer struct {
	reg *Registry
}

// NewWriter returns a Writer appending through the given registry.
func NewWriter(reg *Registry) *Writer {
	return &Writer{reg: reg}
}

// WriteRecords extracts the fixed per-event record for every known
// combination matching one of the document's blocks and appends one row to
// the corresponding sink. Combinations whose start time is absent are
// skipped silently: the event did not cross that threshold. Blocks whose
// channel matches no known combination are skipped too; discovery is
// expected to be a superset across the life of a batch. Returns true on
// normal completion.
func (w *Writer) WriteRecords(doc Accessor, combos []model.Combination) (bool, error) {
	source := SourceName(doc)

	for i := 0; i < doc.BlockCount(); i++ {
		ch, ok := doc.BlockChannel(i)
		if !ok {
			continue
		}
		for _, combo := range combos {
			if combo.Channel != ch {
				continue
			}

			path, err := w.reg.EnsureSink(combo)
			if err != nil {
				return false, err
			}

			rec, detected := extractRecord(doc, combo, source)
			if !detected {
				zap.L().Debug("no detection for threshold",
					zap.String("channel", combo.Channel.String()),
					zap.Float64("threshold", combo.Threshold),
				)
				continue
			}

			if err := appendRow(path, rec.Row()); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// SourceName derives the experiment/model name for the document's rows:
// the short name, qualified with every distinct non-blank option string in
// lexicographic order, joined with underscores.
func SourceName(doc Accessor) string {
	name := doc.ShortName()

	opts := append([]string(nil), doc.Options()...)
	sort.Strings(opts)

	seen := make(map[string]bool, len(opts))
	for _, opt := range opts {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		name += "_" + opt
	}
	return name
}

// extractRecord pulls the row quantities for one combination, resolved by
// semantic key, channel, and threshold rather than block index. The second
// return is false when the event did not cross this threshold.
func extractRecord(doc Accessor, combo model.Combination, source string) (model.EventRecord, bool) {
	start := doc.ValueByThreshold(sepjson.KeyEventLengthStartTime, combo.Channel, combo.Threshold)
	if start == sepjson.Sentinel || start == "" {
		return model.EventRecord{}, false
	}

	return model.EventRecord{
		Source:        source,
		SEPDate:       sepDate(start),
		StartTime:     start,
		EndTime:       doc.ValueByThreshold(sepjson.KeyEventLengthEndTime, combo.Channel, combo.Threshold),
		OnsetPeak:     doc.ValueByThreshold(sepjson.KeyPeakIntensity, combo.Channel, combo.Threshold),
		OnsetPeakTime: doc.ValueByThreshold(sepjson.KeyPeakIntensityTime, combo.Channel, combo.Threshold),
		MaxFlux:       doc.ValueByThreshold(sepjson.KeyPeakIntensityMax, combo.Channel, combo.Threshold),
		MaxFluxTime:   doc.ValueByThreshold(sepjson.KeyPeakIntensityMaxTime, combo.Channel, combo.Threshold),
		Fluence:       doc.ValueByThreshold(sepjson.KeyFluence, combo.Channel, combo.Threshold),
	}, true
}

// timeLayouts are the start-time forms seen in result documents.
var timeLayouts = []string{
	"2006-01-02T15:04Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// sepDate derives the YYYY-MM-DD event date from a start time string. An
// unparseable but date-prefixed value falls back to its first ten
// characters; garbage otherwise passes through unchanged.
func sepDate(start string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, start); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(start) >= 10 {
		return start[:10]
	}
	return start
}

// appendRow appends one newline-terminated row to the sink at path. The
// file is opened and closed per write so a crash mid-batch loses at most
// the in-flight row.
func appendRow(path, row string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return eris.Wrapf(err, "collate: open sink %s", path)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.WriteString(row + "\n"); err != nil {
		return eris.Wrapf(err, "collate: append to sink %s", path)
	}
	return nil
}
