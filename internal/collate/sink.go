package collate

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

const sinkHeaderPrefix = "#Experiment,SEP Date,Start Time,End Time,Onset Peak Flux,Onset Peak Time,Max Flux,Max Flux Time,Channel Fluence "

// Config holds the explicit sink configuration; passing it in (rather than
// reading process-wide settings) keeps tests isolated in temp directories.
type Config struct {
	ListDir string
}

// Registry maps combinations to sink files under ListDir and creates each
// sink with its header exactly once.
type Registry struct {
	cfg Config
}

// NewRegistry returns a Registry writing sinks under cfg.ListDir.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// SinkFileName returns the canonical file name for a combination:
// sep_list_{min}MeV_{threshold}pfu.csv for integral channels,
// sep_list_{min}-{max}MeV_{threshold}dpfu.csv for differential.
func SinkFileName(c model.Combination) string {
	if c.Channel.Integral() {
		return "sep_list_" + model.FormatNum(c.Channel.Min) + "MeV_" +
			model.FormatNum(c.Threshold) + "pfu.csv"
	}
	return "sep_list_" + model.FormatNum(c.Channel.Min) + "-" +
		model.FormatNum(c.Channel.Max) + "MeV_" + model.FormatNum(c.Threshold) + "dpfu.csv"
}

// Header returns the sink header line for a combination, without the
// trailing newline. The fluence unit differs between integral and
// differential channels.
func Header(c model.Combination) string {
	units := "[MeV-1 cm-2 sr-1]"
	if c.Channel.Integral() {
		units = "[cm-2 sr-1]"
	}
	return sinkHeaderPrefix + c.Channel.String() + " " + units
}

// SinkPath returns the path a combination's sink lives at, whether or not
// it exists yet.
func (r *Registry) SinkPath(c model.Combination) string {
	return filepath.Join(r.cfg.ListDir, SinkFileName(c))
}

// EnsureSink guarantees the combination's sink exists, creating it with
// its header on first encounter, and returns its path. Existence is
// checked on disk rather than in an in-process cache so that separate
// batch processes sharing a list directory interoperate. Re-calling for an
// existing sink never rewrites the header or truncates accumulated rows.
func (r *Registry) EnsureSink(c model.Combination) (string, error) {
	if err := os.MkdirAll(r.cfg.ListDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "collate: create list dir %s", r.cfg.ListDir)
	}

	path := r.SinkPath(c)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", eris.Wrapf(err, "collate: stat sink %s", path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Another batch process created it between the stat and here.
			return path, nil
		}
		return "", eris.Wrapf(err, "collate: create sink %s", path)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.WriteString(Header(c) + "\n"); err != nil {
		return "", eris.Wrapf(err, "collate: write sink header %s", path)
	}

	zap.L().Info("created sink",
		zap.String("path", path),
		zap.String("channel", c.Channel.String()),
		zap.Float64("threshold", c.Threshold),
	)
	return path, nil
}

// EnsureAll creates any missing sinks for the given combinations, in
// order, so file creation order is deterministic within a run.
func (r *Registry) EnsureAll(combos []model.Combination) error {
	for _, c := range combos {
		if _, err := r.EnsureSink(c); err != nil {
			return err
		}
	}
	return nil
}
