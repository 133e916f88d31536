package analyze

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// Config configures the external analysis subprocess.
type Config struct {
	Command    string   // e.g. "operational_sep_quantities"
	ExtraArgs  []string // prepended verbatim, e.g. interpreter flags
	OutDir     string   // directory the analysis writes sep_values_*.json into
	Thresholds string   // extra threshold definitions forwarded via --Threshold
	Timeout    time.Duration
}

// Subprocess runs the analysis as an external command, one invocation per
// manifest entry.
type Subprocess struct {
	cfg Config
}

// NewSubprocess returns a Subprocess analyzer.
func NewSubprocess(cfg Config) *Subprocess {
	return &Subprocess{cfg: cfg}
}

const dateArgLayout = "2006-01-02 15:04:05"

// BuildArgs translates a manifest entry into the analysis tool's command
// line flags.
func BuildArgs(cfg Config, e model.Entry) []string {
	args := append([]string(nil), cfg.ExtraArgs...)
	args = append(args,
		"--StartDate", e.StartDate.Format(dateArgLayout),
		"--EndDate", e.EndDate.Format(dateArgLayout),
		"--Experiment", e.Experiment,
		"--FluxType", e.FluxType,
	)
	if e.ModelName != "" {
		args = append(args, "--ModelName", e.ModelName)
	}
	if e.UserFile != "" {
		args = append(args, "--UserFile", e.UserFile)
	}
	if e.JSONType != "" {
		args = append(args, "--JSONType", e.JSONType)
	}
	if len(e.Options) > 0 {
		args = append(args, "--Options", strings.Join(e.Options, ";"))
	}
	if e.HasFlag(model.FlagTwoPeak) {
		args = append(args, "--TwoPeaks")
	}
	if e.HasFlag(model.FlagDetectPreviousEvent) {
		args = append(args, "--DetectPreviousEvent")
	}
	if e.HasFlag(model.FlagSubtractBG) {
		args = append(args, "--SubtractBG",
			"--BGStartDate", e.BGStart,
			"--BGEndDate", e.BGEnd,
		)
	}
	if cfg.Thresholds != "" {
		args = append(args, "--Threshold", cfg.Thresholds)
	}
	return args
}

// Run implements Analyzer: it execs the configured command and returns the
// path of the result document the invocation produced, identified as the
// newest sep_values_*.json written into OutDir since the invocation began.
func (s *Subprocess) Run(ctx context.Context, entry model.Entry) (string, error) {
	if s.cfg.Command == "" {
		return "", eris.New("analyze: no analyzer command configured")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	began := time.Now()
	args := BuildArgs(s.cfg, entry)
	zap.L().Info("running analysis",
		zap.String("experiment", entry.DisplayName()),
		zap.String("start", entry.StartDate.Format("2006-01-02")),
	)

	cmd := exec.CommandContext(ctx, s.cfg.Command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", eris.Wrapf(err, "analyze: %s failed: %s", s.cfg.Command, tail(out, 500))
	}

	path, err := newestResult(s.cfg.OutDir, began)
	if err != nil {
		return "", err
	}
	return path, nil
}

// newestResult finds the most recently modified sep_values_*.json in dir
// written at or after since.
func newestResult(dir string, since time.Time) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "sep_values_*.json"))
	if err != nil {
		return "", eris.Wrapf(err, "analyze: glob results in %s", dir)
	}

	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if mod.Before(since.Truncate(time.Second)) {
			continue
		}
		if newest == "" || mod.After(newestMod) {
			newest = m
			newestMod = mod
		}
	}
	if newest == "" {
		return "", eris.Errorf("analyze: no result document produced in %s", dir)
	}
	return newest, nil
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
