package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacewx-tools/sepbatch/internal/analyze"
	"github.com/spacewx-tools/sepbatch/internal/collate"
	"github.com/spacewx-tools/sepbatch/internal/fetcher"
	"github.com/spacewx-tools/sepbatch/internal/manifest"
	"github.com/spacewx-tools/sepbatch/internal/model"
	"github.com/spacewx-tools/sepbatch/internal/sepjson"
	"github.com/spacewx-tools/sepbatch/internal/store"
	"github.com/spacewx-tools/sepbatch/internal/thresholds"
)

var batchFetch bool

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.csv>",
	Short: "Run every manifest entry through analysis and collate the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entries, err := manifest.Read(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			zap.L().Info("manifest is empty, nothing to do")
			return nil
		}

		if batchFetch {
			if err := prefetchArchives(ctx, entries); err != nil {
				return err
			}
		}

		analyzer, err := initAnalyzer()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		results := analyzeAll(ctx, entries, analyzer, cfg.Batch.Concurrency)

		reg := collate.NewRegistry(collate.Config{ListDir: cfg.Paths.ListDir})
		if err := collateResults(reg, results); err != nil {
			return err
		}

		if err := writeReport(cfg.Paths.ReportPath, results); err != nil {
			return err
		}
		recordRuns(ctx, st, results)

		var failed int
		for _, r := range results {
			if r.err != nil {
				failed++
			}
		}
		zap.L().Info("batch complete",
			zap.Int("entries", len(results)),
			zap.Int("failed", failed),
			zap.String("report", cfg.Paths.ReportPath),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchFetch, "fetch", false, "pre-download experiment flux archives before analysis")
	rootCmd.AddCommand(batchCmd)
}

// initAnalyzer builds the subprocess analyzer from configuration, loading
// the extra thresholds file when one is configured.
func initAnalyzer() (analyze.Analyzer, error) {
	if cfg.Analyzer.Command == "" {
		return nil, eris.New("batch: analyzer.command is not configured")
	}

	var extra string
	if cfg.Analyzer.ThresholdsFile != "" {
		defs, err := thresholds.Load(cfg.Analyzer.ThresholdsFile)
		if err != nil {
			return nil, err
		}
		extra = thresholds.Format(defs)
	}

	return analyze.NewSubprocess(analyze.Config{
		Command:    cfg.Analyzer.Command,
		ExtraArgs:  cfg.Analyzer.ExtraArgs,
		OutDir:     cfg.Paths.OutDir,
		Thresholds: extra,
		Timeout:    time.Duration(cfg.Analyzer.TimeoutSecs) * time.Second,
	}), nil
}

// runResult pairs a manifest entry with its analysis outcome.
type runResult struct {
	entry    model.Entry
	jsonPath string
	err      error
}

// analyzeAll runs the analyzer over every entry with bounded concurrency.
// Individual failures never abort the batch; they are carried in the
// result for the report and run history. Results keep manifest order.
func analyzeAll(ctx context.Context, entries []model.Entry, analyzer analyze.Analyzer, concurrency int) []runResult {
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("analyzing batch",
		zap.Int("entries", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]runResult, len(entries))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		results[i].entry = entry
		g.Go(func() error {
			log := zap.L().With(
				zap.String("experiment", entry.DisplayName()),
				zap.String("start", entry.StartDate.Format("2006-01-02")),
			)

			path, err := analyzer.Run(gctx, entry)
			if err != nil {
				failed.Add(1)
				results[i].err = err
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			results[i].jsonPath = path
			log.Info("analysis complete", zap.String("json", path))
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("analysis phase done",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

// collateResults aggregates every produced document into the event list
// sinks. It runs strictly sequentially: sinks are append-only files with a
// single writer. Combinations accumulate across the whole batch so a sink
// discovered late still collects earlier documents' records on the next
// batch. Per-document problems are folded into the result; only sink I/O
// errors abort.
func collateResults(reg *collate.Registry, results []runResult) error {
	writer := collate.NewWriter(reg)
	var combos []model.Combination

	for i := range results {
		if results[i].err != nil || results[i].jsonPath == "" {
			continue
		}

		doc, err := sepjson.Load(results[i].jsonPath)
		if err != nil {
			results[i].err = err
			zap.L().Error("result document unreadable",
				zap.String("json", results[i].jsonPath),
				zap.Error(err),
			)
			continue
		}

		combos = collate.Merge(combos, collate.Discover(doc))
		if err := reg.EnsureAll(combos); err != nil {
			return err
		}
		if _, err := writer.WriteRecords(doc, combos); err != nil {
			return err
		}
	}

	zap.L().Info("collation complete", zap.Int("combinations", len(combos)))
	return nil
}

// writeReport writes the per-entry outcome report, one line per manifest
// row, blank exception on success.
func writeReport(path string, results []runResult) error {
	var b strings.Builder
	b.WriteString("#Experiment,SEP Date,Exception\n")
	for _, r := range results {
		exception := ""
		if r.err != nil {
			exception = strings.ReplaceAll(r.err.Error(), ",", ";")
		}
		fmt.Fprintf(&b, "%s,%s,%s\n",
			r.entry.DisplayName(),
			r.entry.StartDate.Format("2006-01-02"),
			exception,
		)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrapf(err, "batch: write report %s", path)
	}
	return nil
}

// recordRuns persists one run-history row per entry. Store failures are
// logged, not fatal: the event lists and report already exist on disk.
func recordRuns(ctx context.Context, st store.Store, results []runResult) {
	for _, r := range results {
		run := &model.Run{
			Experiment: r.entry.DisplayName(),
			SEPDate:    r.entry.StartDate.Format("2006-01-02"),
			Status:     model.RunStatusSuccess,
			JSONPath:   r.jsonPath,
		}
		if r.err != nil {
			run.Status = model.RunStatusFailed
			run.Error = r.err.Error()
		}
		if err := st.RecordRun(ctx, run); err != nil {
			zap.L().Warn("failed to record run", zap.Error(err))
		}
	}
}

// prefetchArchives downloads daily flux archives for every non-user entry
// into the data directory. Files already present are skipped.
func prefetchArchives(ctx context.Context, entries []model.Entry) error {
	if cfg.Fetcher.BaseURL == "" {
		return eris.New("batch: fetcher.base_url is not configured")
	}

	f := fetcher.New(fetcher.Options{
		UserAgent:  cfg.Fetcher.UserAgent,
		Timeout:    time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetcher.MaxRetries,
		RatePerSec: cfg.Fetcher.RatePerSec,
		Burst:      cfg.Fetcher.Burst,
	})

	for _, e := range entries {
		if e.Experiment == "user" {
			continue
		}
		for day := e.StartDate.Truncate(24 * time.Hour); !day.After(e.EndDate); day = day.AddDate(0, 0, 1) {
			url, dest := archiveLocation(cfg.Fetcher.BaseURL, cfg.Paths.DataDir, e.Experiment, day)
			if err := f.Download(ctx, url, dest); err != nil {
				return err
			}
		}
	}
	return nil
}

// archiveLocation maps an experiment and day onto the archive server's
// daily file layout and the matching local path under dataDir.
func archiveLocation(baseURL, dataDir, experiment string, day time.Time) (url, dest string) {
	name := fmt.Sprintf("%s_%s.csv", experiment, day.Format("20060102"))
	url = fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), experiment, name)
	dest = filepath.Join(dataDir, experiment, name)
	return url, dest
}
