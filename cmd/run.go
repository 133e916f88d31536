package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/collate"
	"github.com/spacewx-tools/sepbatch/internal/manifest"
	"github.com/spacewx-tools/sepbatch/internal/model"
)

var runFlags struct {
	start      string
	end        string
	experiment string
	fluxType   string
	modelName  string
	userFile   string
	options    []string
	jsonType   string
	bgStart    string
	bgEnd      string

	twoPeaks   bool
	detectPrev bool
	subtractBG bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze and collate a single SEP event period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entry, err := entryFromFlags()
		if err != nil {
			return err
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

		results := analyzeAll(ctx, []model.Entry{entry}, analyzer, 1)

		reg := collate.NewRegistry(collate.Config{ListDir: cfg.Paths.ListDir})
		if err := collateResults(reg, results); err != nil {
			return err
		}
		recordRuns(ctx, st, results)

		if results[0].err != nil {
			return results[0].err
		}
		zap.L().Info("run complete", zap.String("json", results[0].jsonPath))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFlags.start, "start", "", "period start date (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)")
	runCmd.Flags().StringVar(&runFlags.end, "end", "", "period end date")
	runCmd.Flags().StringVar(&runFlags.experiment, "experiment", "", "experiment (GOES-13, EPHIN, SEPEM, ... or user)")
	runCmd.Flags().StringVar(&runFlags.fluxType, "flux-type", "integral", "flux type (integral or differential)")
	runCmd.Flags().StringVar(&runFlags.modelName, "model-name", "", "model name for user-supplied flux files")
	runCmd.Flags().StringVar(&runFlags.userFile, "user-file", "", "user-supplied flux file")
	runCmd.Flags().StringSliceVar(&runFlags.options, "options", nil, "experiment options (e.g. S14, Bruno2017)")
	runCmd.Flags().StringVar(&runFlags.jsonType, "json-type", "", "result document type for user files (model or observations)")
	runCmd.Flags().StringVar(&runFlags.bgStart, "bg-start", "", "background window start date")
	runCmd.Flags().StringVar(&runFlags.bgEnd, "bg-end", "", "background window end date")
	runCmd.Flags().BoolVar(&runFlags.twoPeaks, "two-peaks", false, "treat two consecutive events as one")
	runCmd.Flags().BoolVar(&runFlags.detectPrev, "detect-previous-event", false, "onset taken from an ongoing previous event")
	runCmd.Flags().BoolVar(&runFlags.subtractBG, "subtract-bg", false, "subtract background flux before analysis")
	_ = runCmd.MarkFlagRequired("start")
	_ = runCmd.MarkFlagRequired("end")
	_ = runCmd.MarkFlagRequired("experiment")

	rootCmd.AddCommand(runCmd)
}

// entryFromFlags assembles a manifest entry from the command line, with
// the same validation a manifest row gets.
func entryFromFlags() (model.Entry, error) {
	var flags []string
	if runFlags.twoPeaks {
		flags = append(flags, model.FlagTwoPeak)
	}
	if runFlags.detectPrev {
		flags = append(flags, model.FlagDetectPreviousEvent)
	}
	if runFlags.subtractBG {
		flags = append(flags, model.FlagSubtractBG)
	}

	row := []string{
		runFlags.start,
		runFlags.end,
		runFlags.experiment,
		runFlags.fluxType,
		joinSet(flags),
		runFlags.modelName,
		runFlags.userFile,
		joinSet(runFlags.options),
		runFlags.bgStart,
		runFlags.bgEnd,
		runFlags.jsonType,
	}
	entry, err := manifest.ParseRow(row)
	if err != nil {
		return model.Entry{}, eris.Wrap(err, "run: invalid arguments")
	}
	return entry, nil
}

func joinSet(vals []string) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ";"
		}
		out += v
	}
	return out
}
