package main

import (
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/collate"
	"github.com/spacewx-tools/sepbatch/internal/model"
	"github.com/spacewx-tools/sepbatch/internal/sepjson"
)

var collateCmd = &cobra.Command{
	Use:   "collate [json-dir]",
	Short: "Aggregate already produced result documents into the event lists",
	Long:  "Scans a directory of sep_values_*.json documents and appends their records to the per-threshold event list CSVs, without re-running the analysis.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Paths.OutDir
		if len(args) == 1 {
			dir = args[0]
		}

		paths, err := filepath.Glob(filepath.Join(dir, "sep_values_*.json"))
		if err != nil {
			return eris.Wrapf(err, "collate: glob %s", dir)
		}
		if len(paths) == 0 {
			zap.L().Info("no result documents found", zap.String("dir", dir))
			return nil
		}
		sort.Strings(paths)

		reg := collate.NewRegistry(collate.Config{ListDir: cfg.Paths.ListDir})
		writer := collate.NewWriter(reg)

		var combos []model.Combination
		var written, skipped int
		for _, p := range paths {
			doc, err := sepjson.Load(p)
			if err != nil {
				zap.L().Warn("skipping unreadable document", zap.String("json", p), zap.Error(err))
				skipped++
				continue
			}

			combos = collate.Merge(combos, collate.Discover(doc))
			if err := reg.EnsureAll(combos); err != nil {
				return err
			}
			wrote, err := writer.WriteRecords(doc, combos)
			if err != nil {
				return err
			}
			if wrote {
				written++
			}
		}

		zap.L().Info("collation complete",
			zap.Int("documents", len(paths)),
			zap.Int("with_records", written),
			zap.Int("skipped", skipped),
			zap.Int("combinations", len(combos)),
			zap.String("list_dir", cfg.Paths.ListDir),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collateCmd)
}
