package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the event list CSVs into a single XLSX workbook",
	Long:  "Collects every sep_list_*.csv in the list directory into one workbook, one sheet per event list.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		paths, err := filepath.Glob(filepath.Join(cfg.Paths.ListDir, "sep_list_*.csv"))
		if err != nil {
			return eris.Wrapf(err, "export: glob %s", cfg.Paths.ListDir)
		}
		if len(paths) == 0 {
			zap.L().Info("no event lists found", zap.String("list_dir", cfg.Paths.ListDir))
			return nil
		}
		sort.Strings(paths)

		wb := xlsx.NewFile()
		for _, p := range paths {
			if err := addListSheet(wb, p); err != nil {
				return err
			}
		}

		if err := wb.Save(exportOut); err != nil {
			return eris.Wrapf(err, "export: save %s", exportOut)
		}

		zap.L().Info("exported event lists",
			zap.Int("sheets", len(paths)),
			zap.String("out", exportOut),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "sep_lists.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}

// addListSheet copies one event list CSV into a new sheet. Event list rows
// never contain quoted or embedded commas, so a plain split is exact.
func addListSheet(wb *xlsx.File, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "export: read %s", path)
	}

	sheet, err := wb.AddSheet(sheetName(path))
	if err != nil {
		return eris.Wrapf(err, "export: add sheet for %s", path)
	}

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		row := sheet.AddRow()
		for _, field := range strings.Split(line, ",") {
			row.AddCell().SetString(field)
		}
	}
	return nil
}

// sheetName derives a sheet name from the list file name, within the XLSX
// 31-character limit.
func sheetName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".csv")
	name = strings.TrimPrefix(name, "sep_list_")
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
