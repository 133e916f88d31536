// Package manifest reads the batch run list: a CSV file naming the time
// periods and experiments to push through the per-event analysis.
package manifest

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// Column order: StartDate, EndDate, Experiment, FluxType, Flags, ModelName,
// UserFilename, Options, BGStartDate, BGEndDate[, JSONType]. Rows beginning
// with '#' are comments. Trailing columns may be omitted.
const (
	colStartDate = iota
	colEndDate
	colExperiment
	colFluxType
	colFlags
	colModelName
	colUserFile
	colOptions
	colBGStart
	colBGEnd
	colJSONType
)

// Read parses the manifest at path. Any malformed date or a "user" row
// missing its model name or user filename fails the whole read; no partial
// entry list is returned.
func Read(path string) ([]model.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "manifest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "manifest: read %s", path)
	}

	var entries []model.Entry
	for n, row := range records {
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		entry, err := ParseRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "manifest: row %d", n+1)
		}
		entries = append(entries, entry)
	}

	zap.L().Info("manifest read",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// ParseRow parses one manifest row in column order. Short rows are padded
// with blanks.
func ParseRow(row []string) (model.Entry, error) {
	start, err := parseDate(col(row, colStartDate))
	if err != nil {
		return model.Entry{}, eris.Wrap(err, "start date")
	}
	end, err := parseDate(col(row, colEndDate))
	if err != nil {
		return model.Entry{}, eris.Wrap(err, "end date")
	}

	e := model.Entry{
		StartDate:  start,
		EndDate:    end,
		Experiment: col(row, colExperiment),
		FluxType:   col(row, colFluxType),
		Flags:      splitSet(col(row, colFlags)),
		ModelName:  col(row, colModelName),
		UserFile:   col(row, colUserFile),
		Options:    splitSet(col(row, colOptions)),
		BGStart:    col(row, colBGStart),
		BGEnd:      col(row, colBGEnd),
		JSONType:   col(row, colJSONType),
	}

	if e.Experiment == "user" && (e.ModelName == "" || e.UserFile == "") {
		return model.Entry{}, eris.New("a user experiment requires a model name and user filename")
	}
	return e, nil
}

// dateLayouts are the accepted manifest date forms.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	if len(s) > 19 {
		s = s[:19]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("malformed date %q", s)
}

// col safely retrieves a trimmed column value from a possibly short row.
func col(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// splitSet splits a ';'-delimited column into its non-blank members.
func splitSet(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
