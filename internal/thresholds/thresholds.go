// Package thresholds loads operator-supplied threshold definitions that
// are forwarded to the analysis tool on top of its built-in ones.
package thresholds

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// Definition is one extra channel/threshold pair to analyze.
type Definition struct {
	Min       float64 `yaml:"energy_min"`
	Max       float64 `yaml:"energy_max"`
	Threshold float64 `yaml:"threshold"`
}

type file struct {
	Thresholds []Definition `yaml:"thresholds"`
}

// Load reads definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "thresholds: read %s", path)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "thresholds: parse %s", path)
	}
	for i, d := range f.Thresholds {
		if d.Threshold <= 0 {
			return nil, eris.Errorf("thresholds: entry %d: threshold must be positive", i)
		}
		if d.Max == 0 {
			f.Thresholds[i].Max = -1
		}
	}
	return f.Thresholds, nil
}

// Format renders definitions as the analysis tool's --Threshold argument,
// e.g. "100,1;30-50,0.005". Integral channels use the bare minimum energy,
// differential channels a min-max range.
func Format(defs []Definition) string {
	parts := make([]string, 0, len(defs))
	for _, d := range defs {
		ch := model.EnergyChannel{Min: d.Min, Max: d.Max}
		var b strings.Builder
		b.WriteString(model.FormatNum(d.Min))
		if !ch.Integral() {
			b.WriteString("-")
			b.WriteString(model.FormatNum(d.Max))
		}
		b.WriteString(",")
		b.WriteString(model.FormatNum(d.Threshold))
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}
