package model

import "strconv"

// EnergyChannel is the particle energy range a measurement covers.
// Max == -1 denotes an integral (open upper bound) channel; any other
// value denotes a differential channel.
type EnergyChannel struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Integral reports whether the channel has an open upper bound.
func (c EnergyChannel) Integral() bool {
	return c.Max == -1
}

// String renders the channel the way it appears in sink filenames and
// headers: ">10 MeV" or "5-10 MeV".
func (c EnergyChannel) String() string {
	if c.Integral() {
		return ">" + FormatNum(c.Min) + " MeV"
	}
	return FormatNum(c.Min) + "-" + FormatNum(c.Max) + " MeV"
}

// Combination identifies one energy channel / threshold pair. Each
// combination maps to exactly one event-list sink file.
type Combination struct {
	Channel   EnergyChannel `json:"energy_channel"`
	Threshold float64       `json:"threshold"`
}

// ContainsCombination reports whether combos already holds c. Equality is
// exact structural equality of both the channel and the threshold; a
// linear scan keeps float comparisons by value rather than by hash.
func ContainsCombination(combos []Combination, c Combination) bool {
	for _, existing := range combos {
		if existing == c {
			return true
		}
	}
	return false
}

// FormatNum renders a flux or energy value the way it appears in sink
// filenames and headers: no exponent for typical magnitudes, no trailing
// zeros (10 -> "10", 0.001 -> "0.001").
func FormatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
