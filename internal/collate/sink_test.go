package collate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

func TestSinkFileName(t *testing.T) {
	integral := model.Combination{Channel: model.EnergyChannel{Min: 10, Max: -1}, Threshold: 10}
	assert.Equal(t, "sep_list_10MeV_10pfu.csv", SinkFileName(integral))

	differential := model.Combination{Channel: model.EnergyChannel{Min: 5, Max: 10}, Threshold: 0.001}
	assert.Equal(t, "sep_list_5-10MeV_0.001dpfu.csv", SinkFileName(differential))
}

func TestHeader(t *testing.T) {
	integral := model.Combination{Channel: model.EnergyChannel{Min: 10, Max: -1}, Threshold: 10}
	assert.Equal(t,
		"#Experiment,SEP Date,Start Time,End Time,Onset Peak Flux,Onset Peak Time,Max Flux,Max Flux Time,Channel Fluence >10 MeV [cm-2 sr-1]",
		Header(integral))

	differential := model.Combination{Channel: model.EnergyChannel{Min: 5, Max: 10}, Threshold: 0.001}
	assert.Equal(t,
		"#Experiment,SEP Date,Start Time,End Time,Onset Peak Flux,Onset Peak Time,Max Flux,Max Flux Time,Channel Fluence 5-10 MeV [MeV-1 cm-2 sr-1]",
		Header(differential))
}

func TestEnsureSink_CreatesWithHeader(t *testing.T) {
	reg := NewRegistry(Config{ListDir: filepath.Join(t.TempDir(), "lists")})
	combo := model.Combination{Channel: model.EnergyChannel{Min: 10, Max: -1}, Threshold: 10}

	path, err := reg.EnsureSink(combo)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(reg.cfg.ListDir, "sep_list_10MeV_10pfu.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header(combo)+"\n", string(data))
}

func TestEnsureSink_IdempotentAcrossRuns(t *testing.T) {
	reg := NewRegistry(Config{ListDir: t.TempDir()})
	combo := model.Combination{Channel: model.EnergyChannel{Min: 100, Max: -1}, Threshold: 1}

	path, err := reg.EnsureSink(combo)
	require.NoError(t, err)

	// Simulate rows accumulated by an earlier batch run.
	require.NoError(t, appendRow(path, "GOES-13,2017-09-10,a,b,c,d,e,f,g"))

	// Re-ensuring (as a fresh batch process would) must neither rewrite
	// the header nor truncate existing rows.
	again, err := reg.EnsureSink(combo)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header(combo)+"\nGOES-13,2017-09-10,a,b,c,d,e,f,g\n", string(data))
}

func TestEnsureAll(t *testing.T) {
	reg := NewRegistry(Config{ListDir: t.TempDir()})
	combos := []model.Combination{
		{Channel: model.EnergyChannel{Min: 10, Max: -1}, Threshold: 10},
		{Channel: model.EnergyChannel{Min: 100, Max: -1}, Threshold: 1},
	}

	require.NoError(t, reg.EnsureAll(combos))
	for _, c := range combos {
		_, err := os.Stat(reg.SinkPath(c))
		assert.NoError(t, err)
	}
}
