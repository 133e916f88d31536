package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_Observations(t *testing.T) {
	path := writeManifest(t, `#StartDate,EndDate,Experiment,FluxType,Flags,ModelName,UserFilename,Options,BGStartDate,BGEndDate
2012-03-07,2012-03-16,GOES-13,integral,TwoPeak;SubtractBG,,,S14;Bruno2017,2012-03-01,2012-03-05
2017-09-10 12:00:00,2017-09-16,GOES-15,integral
`)

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.Equal(t, time.Date(2012, 3, 7, 0, 0, 0, 0, time.UTC), e.StartDate)
	assert.Equal(t, "GOES-13", e.Experiment)
	assert.Equal(t, "integral", e.FluxType)
	assert.Equal(t, []string{"TwoPeak", "SubtractBG"}, e.Flags)
	assert.True(t, e.HasFlag(model.FlagTwoPeak))
	assert.True(t, e.HasFlag(model.FlagSubtractBG))
	assert.False(t, e.HasFlag(model.FlagDetectPreviousEvent))
	assert.Equal(t, []string{"S14", "Bruno2017"}, e.Options)
	assert.Equal(t, "2012-03-01", e.BGStart)
	assert.Equal(t, "GOES-13", e.DisplayName())

	// Short row padded with blanks; timestamped start date honored.
	e = entries[1]
	assert.Equal(t, time.Date(2017, 9, 10, 12, 0, 0, 0, time.UTC), e.StartDate)
	assert.Empty(t, e.Flags)
	assert.Empty(t, e.Options)
}

func TestRead_UserRow(t *testing.T) {
	path := writeManifest(t, `2021-05-29,2021-06-05,user,integral,,UMASEP-10,umasep10_profile.txt,,,,model
`)
	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "user", e.Experiment)
	assert.Equal(t, "UMASEP-10", e.ModelName)
	assert.Equal(t, "umasep10_profile.txt", e.UserFile)
	assert.Equal(t, "model", e.JSONType)
	assert.Equal(t, "UMASEP-10", e.DisplayName())
}

func TestRead_UserRowMissingModelName(t *testing.T) {
	path := writeManifest(t, `2021-05-29,2021-06-05,user,integral
`)
	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user experiment")
}

func TestRead_MalformedDate(t *testing.T) {
	path := writeManifest(t, `03/07/2012,2012-03-16,GOES-13,integral
`)
	entries, err := Read(path)
	require.Error(t, err)
	assert.Nil(t, entries, "no partial list on failure")
	assert.Contains(t, err.Error(), "malformed date")
}

func TestRead_CommentsOnly(t *testing.T) {
	path := writeManifest(t, `# just a header
# and another comment
`)
	entries, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
