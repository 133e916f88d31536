package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RecordAndListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.Run{
		Experiment: "GOES-13",
		SEPDate:    "2012-03-07",
		Status:     model.RunStatusSuccess,
		JSONPath:   "output/sep_values_GOES-13_integral_2012-03-07.json",
	}
	require.NoError(t, st.RecordRun(ctx, run))
	assert.NotEmpty(t, run.ID, "ID assigned on insert")
	assert.False(t, run.CreatedAt.IsZero())

	require.NoError(t, st.RecordRun(ctx, &model.Run{
		Experiment: "GOES-15",
		SEPDate:    "2017-09-10",
		Status:     model.RunStatusFailed,
		Error:      "no data for time period",
	}))

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, r := range []*model.Run{
		{Experiment: "GOES-13", SEPDate: "2012-03-07", Status: model.RunStatusSuccess},
		{Experiment: "GOES-13", SEPDate: "2012-05-17", Status: model.RunStatusFailed, Error: "boom"},
		{Experiment: "SEPEM", SEPDate: "2003-10-28", Status: model.RunStatusSuccess},
	} {
		require.NoError(t, st.RecordRun(ctx, r))
	}

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)

	runs, err = st.ListRuns(ctx, RunFilter{Experiment: "GOES-13"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLite_ListRuns_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	runs, err := st.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}
