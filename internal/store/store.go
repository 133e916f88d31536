// Package store persists batch run history: one row per manifest entry
// pushed through the analysis, successful or not.
package store

import (
	"context"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	Experiment string          `json:"experiment,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	RecordRun(ctx context.Context, run *model.Run) error
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
