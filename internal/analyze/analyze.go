// Package analyze invokes the external per-event SEP analysis and locates
// the result document it produces.
package analyze

import (
	"context"
	"sync"

	"github.com/spacewx-tools/sepbatch/internal/model"
)

// Analyzer runs the per-event analysis for one manifest entry and returns
// the path of the JSON result document it produced.
type Analyzer interface {
	Run(ctx context.Context, entry model.Entry) (string, error)
}

// Stub is an Analyzer for offline runs and tests: it returns canned
// document paths keyed by the entry's display name, falling back to Path.
// Safe for concurrent use.
type Stub struct {
	Path   string
	ByName map[string]string
	Err    error

	mu      sync.Mutex
	Entries []model.Entry // records every entry passed to Run
}

// Run implements Analyzer.
func (s *Stub) Run(_ context.Context, entry model.Entry) (string, error) {
	s.mu.Lock()
	s.Entries = append(s.Entries, entry)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if p, ok := s.ByName[entry.DisplayName()]; ok {
		return p, nil
	}
	return s.Path, nil
}
