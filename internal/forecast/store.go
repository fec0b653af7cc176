// Package forecast holds the current forecast and the policy for refreshing
// it from an external source.
package forecast

import (
	"sync/atomic"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

// Store publishes complete forecasts to the render loop. A forecast is built
// in full before Publish swaps the pointer, so readers see either the old or
// the new sample set, never a mix.
type Store struct {
	current atomic.Pointer[domain.Forecast]
}

// NewStore returns an empty store. Load yields an empty forecast until the
// first Publish.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current forecast. The caller must not mutate f.Samples
// afterwards.
func (s *Store) Publish(f domain.Forecast) {
	s.current.Store(&f)
}

// Load returns the current forecast snapshot.
func (s *Store) Load() domain.Forecast {
	if f := s.current.Load(); f != nil {
		return *f
	}
	return domain.Forecast{}
}

// Loaded reports whether a forecast has been published.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}
