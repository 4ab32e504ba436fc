package memory

import (
	"context"
	"sort"
	"sync"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

// LightCurveArchive is an in-memory implementation of storage.LightCurveArchive.
type LightCurveArchive struct {
	mu   sync.RWMutex
	data map[string][]*domain.LightCurvePoint // keyed by analysis_id
}

// NewLightCurveArchive creates a new in-memory light-curve archive.
func NewLightCurveArchive() *LightCurveArchive {
	return &LightCurveArchive{
		data: make(map[string][]*domain.LightCurvePoint),
	}
}

// Compile-time interface check.
var _ storage.LightCurveArchive = (*LightCurveArchive)(nil)

// InsertBulk adds all points of one analysis in a single batch.
func (s *LightCurveArchive) InsertBulk(_ context.Context, points []*domain.LightCurvePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil || p.AnalysisID == "" {
			return storage.ErrInvalidInput
		}
		pointCopy := *p
		s.data[p.AnalysisID] = append(s.data[p.AnalysisID], &pointCopy)
	}
	return nil
}

// GetByAnalysisID retrieves archived points ordered by time ascending.
func (s *LightCurveArchive) GetByAnalysisID(_ context.Context, analysisID string) ([]*domain.LightCurvePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[analysisID]
	result := make([]*domain.LightCurvePoint, 0, len(stored))
	for _, p := range stored {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimeDays < result[j].TimeDays
	})
	return result, nil
}
