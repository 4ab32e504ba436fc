// Package memory provides in-memory store implementations for tests and for
// running without external databases.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

// DiscoveryStore is an in-memory implementation of storage.DiscoveredObjectStore.
type DiscoveryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DiscoveredObject // keyed by name
}

// NewDiscoveryStore creates a new in-memory discovery store.
func NewDiscoveryStore() *DiscoveryStore {
	return &DiscoveryStore{
		data: make(map[string]*domain.DiscoveredObject),
	}
}

// Compile-time interface check.
var _ storage.DiscoveredObjectStore = (*DiscoveryStore)(nil)

// Insert adds a new discovery. Returns ErrDuplicateKey if the name exists
// and ErrInvalidInput for a missing name or unknown label.
func (s *DiscoveryStore) Insert(_ context.Context, obj *domain.DiscoveredObject) error {
	if obj == nil || obj.Name == "" || !obj.Label.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[obj.Name]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	objCopy := *obj
	objCopy.CreatedAt = time.Now()
	s.data[obj.Name] = &objCopy
	return nil
}

// GetByName retrieves a discovery by its unique name.
func (s *DiscoveryStore) GetByName(_ context.Context, name string) (*domain.DiscoveredObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.data[name]
	if !exists {
		return nil, storage.ErrNotFound
	}

	objCopy := *obj
	return &objCopy, nil
}

// GetByHost retrieves all discoveries for a host star, oldest first.
func (s *DiscoveryStore) GetByHost(_ context.Context, host string) ([]*domain.DiscoveredObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DiscoveredObject
	for _, obj := range s.data {
		if obj.Host == host {
			objCopy := *obj
			result = append(result, &objCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DiscoveredAt.Equal(result[j].DiscoveredAt) {
			return result[i].DiscoveredAt.Before(result[j].DiscoveredAt)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ExistsByName reports whether a discovery with the exact name exists.
func (s *DiscoveryStore) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[name]
	return exists, nil
}

// ExistsByHostPeriod reports whether the host already has a discovery whose
// period is within the relative tolerance of periodDays.
func (s *DiscoveryStore) ExistsByHostPeriod(_ context.Context, host string, periodDays, tolerance float64) (bool, error) {
	if periodDays <= 0 {
		return false, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, obj := range s.data {
		if obj.Host != host {
			continue
		}
		if math.Abs(obj.PeriodDays-periodDays)/periodDays < tolerance {
			return true, nil
		}
	}
	return false, nil
}

// List retrieves discoveries newest first.
func (s *DiscoveryStore) List(_ context.Context, limit int) ([]*domain.DiscoveredObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DiscoveredObject, 0, len(s.data))
	for _, obj := range s.data {
		objCopy := *obj
		result = append(result, &objCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DiscoveredAt.Equal(result[j].DiscoveredAt) {
			return result[i].DiscoveredAt.After(result[j].DiscoveredAt)
		}
		return result[i].Name < result[j].Name
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
