// Package dedup decides whether a new detection is a rediscovery of an
// object already in the store.
package dedup

import (
	"context"
	"fmt"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

// PeriodTolerance is the relative period window inside which two
// detections around the same host count as the same object.
const PeriodTolerance = 0.01

// Gate checks candidate discoveries against the persistent store.
type Gate struct {
	store storage.DiscoveredObjectStore
}

// NewGate creates a deduplication gate backed by the given store.
func NewGate(store storage.DiscoveredObjectStore) *Gate {
	return &Gate{store: store}
}

// IsDuplicate reports whether obj matches an existing entry, either by
// exact name or by same host with a period within PeriodTolerance.
// Detections around an unresolved host are matched by name only: a 1%
// period collision between unrelated stars is not a rediscovery.
func (g *Gate) IsDuplicate(ctx context.Context, obj *domain.DiscoveredObject) (bool, error) {
	exists, err := g.store.ExistsByName(ctx, obj.Name)
	if err != nil {
		return false, fmt.Errorf("check name %q: %w", obj.Name, err)
	}
	if exists {
		return true, nil
	}

	if obj.Host == "" || obj.Host == domain.UnknownHost {
		return false, nil
	}

	exists, err = g.store.ExistsByHostPeriod(ctx, obj.Host, obj.PeriodDays, PeriodTolerance)
	if err != nil {
		return false, fmt.Errorf("check host %q period %.4f: %w", obj.Host, obj.PeriodDays, err)
	}
	return exists, nil
}
