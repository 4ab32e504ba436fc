package storage

import (
	"context"

	"exoplanet-lab/internal/domain"
)

// DiscoveredObjectStore provides access to discovered_objects storage.
// Records are append-only: this system never mutates or deletes them.
type DiscoveredObjectStore interface {
	// Insert adds a new discovery. Returns ErrDuplicateKey if the name exists.
	Insert(ctx context.Context, obj *domain.DiscoveredObject) error

	// GetByName retrieves a discovery by its unique name.
	// Returns ErrNotFound if it does not exist.
	GetByName(ctx context.Context, name string) (*domain.DiscoveredObject, error)

	// GetByHost retrieves all discoveries for a host star, ordered by
	// discovery time ascending.
	GetByHost(ctx context.Context, host string) ([]*domain.DiscoveredObject, error)

	// ExistsByName reports whether a discovery with the exact name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// ExistsByHostPeriod reports whether the host already has a discovery
	// whose period is within the given relative tolerance of periodDays.
	ExistsByHostPeriod(ctx context.Context, host string, periodDays, tolerance float64) (bool, error)

	// List retrieves discoveries ordered by discovery time descending,
	// newest first. A limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.DiscoveredObject, error)
}

// LightCurveArchive stores the raw samples of analyzed light curves for
// later inspection. Write-heavy, batch oriented.
type LightCurveArchive interface {
	// InsertBulk adds all points of one analysis in a single batch.
	InsertBulk(ctx context.Context, points []*domain.LightCurvePoint) error

	// GetByAnalysisID retrieves archived points ordered by time ascending.
	GetByAnalysisID(ctx context.Context, analysisID string) ([]*domain.LightCurvePoint, error)
}
