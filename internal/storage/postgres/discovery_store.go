package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

// DiscoveryStore implements storage.DiscoveredObjectStore using PostgreSQL.
type DiscoveryStore struct {
	pool *Pool
}

// NewDiscoveryStore creates a new DiscoveryStore.
func NewDiscoveryStore(pool *Pool) *DiscoveryStore {
	return &DiscoveryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DiscoveredObjectStore = (*DiscoveryStore)(nil)

// Insert adds a new discovery. Returns ErrDuplicateKey if the name exists
// and ErrInvalidInput for a missing name or unknown label.
func (s *DiscoveryStore) Insert(ctx context.Context, obj *domain.DiscoveredObject) error {
	if obj == nil || obj.Name == "" || !obj.Label.Valid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO discovered_objects (
			name, host, period_days, radius_earth, depth_ppm, label, probability, dataset, discovered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		obj.Name,
		obj.Host,
		obj.PeriodDays,
		obj.RadiusEarth,
		obj.DepthPPM,
		string(obj.Label),
		obj.Probability,
		obj.Dataset,
		obj.DiscoveredAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert discovery: %w", err)
	}
	return nil
}

// GetByName retrieves a discovery by its unique name.
func (s *DiscoveryStore) GetByName(ctx context.Context, name string) (*domain.DiscoveredObject, error) {
	query := selectColumns + ` WHERE name = $1`

	row := s.pool.QueryRow(ctx, query, name)
	obj, err := scanDiscovery(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get discovery by name: %w", err)
	}
	return obj, nil
}

// GetByHost retrieves all discoveries for a host star.
func (s *DiscoveryStore) GetByHost(ctx context.Context, host string) ([]*domain.DiscoveredObject, error) {
	query := selectColumns + ` WHERE host = $1 ORDER BY discovered_at ASC, name ASC`

	rows, err := s.pool.Query(ctx, query, host)
	if err != nil {
		return nil, fmt.Errorf("get discoveries by host: %w", err)
	}
	defer rows.Close()

	return scanDiscoveries(rows)
}

// ExistsByName reports whether a discovery with the exact name exists.
func (s *DiscoveryStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM discovered_objects WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by name: %w", err)
	}
	return exists, nil
}

// ExistsByHostPeriod reports whether the host already has a discovery whose
// period is within the relative tolerance of periodDays.
func (s *DiscoveryStore) ExistsByHostPeriod(ctx context.Context, host string, periodDays, tolerance float64) (bool, error) {
	if periodDays <= 0 {
		return false, storage.ErrInvalidInput
	}

	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM discovered_objects
			WHERE host = $1 AND abs(period_days - $2) / $2 < $3
		)`, host, periodDays, tolerance,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by host and period: %w", err)
	}
	return exists, nil
}

// List retrieves discoveries newest first.
func (s *DiscoveryStore) List(ctx context.Context, limit int) ([]*domain.DiscoveredObject, error) {
	query := selectColumns + ` ORDER BY discovered_at DESC, name ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list discoveries: %w", err)
	}
	defer rows.Close()

	return scanDiscoveries(rows)
}

const selectColumns = `
	SELECT name, host, period_days, radius_earth, depth_ppm, label, probability, dataset, discovered_at, created_at
	FROM discovered_objects`

// scanDiscovery scans a single row into a DiscoveredObject.
func scanDiscovery(row pgx.Row) (*domain.DiscoveredObject, error) {
	var obj domain.DiscoveredObject
	var labelStr string

	err := row.Scan(
		&obj.Name,
		&obj.Host,
		&obj.PeriodDays,
		&obj.RadiusEarth,
		&obj.DepthPPM,
		&labelStr,
		&obj.Probability,
		&obj.Dataset,
		&obj.DiscoveredAt,
		&obj.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	obj.Label = domain.Label(labelStr)
	return &obj, nil
}

// scanDiscoveries scans multiple rows into a slice of DiscoveredObject.
func scanDiscoveries(rows pgx.Rows) ([]*domain.DiscoveredObject, error) {
	var objects []*domain.DiscoveredObject

	for rows.Next() {
		obj, err := scanDiscovery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discovery row: %w", err)
		}
		objects = append(objects, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discovery rows: %w", err)
	}

	return objects, nil
}
