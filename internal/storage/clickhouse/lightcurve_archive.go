package clickhouse

import (
	"context"
	"fmt"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

// LightCurveArchive implements storage.LightCurveArchive using ClickHouse.
type LightCurveArchive struct {
	conn *Conn
}

// NewLightCurveArchive creates a new LightCurveArchive.
func NewLightCurveArchive(conn *Conn) *LightCurveArchive {
	return &LightCurveArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.LightCurveArchive = (*LightCurveArchive)(nil)

// InsertBulk adds all points of one analysis in a single batch.
func (s *LightCurveArchive) InsertBulk(ctx context.Context, points []*domain.LightCurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO lightcurve_points (analysis_id, time_days, flux)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.AnalysisID, p.TimeDays, p.Flux); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAnalysisID retrieves archived points ordered by time ASC.
func (s *LightCurveArchive) GetByAnalysisID(ctx context.Context, analysisID string) ([]*domain.LightCurvePoint, error) {
	query := `
		SELECT analysis_id, time_days, flux
		FROM lightcurve_points
		WHERE analysis_id = ?
		ORDER BY time_days ASC
	`

	rows, err := s.conn.Query(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query by analysis id: %w", err)
	}
	defer rows.Close()

	var points []*domain.LightCurvePoint
	for rows.Next() {
		var p domain.LightCurvePoint
		if err := rows.Scan(&p.AnalysisID, &p.TimeDays, &p.Flux); err != nil {
			return nil, fmt.Errorf("scan point row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate point rows: %w", err)
	}

	return points, nil
}
