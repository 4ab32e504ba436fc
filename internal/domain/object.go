package domain

import "time"

// UnknownHost is the sentinel host identifier for detections that cannot be
// associated with a catalog star. Host-less records are never
// period-deduplicated, only exact-name duplicates are caught.
const UnknownHost = "Unknown"

// DiscoveredObject is a persisted discovery record.
// Corresponds to the discovered_objects table in PostgreSQL.
// Append-only from this system's perspective: never mutated after creation.
type DiscoveredObject struct {
	Name         string    // unique within the store
	Host         string    // host star identifier, UnknownHost if unresolved
	PeriodDays   float64   // orbital period
	RadiusEarth  float64   // planetary radius estimate
	DepthPPM     float64   // transit depth
	Label        Label     // classification verdict
	Probability  float64   // classifier confidence, [0,1]
	Dataset      string    // source dataset tag (kepler | k2 | tess | unknown)
	DiscoveredAt time.Time // discovery timestamp
	CreatedAt    time.Time // record creation timestamp, set by the store
}
