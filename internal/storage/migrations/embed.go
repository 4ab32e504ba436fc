// Package migrations carries the schema files for both backends and applies
// them at startup.
package migrations

import "embed"

// PostgresFS holds the discovered_objects schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the lightcurve_points schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
