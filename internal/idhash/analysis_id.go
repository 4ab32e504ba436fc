package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeAnalysisID computes a deterministic analysis_id using SHA256.
// Formula: SHA256(external_id|sample_count|first_time|last_time)
// Returns hex-encoded hash (64 characters). The same upload always maps to
// the same ID, which makes re-archiving raw samples idempotent.
func ComputeAnalysisID(externalID string, sampleCount int, firstTime, lastTime float64) string {
	data := fmt.Sprintf("%s|%d|%.9f|%.9f", externalID, sampleCount, firstTime, lastTime)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ShortID returns the first 8 characters of a full hex ID, used for
// human-facing object names when no host identifier is available.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
