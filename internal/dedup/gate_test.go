package dedup

import (
	"context"
	"testing"
	"time"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage/memory"
)

func seedStore(t *testing.T) *memory.DiscoveryStore {
	t.Helper()
	store := memory.NewDiscoveryStore()
	err := store.Insert(context.Background(), &domain.DiscoveredObject{
		Name:         "TIC 1234 b",
		Host:         "TIC 1234",
		PeriodDays:   10.0,
		RadiusEarth:  1.5,
		DepthPPM:     4000,
		Label:        domain.LabelCandidate,
		Probability:  0.7,
		Dataset:      domain.DatasetTESS,
		DiscoveredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Seed insert failed: %v", err)
	}
	return store
}

func TestGate_ExactNameIsDuplicate(t *testing.T) {
	gate := NewGate(seedStore(t))

	dup, err := gate.IsDuplicate(context.Background(), &domain.DiscoveredObject{
		Name:       "TIC 1234 b",
		Host:       "TIC 9999",
		PeriodDays: 55.0,
	})
	if err != nil {
		t.Fatalf("IsDuplicate failed: %v", err)
	}
	if !dup {
		t.Error("Expected exact-name match to be a duplicate")
	}
}

func TestGate_SameHostCloseperiodIsDuplicate(t *testing.T) {
	gate := NewGate(seedStore(t))

	// 10.05 days is 0.5% from the stored 10.0 days, inside the 1% window.
	dup, err := gate.IsDuplicate(context.Background(), &domain.DiscoveredObject{
		Name:       "TIC 1234 c",
		Host:       "TIC 1234",
		PeriodDays: 10.05,
	})
	if err != nil {
		t.Fatalf("IsDuplicate failed: %v", err)
	}
	if !dup {
		t.Error("Expected same host with a period within 1% to be a duplicate")
	}
}

func TestGate_SameHostDistantPeriodIsNew(t *testing.T) {
	gate := NewGate(seedStore(t))

	// 10.2 days is 2% away, outside the window.
	dup, err := gate.IsDuplicate(context.Background(), &domain.DiscoveredObject{
		Name:       "TIC 1234 c",
		Host:       "TIC 1234",
		PeriodDays: 10.2,
	})
	if err != nil {
		t.Fatalf("IsDuplicate failed: %v", err)
	}
	if dup {
		t.Error("Expected a period 2% away to be a new discovery")
	}
}

func TestGate_UnknownHostSkipsPeriodCheck(t *testing.T) {
	store := memory.NewDiscoveryStore()
	err := store.Insert(context.Background(), &domain.DiscoveredObject{
		Name:       "EXO-aaaa1111 b",
		Host:       domain.UnknownHost,
		PeriodDays: 10.0,
	})
	if err != nil {
		t.Fatalf("Seed insert failed: %v", err)
	}
	gate := NewGate(store)

	// Identical period but no resolvable host: only exact names collide.
	dup, err := gate.IsDuplicate(context.Background(), &domain.DiscoveredObject{
		Name:       "EXO-bbbb2222 b",
		Host:       domain.UnknownHost,
		PeriodDays: 10.0,
	})
	if err != nil {
		t.Fatalf("IsDuplicate failed: %v", err)
	}
	if dup {
		t.Error("Host-less detections must not be period-deduplicated")
	}
}

func TestGate_DifferentHostSamePeriodIsNew(t *testing.T) {
	gate := NewGate(seedStore(t))

	dup, err := gate.IsDuplicate(context.Background(), &domain.DiscoveredObject{
		Name:       "TIC 5678 b",
		Host:       "TIC 5678",
		PeriodDays: 10.0,
	})
	if err != nil {
		t.Fatalf("IsDuplicate failed: %v", err)
	}
	if dup {
		t.Error("Same period around a different host must be a new discovery")
	}
}
