package idhash

import "testing"

func TestComputeAnalysisID(t *testing.T) {
	id := ComputeAnalysisID("TIC 1234", 1000, 0.0, 27.0)
	if len(id) != 64 {
		t.Fatalf("Expected 64-character hash, got %d", len(id))
	}

	// Deterministic: same inputs, same ID.
	if again := ComputeAnalysisID("TIC 1234", 1000, 0.0, 27.0); again != id {
		t.Error("Expected identical inputs to produce the same ID")
	}

	// Any field change must change the ID.
	variants := []string{
		ComputeAnalysisID("TIC 9999", 1000, 0.0, 27.0),
		ComputeAnalysisID("TIC 1234", 999, 0.0, 27.0),
		ComputeAnalysisID("TIC 1234", 1000, 0.1, 27.0),
		ComputeAnalysisID("TIC 1234", 1000, 0.0, 28.0),
	}
	for i, v := range variants {
		if v == id {
			t.Errorf("Variant %d collided with the base ID", i)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("abcdef0123456789"); got != "abcdef01" {
		t.Errorf("Expected abcdef01, got %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("Expected short input unchanged, got %q", got)
	}
}
