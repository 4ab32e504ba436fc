package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exoplanet-lab/internal/domain"
)

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		if req.Period != 3.5 || req.Dataset != domain.DatasetTESS {
			t.Errorf("Unexpected payload: %+v", req)
		}

		json.NewEncoder(w).Encode(PredictResponse{
			Classification: "CANDIDATE",
			Confidence:     0.87,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Predict(context.Background(), PredictRequest{
		Period:  3.5,
		Radius:  1.2,
		Depth:   5000,
		SNR:     8,
		Dataset: domain.DatasetTESS,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if resp.Classification != "CANDIDATE" || resp.Confidence != 0.87 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestClient_PredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Predict(context.Background(), PredictRequest{}); err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
}

func TestClient_PredictTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	if _, err := client.Predict(context.Background(), PredictRequest{}); err == nil {
		t.Fatal("Expected a timeout error")
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Label
		ok   bool
	}{
		{"CONFIRMED", domain.LabelConfirmed, true},
		{"confirmed", domain.LabelConfirmed, true},
		{" Candidate ", domain.LabelCandidate, true},
		{"FALSE POSITIVE", domain.LabelFalsePositive, true},
		{"FALSE_POSITIVE", domain.LabelFalsePositive, true},
		{"FALSEPOSITIVE", domain.LabelFalsePositive, true},
		{"maybe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizeLabel(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("normalizeLabel(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
