// Package classify assigns a label and confidence to each detected signal:
// an external model service when reachable, a deterministic rule table when
// not, and a strong-signal override reconciling the verdict with the raw
// detection.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"exoplanet-lab/internal/domain"
)

// DefaultTimeout bounds one prediction call. Any slower response is treated
// as unavailability; the caller falls back locally rather than hanging.
const DefaultTimeout = 5 * time.Second

// Client calls the external classification model service.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a classification service client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PredictRequest is the feature payload the model service expects.
type PredictRequest struct {
	Period   float64 `json:"period"`
	Radius   float64 `json:"radius"`
	Depth    float64 `json:"depth"`
	SNR      float64 `json:"snr"`
	Duration float64 `json:"duration"`
	Dataset  string  `json:"dataset"`
}

// PredictResponse is the model service verdict.
type PredictResponse struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
}

// Predict submits a feature vector for classification. A single attempt:
// any transport or decode failure means the caller should use the fallback.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(raw))
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Classification == "" {
		return nil, fmt.Errorf("model service returned empty classification")
	}
	return &out, nil
}

// Health verifies the model service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("model service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// normalizeLabel maps a service classification string onto a domain label.
// The archive dispositions come back in forms like "CONFIRMED" or
// "FALSE POSITIVE".
func normalizeLabel(s string) (domain.Label, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONFIRMED":
		return domain.LabelConfirmed, true
	case "CANDIDATE":
		return domain.LabelCandidate, true
	case "FALSE POSITIVE", "FALSE_POSITIVE", "FALSEPOSITIVE":
		return domain.LabelFalsePositive, true
	}
	return "", false
}
