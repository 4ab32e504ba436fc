// Package catalog looks up host star metadata from the NASA Exoplanet
// Archive TAP service. Lookups are best effort: the analysis pipeline runs
// fine without them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/observability"
)

// DefaultBaseURL is the archive's synchronous TAP endpoint.
const DefaultBaseURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"

// DefaultTimeout bounds one TAP query.
const DefaultTimeout = 10 * time.Second

// Client queries the exoplanet archive TAP service.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the TAP endpoint, mainly for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

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

// NewClient creates an archive TAP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tapRow mirrors the stellarhosts columns we select. The archive returns
// JSON nulls for missing values, hence the pointer fields.
type tapRow struct {
	Hostname string   `json:"hostname"`
	RA       *float64 `json:"ra"`
	Dec      *float64 `json:"dec"`
	VMag     *float64 `json:"sy_vmag"`
	Radius   *float64 `json:"st_rad"`
	Mass     *float64 `json:"st_mass"`
	Teff     *float64 `json:"st_teff"`
}

// LookupHost fetches stellar metadata for a named host. Returns
// storageless (nil, nil) when the archive has no row for the name; an
// error only on transport or decode failure.
func (c *Client) LookupHost(ctx context.Context, host string) (*domain.HostStar, error) {
	host = strings.TrimSpace(host)
	if host == "" || host == domain.UnknownHost {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT hostname, ra, dec, sy_vmag, st_rad, st_mass, st_teff FROM stellarhosts WHERE hostname = '%s'",
		strings.ReplaceAll(host, "'", "''"))

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordCatalogLookup("error")
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.RecordCatalogLookup("error")
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(raw))
	}

	var rows []tapRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		observability.RecordCatalogLookup("error")
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(rows) == 0 {
		observability.RecordCatalogLookup("miss")
		return nil, nil
	}

	observability.RecordCatalogLookup("hit")
	r := rows[0]
	return &domain.HostStar{
		Name:      r.Hostname,
		RA:        r.RA,
		Dec:       r.Dec,
		Magnitude: r.VMag,
		RadiusSun: r.Radius,
		MassSun:   r.Mass,
		TempK:     r.Teff,
	}, nil
}
