// Package meteo fetches the current surface pressure for a coordinate from
// an Open-Meteo compatible forecast endpoint.
package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// DefaultEndpoint is the public Open-Meteo forecast API.
const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// Compile-time interface check.
var _ domain.PressureFetcher = (*Client)(nil)

// forecast is the subset of the response we read.
type forecast struct {
	Elevation *float64 `json:"elevation"`
	Current   *struct {
		SurfacePressure *float64 `json:"surface_pressure"`
	} `json:"current"`
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the forecast URL (tests, self-hosted instances).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client talks to the forecast API.
type Client struct {
	endpoint string
	http     *http.Client
	log      *logger.Logger
}

// New creates a forecast client.
func New(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SurfacePressure returns the current surface pressure at lat/lon and the
// grid elevation when the service reports one.
func (c *Client) SurfacePressure(ctx context.Context, lat, lon float64) (*domain.SurfaceReading, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("meteo: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "surface_pressure")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("meteo: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("GET %s", u.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meteo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w (%d)", domain.ErrWeatherUnavailable, resp.StatusCode)
	}

	var f forecast
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("meteo: decode response: %w", err)
	}
	if f.Current == nil || f.Current.SurfacePressure == nil {
		return nil, fmt.Errorf("%w: no surface pressure in response", domain.ErrWeatherUnavailable)
	}

	r := &domain.SurfaceReading{
		PressureHPa:     *f.Current.SurfacePressure,
		ElevationMeters: f.Elevation,
	}
	c.log.Debug("surface pressure %.1f hPa at %.4f,%.4f", r.PressureHPa, lat, lon)
	return r, nil
}
