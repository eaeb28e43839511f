// Package geocode turns a coordinate into a town name using a Nominatim
// reverse geocoding endpoint. The name is informational only.
package geocode

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

// DefaultEndpoint is the public OpenStreetMap Nominatim reverse API.
const DefaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

// Compile-time interface check.
var _ domain.PlaceNamer = (*Client)(nil)

type reverse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the reverse geocoding URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy asks
// for one that identifies the application.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// Client talks to Nominatim.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	log       *logger.Logger
}

// New creates a reverse geocoding client.
func New(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:  DefaultEndpoint,
		userAgent: "ottoegg/1.0",
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PlaceName returns the city, town or village at lat/lon. Every failure
// is reported as ErrPlaceUnavailable.
func (c *Client) PlaceName(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: bad endpoint: %v", domain.ErrPlaceUnavailable, err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("zoom", "10")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPlaceUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("GET %s", u.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPlaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w (%d)", domain.ErrPlaceUnavailable, resp.StatusCode)
	}

	var r reverse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrPlaceUnavailable, err)
	}

	switch {
	case r.Address.City != "":
		return r.Address.City, nil
	case r.Address.Town != "":
		return r.Address.Town, nil
	case r.Address.Village != "":
		return r.Address.Village, nil
	}
	return "", fmt.Errorf("%w: no settlement at %.4f,%.4f", domain.ErrPlaceUnavailable, lat, lon)
}
