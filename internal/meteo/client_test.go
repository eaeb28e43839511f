package meteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(logger.New(logger.LevelOff, nil), WithEndpoint(srv.URL+"/v1/forecast"))
}

func TestSurfacePressure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "46.02" || q.Get("longitude") != "7.75" {
			t.Errorf("unexpected coords %s", r.URL.RawQuery)
		}
		if q.Get("current") != "surface_pressure" {
			t.Errorf("current = %q", q.Get("current"))
		}
		w.Write([]byte(`{"elevation": 1608.0, "current": {"surface_pressure": 836.47}}`))
	})

	r, err := c.SurfacePressure(context.Background(), 46.02, 7.75)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if r.PressureHPa != 836.47 {
		t.Errorf("pressure = %v", r.PressureHPa)
	}
	if r.ElevationMeters == nil || *r.ElevationMeters != 1608 {
		t.Errorf("elevation = %v", r.ElevationMeters)
	}
}

func TestSurfacePressure_NoElevation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"surface_pressure": 1013.2}}`))
	})
	r, err := c.SurfacePressure(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if r.ElevationMeters != nil {
		t.Errorf("elevation should be nil, got %v", *r.ElevationMeters)
	}
}

func TestSurfacePressure_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusInternalServerError, ``, "weather data unavailable (500)"},
		{"rate limited", http.StatusTooManyRequests, ``, "weather data unavailable (429)"},
		{"missing pressure", http.StatusOK, `{"elevation": 3}`, "no surface pressure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.SurfacePressure(context.Background(), 1, 2)
			if !errors.Is(err, domain.ErrWeatherUnavailable) {
				t.Fatalf("error = %v, want ErrWeatherUnavailable", err)
			}
			if got := err.Error(); !strings.Contains(got, tt.want) {
				t.Errorf("error %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestSurfacePressure_Cancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"surface_pressure": 1000}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.SurfacePressure(ctx, 0, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
