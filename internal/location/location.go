// Package location tracks the air pressure the eggs are cooked under. The
// pressure comes from a weather lookup at the device position or from
// manual entry; boiling point and altitude are derived from it.
package location

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/physics"
)

// Range accepted for manual pressure entry: roughly the lowest and highest
// sea-level-corrected pressures ever recorded.
const (
	MinPressureHPa = 870.0
	MaxPressureHPa = 1084.0
)

// minDeviceAltitude rejects the bogus values some GPS chips report
// before a fix.
const minDeviceAltitude = -100.0

// Service holds the current atmospheric state. Safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	state   domain.AtmosphericState
	weather domain.PressureFetcher
	places  domain.PlaceNamer // optional
	log     *logger.Logger
}

// New creates a Service at the standard atmosphere. places may be nil.
func New(weather domain.PressureFetcher, places domain.PlaceNamer, log *logger.Logger) *Service {
	return &Service{
		state:   domain.StandardAtmosphere(),
		weather: weather,
		places:  places,
		log:     log,
	}
}

// State returns the current atmospheric state.
func (s *Service) State() domain.AtmosphericState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Restore replaces the state, e.g. with values loaded from settings.
func (s *Service) Restore(st domain.AtmosphericState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Reset returns to the standard atmosphere.
func (s *Service) Reset() domain.AtmosphericState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StandardAtmosphere()
	return s.state
}

// Detect looks up the surface pressure at c. Altitude comes from the
// device if it reported a plausible one, else from the weather service's
// grid elevation, else from the barometric formula. The place name is
// best effort: a failed lookup keeps the previous name. On a failed
// pressure lookup the state is left unchanged.
func (s *Service) Detect(ctx context.Context, c domain.Coordinates) (domain.AtmosphericState, error) {
	if s.weather == nil {
		return s.State(), fmt.Errorf("%w: no weather service configured", domain.ErrWeatherUnavailable)
	}

	reading, err := s.weather.SurfacePressure(ctx, c.Latitude, c.Longitude)
	if err != nil {
		s.log.Warn("pressure lookup at %.4f,%.4f failed: %v", c.Latitude, c.Longitude, err)
		return s.State(), err
	}
	if !isFinite(reading.PressureHPa) || reading.PressureHPa <= 0 {
		return s.State(), fmt.Errorf("%w: implausible pressure %v", domain.ErrWeatherUnavailable, reading.PressureHPa)
	}

	next := domain.AtmosphericState{
		PressureHPa:    math.Round(reading.PressureHPa*10) / 10,
		BoilingPointC:  physics.BoilingPointFromPressure(reading.PressureHPa),
		AltitudeMeters: pickAltitude(c.Altitude, reading),
		Source:         domain.PressureGPS,
		PlaceName:      s.State().PlaceName,
	}

	if s.places != nil {
		name, err := s.places.PlaceName(ctx, c.Latitude, c.Longitude)
		// A canceled lookup still keeps the pressure already fetched.
		if err == nil {
			next.PlaceName = name
		} else {
			s.log.Debug("place name lookup skipped: %v", err)
		}
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.log.Info("detected %.1f hPa, boiling point %.1f°C, altitude %dm", next.PressureHPa, next.BoilingPointC, next.AltitudeMeters)
	return next, nil
}

func pickAltitude(device *float64, r *domain.SurfaceReading) int {
	if device != nil && isFinite(*device) && *device > minDeviceAltitude {
		return int(math.Floor(*device + 0.5))
	}
	if r.ElevationMeters != nil && isFinite(*r.ElevationMeters) {
		return int(math.Floor(*r.ElevationMeters + 0.5))
	}
	return physics.AltitudeFromPressure(r.PressureHPa)
}

// SetManualPressure sets the pressure by hand, clamped to the accepted
// range, and derives boiling point and altitude from it.
func (s *Service) SetManualPressure(p float64) (domain.AtmosphericState, error) {
	if !isFinite(p) {
		return s.State(), fmt.Errorf("pressure %v: %w", p, domain.ErrInvalidValue)
	}
	p = math.Max(MinPressureHPa, math.Min(MaxPressureHPa, p))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.AtmosphericState{
		PressureHPa:    p,
		BoilingPointC:  physics.BoilingPointFromPressure(p),
		AltitudeMeters: physics.AltitudeFromPressure(p),
		Source:         domain.PressureManual,
	}
	s.log.Debug("manual pressure %.1f hPa", p)
	return s.state, nil
}

// SetManualBoilingPoint sets the boiling point by hand and derives the
// pressure, then the altitude, from it.
func (s *Service) SetManualBoilingPoint(bp float64) (domain.AtmosphericState, error) {
	if !isFinite(bp) {
		return s.State(), fmt.Errorf("boiling point %v: %w", bp, domain.ErrInvalidValue)
	}
	p := physics.PressureFromBoilingPoint(bp)
	if p <= 0 {
		return s.State(), fmt.Errorf("boiling point %v°C implies no atmosphere: %w", bp, domain.ErrInvalidValue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.AtmosphericState{
		PressureHPa:    p,
		BoilingPointC:  bp,
		AltitudeMeters: physics.AltitudeFromPressure(p),
		Source:         domain.PressureManual,
	}
	s.log.Debug("manual boiling point %.1f°C (%.1f hPa)", bp, p)
	return s.state, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
