// Package engine ties the settings store, the atmospheric state and the
// physics model together. Front ends (CLI, TUI, HTTP) talk to the Engine
// only; it depends on interfaces and is fully testable with fakes.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/location"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/metrics"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/preset"
	"github.com/hammamikhairi/ottoegg/internal/settings"
)

// Presentation thresholds.
const (
	// DefaultDropWarning is the water temperature drop in °C above which
	// the user is told to use more water.
	DefaultDropWarning = 2.0

	coldAmbientC       = 10.0
	weakStoveThreshold = 0.6
)

// Estimate is one calculation as shown to the user.
type Estimate struct {
	Params physics.Params  `json:"params"`
	Result *physics.Result `json:"result"` // nil when the inputs are invalid
	// TempDropWarning is set when adding the eggs cools the water enough
	// to matter.
	TempDropWarning bool `json:"tempDropWarning"`
	// ColdWeatherWarning is set for a weak stove in a cold room, where the
	// pot loses heat faster than the model assumes.
	ColdWeatherWarning bool `json:"coldWeatherWarning"`
}

// OK reports whether the estimate has a result.
func (e Estimate) OK() bool { return e.Result != nil }

// Duration returns the cooking time, or zero without a result.
func (e Estimate) Duration() time.Duration {
	if e.Result == nil {
		return 0
	}
	return e.Result.CookingDuration()
}

// Option configures the engine.
type Option func(*Engine)

// WithMetrics counts calculations and lookups in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDropWarning sets the temperature drop that triggers a warning.
func WithDropWarning(celsius float64) Option {
	return func(e *Engine) { e.dropWarning = celsius }
}

// Engine serves settings and calculations.
type Engine struct {
	// mu serialises load-modify-save cycles on the store.
	mu          sync.Mutex
	store       domain.SettingsStore
	loc         *location.Service
	metrics     *metrics.Registry
	log         *logger.Logger
	dropWarning float64
}

// New creates an engine. Call Init before use to sync the location state
// with the stored settings.
func New(store domain.SettingsStore, loc *location.Service, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		loc:         loc,
		log:         log,
		dropWarning: DefaultDropWarning,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init restores the atmospheric state saved with the settings.
func (e *Engine) Init(ctx context.Context) error {
	s, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	e.loc.Restore(s.Atmosphere())
	e.log.Debug("restored atmosphere: %.1f hPa (%s)", s.Pressure, s.PressureSource)
	return nil
}

// Settings returns the current settings.
func (e *Engine) Settings(ctx context.Context) (*domain.Settings, error) {
	return e.store.Load(ctx)
}

// Set changes one setting by name. Pressure and boiling point go through
// the location service so the derived values follow.
func (e *Engine) Set(ctx context.Context, key, value string) (*domain.Settings, error) {
	switch key {
	case "pressure", "boilingPoint":
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", key, value, domain.ErrInvalidValue)
		}
		if key == "pressure" {
			_, err = e.SetPressure(ctx, v)
		} else {
			_, err = e.SetBoilingPoint(ctx, v)
		}
		if err != nil {
			return nil, err
		}
		return e.store.Load(ctx)
	}

	return e.Update(ctx, func(s *domain.Settings) error {
		return settings.Set(s, key, value)
	})
}

// Update applies fn to the stored settings and saves the result. Nothing
// is saved if fn fails.
func (e *Engine) Update(ctx context.Context, fn func(*domain.Settings) error) (*domain.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	e.loc.Restore(s.Atmosphere())
	return s, nil
}

// Reset drops every stored setting and returns the defaults.
func (e *Engine) Reset(ctx context.Context) (*domain.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting settings: %w", err)
	}
	e.loc.Reset()
	e.log.Info("settings reset to defaults")
	d := domain.DefaultSettings()
	return &d, nil
}

// Params builds the physics inputs from settings. An unknown pot material
// counts as steel.
func Params(s *domain.Settings) physics.Params {
	return physics.Params{
		EggMassGrams:      s.Weight,
		StartTempC:        s.StartTemp,
		TargetTempC:       s.TargetTemp,
		BoilingPointC:     s.BoilingPoint,
		EggCount:          s.EggCount,
		WaterVolumeLiters: s.WaterVolume,
		StovePowerWatts:   s.StovePower,
		StoveEfficiency:   s.StoveEfficiency,
		PotMassKg:         s.PotWeight,
		PotSpecificHeat:   preset.HeatCapacity(s.PotMaterial),
		WaterStartTempC:   s.WaterStartTemp,
		AmbientTempC:      s.AmbientTemp,
	}
}

// Evaluate runs the model on p and applies the warning thresholds.
func (e *Engine) Evaluate(p physics.Params) Estimate {
	est := Estimate{
		Params:             p,
		ColdWeatherWarning: p.AmbientTempC < coldAmbientC && p.StoveEfficiency < weakStoveThreshold,
	}

	r, ok := physics.Calculate(p)
	if !ok {
		e.metrics.InvalidInput()
		e.log.Debug("no result for %+v", p)
		return est
	}

	est.Result = &r
	est.TempDropWarning = r.TempDropC > e.dropWarning
	e.metrics.CalculationDone(r.CookingDuration())
	return est
}

// Calculate evaluates the stored settings.
func (e *Engine) Calculate(ctx context.Context) (Estimate, error) {
	s, err := e.store.Load(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("loading settings: %w", err)
	}
	return e.Evaluate(Params(s)), nil
}

// Atmosphere returns the current atmospheric state.
func (e *Engine) Atmosphere() domain.AtmosphericState {
	return e.loc.State()
}

// DetectLocation looks up the pressure at c and stores it.
func (e *Engine) DetectLocation(ctx context.Context, c domain.Coordinates) (domain.AtmosphericState, error) {
	st, err := e.loc.Detect(ctx, c)
	if err != nil {
		e.metrics.WeatherFailed()
		return st, err
	}
	return st, e.persistAtmosphere(ctx, st)
}

// SetPressure stores a manually entered pressure.
func (e *Engine) SetPressure(ctx context.Context, hPa float64) (domain.AtmosphericState, error) {
	st, err := e.loc.SetManualPressure(hPa)
	if err != nil {
		return st, err
	}
	return st, e.persistAtmosphere(ctx, st)
}

// SetBoilingPoint stores a manually entered boiling point.
func (e *Engine) SetBoilingPoint(ctx context.Context, celsius float64) (domain.AtmosphericState, error) {
	st, err := e.loc.SetManualBoilingPoint(celsius)
	if err != nil {
		return st, err
	}
	return st, e.persistAtmosphere(ctx, st)
}

func (e *Engine) persistAtmosphere(ctx context.Context, st domain.AtmosphericState) error {
	_, err := e.Update(ctx, func(s *domain.Settings) error {
		s.SetAtmosphere(st)
		return nil
	})
	return err
}
