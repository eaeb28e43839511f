package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/location"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/metrics"
	"github.com/hammamikhairi/ottoegg/internal/settings"
)

type fakeWeather struct {
	reading *domain.SurfaceReading
	err     error
}

func (f *fakeWeather) SurfacePressure(ctx context.Context, lat, lon float64) (*domain.SurfaceReading, error) {
	return f.reading, f.err
}

type fakePlaces struct{ name string }

func (f fakePlaces) PlaceName(ctx context.Context, lat, lon float64) (string, error) {
	return f.name, nil
}

func setupEngine(t *testing.T, w domain.PressureFetcher) (*Engine, *metrics.Registry, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := settings.NewMemoryStore(log)
	loc := location.New(w, fakePlaces{name: "Zermatt"}, log)
	m := metrics.New()
	eng := New(store, loc, log, WithMetrics(m))
	ctx := context.Background()
	if err := eng.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	return eng, m, ctx
}

func TestCalculateDefaults(t *testing.T) {
	eng, m, ctx := setupEngine(t, nil)

	est, err := eng.Calculate(ctx)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !est.OK() {
		t.Fatal("defaults should give a result")
	}
	if est.Result.CookingTimeMinutes != 5.568866724538104 {
		t.Errorf("cooking time = %v", est.Result.CookingTimeMinutes)
	}
	if !est.TempDropWarning {
		t.Errorf("a %.1f°C drop should warn", est.Result.TempDropC)
	}
	if est.ColdWeatherWarning {
		t.Error("22°C on induction is not cold weather")
	}
	if est.Duration().Seconds() != 334 {
		t.Errorf("duration = %v", est.Duration())
	}
	if m.Value(metrics.Calculations) != 1 {
		t.Errorf("calculations = %v", m.Value(metrics.Calculations))
	}
}

func TestEvaluateWarnings(t *testing.T) {
	eng, m, ctx := setupEngine(t, nil)

	tests := []struct {
		name     string
		key, val string
		drop     bool
		cold     bool
		ok       bool
	}{
		{"plenty of water", "waterVolume", "3", false, false, true},
		{"cold camping stove", "ambientTemp", "5", true, true, true},
		{"target above boiling", "targetTemp", "101", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.Reset(ctx); err != nil {
				t.Fatal(err)
			}
			if tt.name == "cold camping stove" {
				if _, err := eng.Set(ctx, "stoveType", "camping"); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := eng.Set(ctx, tt.key, tt.val); err != nil {
				t.Fatalf("set %s: %v", tt.key, err)
			}
			est, err := eng.Calculate(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if est.OK() != tt.ok {
				t.Fatalf("ok = %v, want %v", est.OK(), tt.ok)
			}
			if tt.ok && est.TempDropWarning != tt.drop {
				t.Errorf("drop warning = %v, want %v (drop %.1f)", est.TempDropWarning, tt.drop, est.Result.TempDropC)
			}
			if tt.cold && !est.ColdWeatherWarning {
				t.Error("expected cold weather warning")
			}
		})
	}
	if m.Value(metrics.InvalidInputs) != 1 {
		t.Errorf("invalid inputs = %v", m.Value(metrics.InvalidInputs))
	}
}

func TestParamsUnknownMaterialIsSteel(t *testing.T) {
	s := domain.DefaultSettings()
	s.PotMaterial = "glass"
	if p := Params(&s); p.PotSpecificHeat != 0.50 {
		t.Fatalf("pot specific heat = %v", p.PotSpecificHeat)
	}
	s.PotMaterial = "copper"
	if p := Params(&s); p.PotSpecificHeat != 0.39 {
		t.Fatalf("copper specific heat = %v", p.PotSpecificHeat)
	}
}

func TestSetPersists(t *testing.T) {
	eng, _, ctx := setupEngine(t, nil)

	if _, err := eng.Set(ctx, "stoveType", "gas"); err != nil {
		t.Fatal(err)
	}
	s, _ := eng.Settings(ctx)
	if s.StoveType != "gas" || s.StovePower != 2500 || s.StoveEfficiency != 0.5 {
		t.Fatalf("settings = %+v", s)
	}

	_, err := eng.Set(ctx, "stovePower", "lots")
	if !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("error = %v", err)
	}
	s, _ = eng.Settings(ctx)
	if s.StovePower != 2500 {
		t.Fatal("failed set should not save")
	}

	if _, err := eng.Set(ctx, "nope", "1"); !errors.Is(err, domain.ErrUnknownSetting) {
		t.Fatalf("error = %v", err)
	}
}

func TestSetPressureDerivesAtmosphere(t *testing.T) {
	eng, _, ctx := setupEngine(t, nil)

	s, err := eng.Set(ctx, "pressure", "2000")
	if err != nil {
		t.Fatal(err)
	}
	if s.Pressure != location.MaxPressureHPa || s.BoilingPoint != 102.6 || s.PressureSource != domain.PressureManual {
		t.Fatalf("settings = %+v", s)
	}
	if eng.Atmosphere().PressureHPa != location.MaxPressureHPa {
		t.Fatal("location state not updated")
	}

	s, err = eng.Set(ctx, "boilingPoint", "95.8")
	if err != nil {
		t.Fatal(err)
	}
	if s.Pressure != 899.7 || s.Altitude != 991 {
		t.Fatalf("settings = %+v", s)
	}

	if _, err := eng.Set(ctx, "boilingPoint", "hot"); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("error = %v", err)
	}
}

func TestDetectLocation(t *testing.T) {
	w := &fakeWeather{reading: &domain.SurfaceReading{PressureHPa: 836.47}}
	eng, m, ctx := setupEngine(t, w)

	st, err := eng.DetectLocation(ctx, domain.Coordinates{Latitude: 46.02, Longitude: 7.75})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	s, _ := eng.Settings(ctx)
	if s.Pressure != st.PressureHPa || s.LocationName != "Zermatt" || s.PressureSource != domain.PressureGPS {
		t.Fatalf("settings not updated: %+v", s)
	}

	// Cooking at altitude takes longer than at sea level.
	high, _ := eng.Calculate(ctx)
	if _, err := eng.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	low, _ := eng.Calculate(ctx)
	if high.Result.CookingTimeMinutes <= low.Result.CookingTimeMinutes {
		t.Errorf("altitude %.2f <= sea level %.2f", high.Result.CookingTimeMinutes, low.Result.CookingTimeMinutes)
	}

	w.err = domain.ErrWeatherUnavailable
	if _, err := eng.DetectLocation(ctx, domain.Coordinates{}); !errors.Is(err, domain.ErrWeatherUnavailable) {
		t.Fatalf("error = %v", err)
	}
	if m.Value(metrics.WeatherFailures) != 1 {
		t.Errorf("weather failures = %v", m.Value(metrics.WeatherFailures))
	}
}

func TestInitRestoresAtmosphere(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := settings.NewMemoryStore(log)
	s := domain.DefaultSettings()
	s.Pressure, s.BoilingPoint, s.Altitude, s.PressureSource = 900, 95.8, 989, domain.PressureManual
	if err := store.Save(context.Background(), &s); err != nil {
		t.Fatal(err)
	}

	loc := location.New(nil, nil, log)
	eng := New(store, loc, log)
	if err := eng.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := eng.Atmosphere(); got.PressureHPa != 900 || got.Source != domain.PressureManual {
		t.Fatalf("atmosphere = %+v", got)
	}
}
