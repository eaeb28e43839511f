// Package settings persists domain.Settings as a flat key/value map and
// gives string access to each key for the CLI and HTTP API.
package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/preset"
	"github.com/hammamikhairi/ottoegg/internal/units"
)

// key describes one persisted setting.
type key struct {
	name string
	// ptr returns the field the key is stored in; JSON decoding goes
	// straight into it.
	ptr func(s *domain.Settings) any
	// set parses a user-supplied string.
	set func(s *domain.Settings, raw string) error
}

var registry = []key{
	floatKey("weight", func(s *domain.Settings) *float64 { return &s.Weight }, positive),
	floatKey("startTemp", func(s *domain.Settings) *float64 { return &s.StartTemp }, nil),
	floatKey("targetTemp", func(s *domain.Settings) *float64 { return &s.TargetTemp }, nil),
	{
		name: "consistency",
		ptr:  func(s *domain.Settings) any { return &s.Consistency },
		set: func(s *domain.Settings, raw string) error {
			c, err := preset.Consistency(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			s.Consistency = c.ID
			s.TargetTemp = c.TargetTempC
			return nil
		},
	},
	{
		name: "eggCount",
		ptr:  func(s *domain.Settings) any { return &s.EggCount },
		set: func(s *domain.Settings, raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 0 {
				return fmt.Errorf("eggCount %q: %w", raw, domain.ErrInvalidValue)
			}
			s.EggCount = n
			return nil
		},
	},
	floatKey("waterVolume", func(s *domain.Settings) *float64 { return &s.WaterVolume }, positive),
	{
		name: "stoveType",
		ptr:  func(s *domain.Settings) any { return &s.StoveType },
		set: func(s *domain.Settings, raw string) error {
			st, err := preset.Stove(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			s.StoveType = st.ID
			s.StoveEfficiency = st.Efficiency
			s.StovePower = st.DefaultPowerW
			return nil
		},
	},
	floatKey("stovePower", func(s *domain.Settings) *float64 { return &s.StovePower }, positive),
	floatKey("stoveEfficiency", func(s *domain.Settings) *float64 { return &s.StoveEfficiency }, fraction),
	floatKey("potWeight", func(s *domain.Settings) *float64 { return &s.PotWeight }, nonNegative),
	{
		name: "potMaterial",
		ptr:  func(s *domain.Settings) any { return &s.PotMaterial },
		set: func(s *domain.Settings, raw string) error {
			m, err := preset.PotMaterial(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			s.PotMaterial = m.ID
			return nil
		},
	},
	floatKey("waterStartTemp", func(s *domain.Settings) *float64 { return &s.WaterStartTemp }, nil),
	floatKey("ambientTemp", func(s *domain.Settings) *float64 { return &s.AmbientTemp }, nil),
	{
		name: "altitude",
		ptr:  func(s *domain.Settings) any { return &s.Altitude },
		set: func(s *domain.Settings, raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("altitude %q: %w", raw, domain.ErrInvalidValue)
			}
			s.Altitude = n
			return nil
		},
	},
	floatKey("pressure", func(s *domain.Settings) *float64 { return &s.Pressure }, positive),
	floatKey("boilingPoint", func(s *domain.Settings) *float64 { return &s.BoilingPoint }, nil),
	{
		name: "locationName",
		ptr:  func(s *domain.Settings) any { return &s.LocationName },
		set: func(s *domain.Settings, raw string) error {
			s.LocationName = strings.TrimSpace(raw)
			return nil
		},
	},
	{
		name: "pressureSource",
		ptr:  func(s *domain.Settings) any { return &s.PressureSource },
		set: func(s *domain.Settings, raw string) error {
			switch src := domain.PressureSource(strings.TrimSpace(raw)); src {
			case domain.PressureDefault, domain.PressureGPS, domain.PressureManual:
				s.PressureSource = src
				return nil
			}
			return fmt.Errorf("pressureSource %q: %w", raw, domain.ErrInvalidValue)
		},
	},
	{
		name: "tempUnit",
		ptr:  func(s *domain.Settings) any { return &s.TempUnit },
		set: func(s *domain.Settings, raw string) (err error) {
			s.TempUnit, err = keepOnError(s.TempUnit)(units.ParseTemp(raw))
			return err
		},
	},
	{
		name: "volumeUnit",
		ptr:  func(s *domain.Settings) any { return &s.VolumeUnit },
		set: func(s *domain.Settings, raw string) (err error) {
			s.VolumeUnit, err = keepOnError(s.VolumeUnit)(units.ParseVolume(raw))
			return err
		},
	},
	{
		name: "weightUnit",
		ptr:  func(s *domain.Settings) any { return &s.WeightUnit },
		set: func(s *domain.Settings, raw string) (err error) {
			s.WeightUnit, err = keepOnError(s.WeightUnit)(units.ParseWeight(raw))
			return err
		},
	},
	{
		name: "pressureUnit",
		ptr:  func(s *domain.Settings) any { return &s.PressureUnit },
		set: func(s *domain.Settings, raw string) (err error) {
			s.PressureUnit, err = keepOnError(s.PressureUnit)(units.ParsePressure(raw))
			return err
		},
	},
	{
		name: "notificationPermission",
		ptr:  func(s *domain.Settings) any { return &s.NotificationPermission },
		set: func(s *domain.Settings, raw string) error {
			switch v := strings.TrimSpace(raw); v {
			case "default", "granted", "denied":
				s.NotificationPermission = v
				return nil
			}
			return fmt.Errorf("notificationPermission %q: %w", raw, domain.ErrInvalidValue)
		},
	},
}

func keepOnError[T any](old T) func(T, error) (T, error) {
	return func(v T, err error) (T, error) {
		if err != nil {
			return old, err
		}
		return v, nil
	}
}

type check func(float64) bool

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func fraction(v float64) bool    { return v > 0 && v <= 1 }

func floatKey(name string, field func(*domain.Settings) *float64, ok check) key {
	return key{
		name: name,
		ptr:  func(s *domain.Settings) any { return field(s) },
		set: func(s *domain.Settings, raw string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || (ok != nil && !ok(v)) {
				return fmt.Errorf("%s %q: %w", name, raw, domain.ErrInvalidValue)
			}
			*field(s) = v
			return nil
		},
	}
}

func lookup(name string) (key, bool) {
	for _, k := range registry {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// Keys lists every setting name in display order.
func Keys() []string {
	out := make([]string, len(registry))
	for i, k := range registry {
		out[i] = k.name
	}
	return out
}

// Get renders one setting as a string.
func Get(s *domain.Settings, name string) (string, error) {
	k, ok := lookup(name)
	if !ok {
		return "", fmt.Errorf("%q: %w", name, domain.ErrUnknownSetting)
	}
	switch v := k.ptr(s).(type) {
	case *float64:
		return strconv.FormatFloat(*v, 'f', -1, 64), nil
	case *int:
		return strconv.Itoa(*v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return string(raw), nil
		}
		return str, nil
	}
}

// Set parses raw and stores it under name. Stove types and consistencies
// also update the values they imply.
func Set(s *domain.Settings, name, raw string) error {
	k, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownSetting)
	}
	return k.set(s, raw)
}

// Map renders every setting as a string, keyed by name.
func Map(s *domain.Settings) map[string]string {
	out := make(map[string]string, len(registry))
	for _, k := range registry {
		v, _ := Get(s, k.name)
		out[k.name] = v
	}
	return out
}
