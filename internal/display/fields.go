package display

import (
	"fmt"
	"math"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/preset"
	"github.com/hammamikhairi/ottoegg/internal/settings"
	"github.com/hammamikhairi/ottoegg/internal/units"
)

// field is one adjustable row of the form.
type field struct {
	label string // i18n key
	// adjust moves the value one step in dir (-1 or +1).
	adjust func(s *domain.Settings, dir int)
	// show renders the current value.
	show func(s *domain.Settings, p units.Preferences, t func(string) string) string
}

// Slider ranges.
const (
	minWeight, maxWeight       = 40.0, 90.0
	minEggs, maxEggs           = 1, 8
	minWater, maxWater         = 0.5, 3.0
	minPower, maxPower         = 500.0, 3500.0
	powerStep                  = 100.0
	minPotWeight, maxPotWeight = 0.3, 3.0
	minWaterTemp, maxWaterTemp = 2.0, 40.0
	minAmbient, maxAmbient     = -10.0, 35.0
	minPressure, maxPressure   = 870.0, 1084.0
	tenthStep, wholeStep       = 0.1, 1.0
)

// step moves v by dir*size, snaps to the step grid and clamps.
func step(v float64, dir int, size, lo, hi float64) float64 {
	v = math.Round((v+float64(dir)*size)/size) * size
	v = math.Round(v*1e6) / 1e6
	return math.Max(lo, math.Min(hi, v))
}

func slider(label string, ptr func(*domain.Settings) *float64, size, lo, hi float64,
	show func(v float64, p units.Preferences) string) field {
	return field{
		label: label,
		adjust: func(s *domain.Settings, dir int) {
			f := ptr(s)
			*f = step(*f, dir, size, lo, hi)
		},
		show: func(s *domain.Settings, p units.Preferences, _ func(string) string) string {
			return show(*ptr(s), p)
		},
	}
}

// cycle returns a field that steps through ids and stores the choice
// with settings.Set, so implied values follow.
func cycle(label, key string, ids func() []string, current func(*domain.Settings) string,
	name func(id string) string) field {
	return field{
		label: label,
		adjust: func(s *domain.Settings, dir int) {
			all := ids()
			i := preset.Cycle(preset.Index(all, current(s)), dir, len(all))
			_ = settings.Set(s, key, all[i]) // ids come from the catalog
		},
		show: func(s *domain.Settings, _ units.Preferences, t func(string) string) string {
			return t(name(current(s)))
		},
	}
}

func temp(v float64, p units.Preferences) string { return units.FormatTemp(v, p.Temp) }

var fields = []field{
	cycle("consistency", "consistency", preset.ConsistencyIDs,
		func(s *domain.Settings) string { return s.Consistency },
		func(id string) string {
			c, err := preset.Consistency(id)
			if err != nil {
				return id
			}
			return c.NameKey
		}),
	{
		label: "eggCount",
		adjust: func(s *domain.Settings, dir int) {
			s.EggCount = max(minEggs, min(maxEggs, s.EggCount+dir))
		},
		show: func(s *domain.Settings, _ units.Preferences, _ func(string) string) string {
			return fmt.Sprintf("%d", s.EggCount)
		},
	},
	{
		label: "eggSize",
		adjust: func(s *domain.Settings, dir int) {
			sizes := preset.EggSizes()
			i := nearestSize(sizes, s.Weight)
			if sizes[i].WeightGrams == s.Weight {
				i = preset.Cycle(i, dir, len(sizes))
			}
			s.Weight = sizes[i].WeightGrams
		},
		show: func(s *domain.Settings, _ units.Preferences, _ func(string) string) string {
			for _, e := range preset.EggSizes() {
				if e.WeightGrams == s.Weight {
					return e.Name
				}
			}
			return "–"
		},
	},
	slider("eggWeight", func(s *domain.Settings) *float64 { return &s.Weight }, wholeStep, minWeight, maxWeight,
		func(v float64, p units.Preferences) string { return units.FormatWeight(v, p.Weight) }),
	{
		label: "startTemp",
		adjust: func(s *domain.Settings, dir int) {
			temps := preset.StartTemps()
			i := 0
			for j, st := range temps {
				if st.TempC == s.StartTemp {
					i = preset.Cycle(j, dir, len(temps))
					break
				}
			}
			s.StartTemp = temps[i].TempC
		},
		show: func(s *domain.Settings, p units.Preferences, t func(string) string) string {
			for _, st := range preset.StartTemps() {
				if st.TempC == s.StartTemp {
					return t(st.NameKey) + " " + temp(s.StartTemp, p)
				}
			}
			return temp(s.StartTemp, p)
		},
	},
	slider("waterVolume", func(s *domain.Settings) *float64 { return &s.WaterVolume }, tenthStep, minWater, maxWater,
		func(v float64, p units.Preferences) string { return units.FormatVolume(v, p.Volume) }),
	cycle("stoveType", "stoveType", preset.StoveIDs,
		func(s *domain.Settings) string { return s.StoveType },
		func(id string) string {
			st, err := preset.Stove(id)
			if err != nil {
				return id
			}
			return st.NameKey
		}),
	slider("stovePower", func(s *domain.Settings) *float64 { return &s.StovePower }, powerStep, minPower, maxPower,
		func(v float64, _ units.Preferences) string { return fmt.Sprintf("%.0f W", v) }),
	cycle("potMaterial", "potMaterial", preset.MaterialIDs,
		func(s *domain.Settings) string { return s.PotMaterial },
		func(id string) string {
			m, err := preset.PotMaterial(id)
			if err != nil {
				return id
			}
			return m.NameKey
		}),
	slider("potWeight", func(s *domain.Settings) *float64 { return &s.PotWeight }, tenthStep, minPotWeight, maxPotWeight,
		func(v float64, p units.Preferences) string { return units.FormatWeight(v*1000, p.Weight) }),
	slider("waterTemp", func(s *domain.Settings) *float64 { return &s.WaterStartTemp }, wholeStep, minWaterTemp, maxWaterTemp, temp),
	slider("ambientTemp", func(s *domain.Settings) *float64 { return &s.AmbientTemp }, wholeStep, minAmbient, maxAmbient, temp),
	{
		label: "airPressure",
		adjust: func(s *domain.Settings, dir int) {
			p := step(s.Pressure, dir, wholeStep, minPressure, maxPressure)
			s.SetAtmosphere(domain.AtmosphericState{
				PressureHPa:    p,
				BoilingPointC:  physics.BoilingPointFromPressure(p),
				AltitudeMeters: physics.AltitudeFromPressure(p),
				Source:         domain.PressureManual,
			})
		},
		show: func(s *domain.Settings, p units.Preferences, _ func(string) string) string {
			return units.FormatPressure(s.Pressure, p.Pressure)
		},
	},
}

// nearestSize returns the index of the egg size closest to grams.
func nearestSize(sizes []domain.EggSize, grams float64) int {
	best := 0
	for i, e := range sizes {
		if math.Abs(e.WeightGrams-grams) < math.Abs(sizes[best].WeightGrams-grams) {
			best = i
		}
	}
	return best
}
