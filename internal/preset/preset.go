// Package preset is the built-in household catalog: stove types, pot
// materials, yolk consistencies, egg sizes and start temperatures. Every
// accessor returns a copy, so callers cannot change the catalog.
package preset

import (
	"fmt"

	"github.com/hammamikhairi/ottoegg/internal/domain"
)

// FallbackHeatCapacity is used for a pot material the catalog does not know
// (stainless steel).
const FallbackHeatCapacity = 0.50

var stoves = []domain.StoveType{
	{ID: "induction", NameKey: "stoveInduction", Efficiency: 0.87, DefaultPowerW: 2200},
	{ID: "ceramic", NameKey: "stoveCeramic", Efficiency: 0.70, DefaultPowerW: 1800},
	{ID: "electric", NameKey: "stoveElectric", Efficiency: 0.65, DefaultPowerW: 1500},
	{ID: "gas", NameKey: "stoveGas", Efficiency: 0.50, DefaultPowerW: 2500},
	{ID: "camping", NameKey: "stoveCamping", Efficiency: 0.30, DefaultPowerW: 1000},
}

var materials = []domain.PotMaterial{
	{ID: "steel", NameKey: "materialSteel", HeatCapacity: 0.50},
	{ID: "aluminum", NameKey: "materialAluminum", HeatCapacity: 0.90},
	{ID: "cast_iron", NameKey: "materialCastIron", HeatCapacity: 0.46},
	{ID: "copper", NameKey: "materialCopper", HeatCapacity: 0.39},
	{ID: "ceramic", NameKey: "materialCeramic", HeatCapacity: 0.85},
}

var consistencies = []domain.Consistency{
	{ID: "soft", NameKey: "consistencySoft", TargetTempC: 63, Color: "#FFD700"},
	{ID: "medium", NameKey: "consistencyMedium", TargetTempC: 67, Color: "#FFA500"},
	{ID: "hard-medium", NameKey: "consistencyHardMedium", TargetTempC: 72, Color: "#FF8C00"},
	{ID: "hard", NameKey: "consistencyHard", TargetTempC: 77, Color: "#FF6347"},
}

var eggSizes = []domain.EggSize{
	{Name: "S", WeightGrams: 53},
	{Name: "M", WeightGrams: 58},
	{Name: "L", WeightGrams: 68},
	{Name: "XL", WeightGrams: 78},
}

var startTemps = []domain.StartTemp{
	{NameKey: "tempFridge", TempC: 4},
	{NameKey: "tempCool", TempC: 7},
	{NameKey: "tempRoom", TempC: 20},
}

var altitudes = []domain.AltitudePreset{
	{NameKey: "altitudeSeaLevel", AltitudeMeters: 0, BoilingPointC: 100.0},
	{NameKey: "altitude1000", AltitudeMeters: 1000, BoilingPointC: 95.8},
	{NameKey: "altitude2000", AltitudeMeters: 2000, BoilingPointC: 91.9},
	{NameKey: "altitude3000", AltitudeMeters: 3000, BoilingPointC: 88.5},
}

// Stoves returns the stove types.
func Stoves() []domain.StoveType { return append([]domain.StoveType(nil), stoves...) }

// PotMaterials returns the pot materials.
func PotMaterials() []domain.PotMaterial { return append([]domain.PotMaterial(nil), materials...) }

// Consistencies returns the yolk consistencies, softest first.
func Consistencies() []domain.Consistency {
	return append([]domain.Consistency(nil), consistencies...)
}

// EggSizes returns the retail egg sizes, smallest first.
func EggSizes() []domain.EggSize { return append([]domain.EggSize(nil), eggSizes...) }

// StartTemps returns the typical egg start temperatures, coldest first.
func StartTemps() []domain.StartTemp { return append([]domain.StartTemp(nil), startTemps...) }

// Altitudes returns the reference altitudes, lowest first.
func Altitudes() []domain.AltitudePreset {
	return append([]domain.AltitudePreset(nil), altitudes...)
}

// Stove looks up a stove type by id.
func Stove(id string) (domain.StoveType, error) {
	for _, s := range stoves {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.StoveType{}, fmt.Errorf("stove type %q: %w", id, domain.ErrUnknownPreset)
}

// PotMaterial looks up a pot material by id.
func PotMaterial(id string) (domain.PotMaterial, error) {
	for _, m := range materials {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.PotMaterial{}, fmt.Errorf("pot material %q: %w", id, domain.ErrUnknownPreset)
}

// Consistency looks up a yolk consistency by id.
func Consistency(id string) (domain.Consistency, error) {
	for _, c := range consistencies {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Consistency{}, fmt.Errorf("consistency %q: %w", id, domain.ErrUnknownPreset)
}

// EggSize looks up an egg size by name (S, M, L, XL).
func EggSize(name string) (domain.EggSize, error) {
	for _, e := range eggSizes {
		if e.Name == name {
			return e, nil
		}
	}
	return domain.EggSize{}, fmt.Errorf("egg size %q: %w", name, domain.ErrUnknownPreset)
}

// HeatCapacity resolves a pot material id, falling back to steel.
func HeatCapacity(materialID string) float64 {
	m, err := PotMaterial(materialID)
	if err != nil {
		return FallbackHeatCapacity
	}
	return m.HeatCapacity
}

// Index returns the position of id in ids, or -1.
func Index(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Cycle steps through n items from i by delta, wrapping around. An unknown
// position (-1) starts at the first item.
func Cycle(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

// StoveIDs lists the stove ids in catalog order.
func StoveIDs() []string {
	out := make([]string, len(stoves))
	for i, s := range stoves {
		out[i] = s.ID
	}
	return out
}

// MaterialIDs lists the pot material ids in catalog order.
func MaterialIDs() []string {
	out := make([]string, len(materials))
	for i, m := range materials {
		out[i] = m.ID
	}
	return out
}

// ConsistencyIDs lists the consistency ids in catalog order.
func ConsistencyIDs() []string {
	out := make([]string, len(consistencies))
	for i, c := range consistencies {
		out[i] = c.ID
	}
	return out
}
