package domain

// StoveType is a kind of hob with its typical efficiency and power.
type StoveType struct {
	ID            string  `json:"id"`
	NameKey       string  `json:"nameKey"`
	Efficiency    float64 `json:"efficiency"`
	DefaultPowerW float64 `json:"defaultPower"`
}

// PotMaterial is what the pot is made of.
type PotMaterial struct {
	ID           string  `json:"id"`
	NameKey      string  `json:"nameKey"`
	HeatCapacity float64 `json:"heatCapacity"` // kJ/(kg·K)
}

// Consistency is a target yolk texture and the centre temperature that
// produces it.
type Consistency struct {
	ID          string  `json:"id"`
	NameKey     string  `json:"nameKey"`
	TargetTempC float64 `json:"temp"`
	Color       string  `json:"color"`
}

// EggSize is a retail size class.
type EggSize struct {
	Name        string  `json:"name"`
	WeightGrams float64 `json:"weight"`
}

// StartTemp is a typical place the eggs come from.
type StartTemp struct {
	NameKey string  `json:"nameKey"`
	TempC   float64 `json:"temp"`
}

// AltitudePreset is a reference height with its boiling point.
type AltitudePreset struct {
	NameKey        string  `json:"nameKey"`
	AltitudeMeters int     `json:"altitude"`
	BoilingPointC  float64 `json:"boilingPoint"`
}
