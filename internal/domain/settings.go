// Package domain defines the core types and interfaces of the egg
// calculator. All other packages depend on domain; domain depends on nothing.
package domain

// PressureSource records where the current air pressure came from.
type PressureSource string

const (
	PressureDefault PressureSource = "default"
	PressureGPS     PressureSource = "gps"
	PressureManual  PressureSource = "manual"
)

// Display units.
type (
	TempUnit     string
	VolumeUnit   string
	WeightUnit   string
	PressureUnit string
)

const (
	Celsius    TempUnit = "C"
	Fahrenheit TempUnit = "F"

	Liters      VolumeUnit = "L"
	FluidOunces VolumeUnit = "oz"

	Grams  WeightUnit = "g"
	Ounces WeightUnit = "oz"

	HectoPascal     PressureUnit = "hPa"
	InchesOfMercury PressureUnit = "inHg"
)

// Settings is everything the user can adjust, persisted as a flat map. JSON
// keys are the persisted key names.
type Settings struct {
	// Working inputs.
	Weight      float64 `json:"weight"`
	StartTemp   float64 `json:"startTemp"`
	TargetTemp  float64 `json:"targetTemp"`
	Consistency string  `json:"consistency"`
	EggCount    int     `json:"eggCount"`
	WaterVolume float64 `json:"waterVolume"`

	// Household.
	StoveType       string  `json:"stoveType"`
	StovePower      float64 `json:"stovePower"`
	StoveEfficiency float64 `json:"stoveEfficiency"`
	PotWeight       float64 `json:"potWeight"`
	PotMaterial     string  `json:"potMaterial"`
	WaterStartTemp  float64 `json:"waterStartTemp"`
	AmbientTemp     float64 `json:"ambientTemp"`

	// Location and pressure.
	Altitude       int            `json:"altitude"`
	Pressure       float64        `json:"pressure"`
	BoilingPoint   float64        `json:"boilingPoint"`
	LocationName   string         `json:"locationName"`
	PressureSource PressureSource `json:"pressureSource"`

	// Unit preferences.
	TempUnit     TempUnit     `json:"tempUnit"`
	VolumeUnit   VolumeUnit   `json:"volumeUnit"`
	WeightUnit   WeightUnit   `json:"weightUnit"`
	PressureUnit PressureUnit `json:"pressureUnit"`

	NotificationPermission string `json:"notificationPermission"`
}

// DefaultSettings returns the factory settings: one medium egg from the
// fridge on an induction hob at sea level.
func DefaultSettings() Settings {
	return Settings{
		Weight:      60,
		StartTemp:   4,
		TargetTemp:  67,
		Consistency: "medium",
		EggCount:    1,
		WaterVolume: 1.5,

		StoveType:       "induction",
		StovePower:      2000,
		StoveEfficiency: 0.87,
		PotWeight:       0.8,
		PotMaterial:     "steel",
		WaterStartTemp:  15,
		AmbientTemp:     22,

		Altitude:       0,
		Pressure:       1013.25,
		BoilingPoint:   100,
		PressureSource: PressureDefault,

		TempUnit:     Celsius,
		VolumeUnit:   Liters,
		WeightUnit:   Grams,
		PressureUnit: HectoPascal,

		NotificationPermission: "default",
	}
}

// Atmosphere extracts the location fields.
func (s Settings) Atmosphere() AtmosphericState {
	return AtmosphericState{
		PressureHPa:    s.Pressure,
		BoilingPointC:  s.BoilingPoint,
		AltitudeMeters: s.Altitude,
		Source:         s.PressureSource,
		PlaceName:      s.LocationName,
	}
}

// SetAtmosphere copies the location fields from a.
func (s *Settings) SetAtmosphere(a AtmosphericState) {
	s.Pressure = a.PressureHPa
	s.BoilingPoint = a.BoilingPointC
	s.Altitude = a.AltitudeMeters
	s.PressureSource = a.Source
	s.LocationName = a.PlaceName
}
