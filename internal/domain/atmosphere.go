package domain

// AtmosphericState is the air pressure the eggs are cooked under, with the
// boiling point and altitude derived from it.
type AtmosphericState struct {
	PressureHPa    float64        `json:"pressureHPa"`
	BoilingPointC  float64        `json:"boilingPointC"`
	AltitudeMeters int            `json:"altitudeMeters"`
	Source         PressureSource `json:"source"`
	PlaceName      string         `json:"placeName,omitempty"`
}

// StandardAtmosphere is sea level at 1013.25 hPa.
func StandardAtmosphere() AtmosphericState {
	return AtmosphericState{
		PressureHPa:    1013.25,
		BoilingPointC:  100,
		AltitudeMeters: 0,
		Source:         PressureDefault,
	}
}

// Coordinates is a device position. Altitude is nil when the device does
// not report one.
type Coordinates struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// SurfaceReading is a weather service answer for one coordinate.
type SurfaceReading struct {
	PressureHPa     float64
	ElevationMeters *float64 // nil when the service has no elevation
}
