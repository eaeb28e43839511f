// Package units converts and formats values for display in the user's
// preferred units. Calculations always run in metric; only presentation
// changes. Rounding is half-up on the last displayed decimal.
package units

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottoegg/internal/domain"
)

var half = decimal.NewFromFloat(0.5)

// roundHalfUp rounds towards +Inf on a tie, the way a kitchen display does
// (-0.5 becomes 0, 2.5 becomes 3).
func roundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// CelsiusToFahrenheit converts to whole degrees Fahrenheit.
func CelsiusToFahrenheit(c float64) int {
	f := decimal.NewFromFloat(c).Mul(decimal.NewFromInt(9)).Div(decimal.NewFromInt(5)).Add(decimal.NewFromInt(32))
	return int(roundHalfUp(f, 0).IntPart())
}

// LitersToOunces converts to US fluid ounces, one decimal.
func LitersToOunces(l float64) float64 {
	v, _ := roundHalfUp(decimal.NewFromFloat(l).Mul(decimal.NewFromFloat(33.814)), 1).Float64()
	return v
}

// GramsToOunces converts to avoirdupois ounces, one decimal.
func GramsToOunces(g float64) float64 {
	v, _ := roundHalfUp(decimal.NewFromFloat(g).Div(decimal.NewFromFloat(28.35)), 1).Float64()
	return v
}

// HPaToInHg converts to inches of mercury, two decimals.
func HPaToInHg(p float64) float64 {
	v, _ := roundHalfUp(decimal.NewFromFloat(p).Mul(decimal.NewFromFloat(0.02953)), 2).Float64()
	return v
}

// number renders a float the short way: 2 not 2.0, 1013.25 not 1013.250000.
func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// FormatTemp renders a Celsius temperature in unit.
func FormatTemp(c float64, unit domain.TempUnit) string {
	if unit == domain.Fahrenheit {
		return fmt.Sprintf("%d°F", CelsiusToFahrenheit(c))
	}
	return number(c) + "°C"
}

// FormatVolume renders a volume in liters in unit.
func FormatVolume(l float64, unit domain.VolumeUnit) string {
	if unit == domain.FluidOunces {
		return number(LitersToOunces(l)) + " oz"
	}
	return number(l) + "L"
}

// FormatWeight renders a weight in grams in unit.
func FormatWeight(g float64, unit domain.WeightUnit) string {
	if unit == domain.Ounces {
		return number(GramsToOunces(g)) + "oz"
	}
	return number(g) + "g"
}

// FormatPressure renders a pressure in hPa in unit.
func FormatPressure(p float64, unit domain.PressureUnit) string {
	if unit == domain.InchesOfMercury {
		return number(HPaToInHg(p)) + " inHg"
	}
	return number(p) + " hPa"
}

// NoTime is shown in place of a cooking time when the inputs are invalid.
const NoTime = "--:--"

// FormatMinutes renders fractional minutes as M:SS. Seconds are rounded;
// a fraction that rounds to 60 carries into the minute.
func FormatMinutes(minutes float64) string {
	total := roundHalfUp(decimal.NewFromFloat(minutes).Mul(decimal.NewFromInt(60)), 0).IntPart()
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatTimer renders whole seconds as M:SS.
func FormatTimer(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatCountdown renders remaining seconds as MM:SS. Negative input shows
// 00:00.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Preferences is the set of display units.
type Preferences struct {
	Temp     domain.TempUnit
	Volume   domain.VolumeUnit
	Weight   domain.WeightUnit
	Pressure domain.PressureUnit
}

// Metric is the default preference set.
var Metric = Preferences{
	Temp:     domain.Celsius,
	Volume:   domain.Liters,
	Weight:   domain.Grams,
	Pressure: domain.HectoPascal,
}

// Imperial is what the unit toggle switches to.
var Imperial = Preferences{
	Temp:     domain.Fahrenheit,
	Volume:   domain.FluidOunces,
	Weight:   domain.Ounces,
	Pressure: domain.InchesOfMercury,
}

// FromSettings reads the unit preferences out of s.
func FromSettings(s domain.Settings) Preferences {
	return Preferences{Temp: s.TempUnit, Volume: s.VolumeUnit, Weight: s.WeightUnit, Pressure: s.PressureUnit}
}

// Apply writes p into s.
func (p Preferences) Apply(s *domain.Settings) {
	s.TempUnit = p.Temp
	s.VolumeUnit = p.Volume
	s.WeightUnit = p.Weight
	s.PressureUnit = p.Pressure
}

// Toggle flips every unit between metric and imperial, keyed on the
// temperature unit.
func (p Preferences) Toggle() Preferences {
	if p.Temp == domain.Fahrenheit {
		return Metric
	}
	return Imperial
}

// ParseTemp validates a temperature unit name.
func ParseTemp(s string) (domain.TempUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C":
		return domain.Celsius, nil
	case "F":
		return domain.Fahrenheit, nil
	}
	return "", fmt.Errorf("temperature unit %q: %w", s, domain.ErrInvalidValue)
}

// ParseVolume validates a volume unit name.
func ParseVolume(s string) (domain.VolumeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l":
		return domain.Liters, nil
	case "oz", "floz", "fl oz":
		return domain.FluidOunces, nil
	}
	return "", fmt.Errorf("volume unit %q: %w", s, domain.ErrInvalidValue)
}

// ParseWeight validates a weight unit name.
func ParseWeight(s string) (domain.WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g":
		return domain.Grams, nil
	case "oz":
		return domain.Ounces, nil
	}
	return "", fmt.Errorf("weight unit %q: %w", s, domain.ErrInvalidValue)
}

// ParsePressure validates a pressure unit name.
func ParsePressure(s string) (domain.PressureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hpa", "mbar":
		return domain.HectoPascal, nil
	case "inhg":
		return domain.InchesOfMercury, nil
	}
	return "", fmt.Errorf("pressure unit %q: %w", s, domain.ErrInvalidValue)
}
