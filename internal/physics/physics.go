// Package physics estimates how long an egg needs in boiling water.
//
// It converts between air pressure, boiling point and altitude, and models
// the cook itself: the temperature drop when cold eggs go into the pot, how
// much of that drop the stove wins back, the cooking time from the Williams
// formula and the energy the whole thing costs.
//
// Everything in this package is a pure function over plain values. It holds
// no state and is safe to call from any goroutine.
package physics

import (
	"math"
	"time"
)

// Heat model constants.
const (
	WaterSpecificHeat = 4.18 // kJ/(kg·K)
	EggSpecificHeat   = 3.5  // kJ/(kg·K)

	// WilliamsK is the coefficient of the Williams cooking-time formula.
	WilliamsK = 0.451
	// WilliamsYolkFactor scales the start/target differential inside the logarithm.
	WilliamsYolkFactor = 0.76

	// ReferenceTempDiff is the water/air differential the heat-loss model is
	// calibrated at: 100 °C water in 20 °C air.
	ReferenceTempDiff = 80.0
	// ReferenceStovePower is the power at which a stove counts as full strength.
	ReferenceStovePower = 2000.0 // W

	baseRecovery        = 0.5
	maxRecovery         = 0.85
	waterPerEggRecovery = 0.1

	// AmbientLossPerMinute is the heat lost to the air per minute of cooking
	// at the reference differential.
	AmbientLossPerMinute = 0.5 // kJ
	// MinLossMinutes is the shortest cook the ambient-loss estimate assumes.
	MinLossMinutes = 3.0
)

// Atmosphere constants.
const (
	StandardPressureHPa   = 1013.25
	StandardBoilingPointC = 100.0

	// BoilingPointSlope is the linearised Clausius–Clapeyron slope in °C per hPa.
	BoilingPointSlope = 0.037

	barometricScale    = 44330.0 // m
	barometricExponent = 0.1903
)

// Params is the full set of physical inputs for one cook.
type Params struct {
	EggMassGrams      float64 `json:"eggMassGrams"`
	StartTempC        float64 `json:"startTempC"`
	TargetTempC       float64 `json:"targetTempC"`
	BoilingPointC     float64 `json:"boilingPointC"`
	EggCount          int     `json:"eggCount"`
	WaterVolumeLiters float64 `json:"waterVolumeLiters"`
	StovePowerWatts   float64 `json:"stovePowerWatts"`
	StoveEfficiency   float64 `json:"stoveEfficiency"`
	PotMassKg         float64 `json:"potMassKg"`
	PotSpecificHeat   float64 `json:"potSpecificHeat"` // kJ/(kg·K)
	WaterStartTempC   float64 `json:"waterStartTempC"`
	AmbientTempC      float64 `json:"ambientTempC"`
}

// Valid reports whether the parameters describe a cook the model can
// answer: a positive egg mass and start < target < boiling point.
func (p Params) Valid() bool {
	return p.EggMassGrams > 0 && p.BoilingPointC > p.TargetTempC && p.TargetTempC > p.StartTempC
}

// Result is the outcome of one cook.
type Result struct {
	CookingTimeMinutes float64 `json:"cookingTimeMinutes"`
	TempDropC          float64 `json:"tempDropC"`
	EffectiveTempC     float64 `json:"effectiveTempC"`
	IdealTimeMinutes   float64 `json:"idealTimeMinutes"`
	TotalEnergyKJ      int     `json:"totalEnergyKJ"`
	HeatingTimeMinutes float64 `json:"heatingTimeMinutes"`
}

// CookingDuration returns the cooking time rounded to whole seconds.
func (r Result) CookingDuration() time.Duration {
	return time.Duration(math.Round(r.CookingTimeMinutes*60)) * time.Second
}

// BoilingPointFromPressure returns the boiling point of water in °C at the
// given pressure, rounded to 0.1.
func BoilingPointFromPressure(pressureHPa float64) float64 {
	return round(StandardBoilingPointC+BoilingPointSlope*(pressureHPa-StandardPressureHPa), 1)
}

// PressureFromBoilingPoint is the inverse of BoilingPointFromPressure,
// rounded to 0.1 hPa.
func PressureFromBoilingPoint(tempC float64) float64 {
	return round((tempC-StandardBoilingPointC)/BoilingPointSlope+StandardPressureHPa, 1)
}

// AltitudeFromPressure estimates altitude in metres with the barometric
// formula. Pressures above the standard atmosphere give negative altitudes.
func AltitudeFromPressure(pressureHPa float64) int {
	return int(round(barometricScale*(1-math.Pow(pressureHPa/StandardPressureHPa, barometricExponent)), 0))
}

// PressureFromAltitude inverts AltitudeFromPressure for the standard
// atmosphere, rounded to 0.1 hPa.
func PressureFromAltitude(meters float64) float64 {
	return round(StandardPressureHPa*math.Pow(1-meters/barometricScale, 1/barometricExponent), 1)
}

// Calculate runs the cooking model. It returns false when the parameters
// fail Params.Valid or when the model degenerates into a non-finite answer;
// neither case is an error, the inputs simply do not describe a cook.
func Calculate(p Params) (Result, bool) {
	if !p.Valid() {
		return Result{}, false
	}

	m := p.EggMassGrams
	tw := p.BoilingPointC
	t0 := p.StartTempC
	tz := p.TargetTempC

	// 1 L of water is taken as 1 kg.
	waterMass := p.WaterVolumeLiters
	eggMass := float64(p.EggCount) * m / 1000

	// Cold eggs pull the water down until both reach a common temperature.
	waterCap := waterMass * WaterSpecificHeat
	eggCap := eggMass * EggSpecificHeat
	tDrop := (waterCap*tw + eggCap*t0) / (waterCap + eggCap)

	// A colder room means a larger factor and slower recovery. A zero factor
	// sends the power ratio to +Inf, which the min below absorbs.
	heatLoss := (tw - p.AmbientTempC) / ReferenceTempDiff

	powerFactor := math.Min(1, p.StovePowerWatts/ReferenceStovePower) * p.StoveEfficiency
	recoveryBase := math.Min(maxRecovery, baseRecovery+(p.WaterVolumeLiters/eggMass)*waterPerEggRecovery)
	powerRatio := powerFactor / heatLoss
	recovery := recoveryBase * math.Min(1, 0.5+0.5*powerRatio)

	tEff := tDrop + recovery*(tw-tDrop)

	cooking := williams(m, t0, tz, tEff)
	ideal := williams(m, t0, tz, tw)

	qWater := waterMass * WaterSpecificHeat * (tw - p.WaterStartTempC)
	qPot := p.PotMassKg * p.PotSpecificHeat * (tw - p.WaterStartTempC)
	qEggs := eggMass * EggSpecificHeat * (tz - t0)
	qLoss := math.Max(MinLossMinutes, cooking) * AmbientLossPerMinute * heatLoss
	total := (qWater + qPot + qEggs + qLoss) / p.StoveEfficiency

	powerKW := p.StovePowerWatts / 1000 * p.StoveEfficiency
	heating := qWater / powerKW / 60

	if !finite(cooking, ideal, tEff, tDrop, total, heating) {
		return Result{}, false
	}

	return Result{
		CookingTimeMinutes: math.Max(0, cooking),
		TempDropC:          round(tw-tDrop, 1),
		EffectiveTempC:     round(tEff, 1),
		IdealTimeMinutes:   math.Max(0, ideal),
		TotalEnergyKJ:      int(round(total, 0)),
		HeatingTimeMinutes: round(heating, 1),
	}, true
}

// williams returns the minutes an egg of mass m (grams) starting at t0 needs
// to reach tz at its centre in water held at tw. It is NaN when the
// logarithm's argument is not positive.
func williams(m, t0, tz, tw float64) float64 {
	ratio := WilliamsYolkFactor * (t0 - tw) / (tz - tw)
	return WilliamsK * math.Pow(m, 2.0/3.0) * math.Log(ratio)
}

// round rounds half up to the given number of decimal places.
func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(x*scale+0.5) / scale
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
