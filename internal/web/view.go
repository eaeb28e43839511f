package web

import (
	"math"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/physics"
	"github.com/hammamikhairi/ottoegg/internal/units"
)

// TimerView is the JSON form of a timer snapshot.
type TimerView struct {
	ID               string     `json:"id,omitempty"`
	Label            string     `json:"label,omitempty"`
	Status           string     `json:"status"`
	DurationSeconds  int        `json:"durationSeconds"`
	RemainingSeconds int        `json:"remainingSeconds"`
	Remaining        string     `json:"remaining"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	Escalation       int        `json:"escalation"`
}

// NewTimerView converts a snapshot. Remaining seconds round up so the
// display never shows 00:00 while the timer still runs.
func NewTimerView(s domain.TimerSnapshot) TimerView {
	left := int(math.Ceil(s.Remaining.Seconds()))
	v := TimerView{
		ID:               s.ID,
		Label:            s.Label,
		Status:           s.Status.String(),
		DurationSeconds:  int(math.Round(s.Duration.Seconds())),
		RemainingSeconds: left,
		Remaining:        units.FormatCountdown(left),
		Escalation:       s.EscalationLevel,
	}
	if !s.StartedAt.IsZero() {
		at := s.StartedAt.UTC()
		v.StartedAt = &at
	}
	return v
}

// CalculateResponse is returned by the calculation endpoints.
type CalculateResponse struct {
	Valid              bool            `json:"valid"`
	Result             *physics.Result `json:"result"`
	Params             physics.Params  `json:"params"`
	TempDropWarning    bool            `json:"tempDropWarning"`
	ColdWeatherWarning bool            `json:"coldWeatherWarning"`
	Display            *Display        `json:"display,omitempty"`
}

// Display holds the result formatted in the household's units.
type Display struct {
	CookingTime   string `json:"cookingTime"`
	IdealTime     string `json:"idealTime"`
	TempDrop      string `json:"tempDrop"`
	EffectiveTemp string `json:"effectiveTemp"`
	HeatingTime   string `json:"heatingTime"`
	BoilingPoint  string `json:"boilingPoint"`
}

// NewCalculateResponse formats est for clients. With nil settings the
// Display block is omitted.
func NewCalculateResponse(est engine.Estimate, s *domain.Settings) CalculateResponse {
	resp := CalculateResponse{
		Valid:              est.OK(),
		Result:             est.Result,
		Params:             est.Params,
		TempDropWarning:    est.TempDropWarning,
		ColdWeatherWarning: est.ColdWeatherWarning,
	}
	if est.OK() && s != nil {
		r := est.Result
		resp.Display = &Display{
			CookingTime:   units.FormatMinutes(r.CookingTimeMinutes),
			IdealTime:     units.FormatMinutes(r.IdealTimeMinutes),
			TempDrop:      units.FormatTemp(r.TempDropC, domain.Celsius),
			EffectiveTemp: units.FormatTemp(r.EffectiveTempC, s.TempUnit),
			HeatingTime:   units.FormatMinutes(r.HeatingTimeMinutes),
			BoilingPoint:  units.FormatTemp(est.Params.BoilingPointC, s.TempUnit),
		}
	}
	return resp
}

// AtmosphereView answers the pressure/boiling point conversion endpoint.
type AtmosphereView struct {
	PressureHPa   float64 `json:"pressure"`
	BoilingPointC float64 `json:"boilingPoint"`
	AltitudeM     int     `json:"altitude"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
