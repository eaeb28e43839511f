package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownSetting     = errors.New("unknown setting")
	ErrInvalidValue       = errors.New("invalid value")
	ErrUnknownPreset      = errors.New("unknown preset")
	ErrNoResult           = errors.New("inputs do not describe a valid cook")
	ErrTimerNotRunning    = errors.New("timer is not running")
	ErrTimerNotPaused     = errors.New("timer is not paused")
	ErrTimerNotComplete   = errors.New("timer has not completed")
	ErrWeatherUnavailable = errors.New("weather data unavailable")
	ErrPlaceUnavailable   = errors.New("place name unavailable")
)
