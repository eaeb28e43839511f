package domain

import (
	"context"
	"time"
)

// SettingsStore persists the household settings as one flat key/value map.
// Implementations can be in-memory, a JSON file or a SQL table. Load always
// returns a complete Settings: stored keys merged over the defaults.
type SettingsStore interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
	Reset(ctx context.Context) error
}

// PressureFetcher looks up the current surface pressure at a coordinate.
type PressureFetcher interface {
	SurfacePressure(ctx context.Context, lat, lon float64) (*SurfaceReading, error)
}

// PlaceNamer resolves a coordinate to a human-readable place name.
type PlaceNamer interface {
	PlaceName(ctx context.Context, lat, lon float64) (string, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout, the TUI, or push over MQTT.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Alarm makes the "eggs are ready" sound.
type Alarm interface {
	Ring(ctx context.Context) error
}

// TimerObserver receives every state change of the egg timer.
type TimerObserver interface {
	OnTimerEvent(ctx context.Context, ev TimerEvent)
}

// TimerController drives the egg timer. The API and the terminal UI use it.
type TimerController interface {
	Snapshot() TimerSnapshot
	Begin(ctx context.Context, d time.Duration, label string) (TimerSnapshot, error)
	Pause(ctx context.Context) (TimerSnapshot, error)
	Resume(ctx context.Context) (TimerSnapshot, error)
	Dismiss(ctx context.Context) (TimerSnapshot, error)
	Cancel(ctx context.Context) TimerSnapshot
}
