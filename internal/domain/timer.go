package domain

import "time"

// TimerStatus is the state of the egg timer.
type TimerStatus int

const (
	TimerIdle TimerStatus = iota
	TimerRunning
	TimerPaused
	TimerComplete
)

// String returns a human-readable timer status.
func (t TimerStatus) String() string {
	switch t {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// TimerSnapshot is a copy of the timer state at one instant.
type TimerSnapshot struct {
	ID              string
	Label           string
	Status          TimerStatus
	Duration        time.Duration
	Remaining       time.Duration
	StartedAt       time.Time
	EscalationLevel int
}

// Active reports whether the timer is counting or paused.
func (s TimerSnapshot) Active() bool {
	return s.Status == TimerRunning || s.Status == TimerPaused
}

// TimerEventType names a timer transition.
type TimerEventType string

const (
	TimerStarted   TimerEventType = "started"
	TimerPausedEv  TimerEventType = "paused"
	TimerResumed   TimerEventType = "resumed"
	TimerStopped   TimerEventType = "stopped"
	TimerAlmost    TimerEventType = "almost_done"
	TimerCompleted TimerEventType = "completed"
	TimerReminder  TimerEventType = "reminder"
	TimerDismissed TimerEventType = "dismissed"
)

// TimerEvent is emitted on every timer transition.
type TimerEvent struct {
	Type  TimerEventType
	Timer TimerSnapshot
	At    time.Time
}
