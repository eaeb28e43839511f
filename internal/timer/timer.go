package timer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottoegg/internal/domain"
)

// Timer is the egg timer state machine:
//
//	idle -> running <-> paused -> complete -> (dismiss) idle
//
// Stop returns to idle from any state. Timer is not safe for concurrent
// use; the Supervisor guards it.
type Timer struct {
	id           string
	label        string
	status       domain.TimerStatus
	duration     time.Duration
	remaining    time.Duration
	startedAt    time.Time
	lastTick     time.Time // when remaining was last brought up to date
	escalation   int
	lastNotified time.Time
	warnedAlmost bool
}

// Start begins counting down d. Any previous countdown is discarded.
func (t *Timer) Start(d time.Duration, label string, now time.Time) error {
	if d <= 0 {
		return fmt.Errorf("timer duration %s: %w", d, domain.ErrInvalidValue)
	}
	*t = Timer{
		id:        uuid.NewString(),
		label:     label,
		status:    domain.TimerRunning,
		duration:  d,
		remaining: d,
		startedAt: now,
		lastTick:  now,
	}
	return nil
}

// Pause freezes a running countdown, keeping the time that passed since
// the last update. A countdown that ran out meanwhile completes on the
// first Advance after Resume.
func (t *Timer) Pause(now time.Time) error {
	if t.status != domain.TimerRunning {
		return domain.ErrTimerNotRunning
	}
	t.remaining = max(0, t.remaining-t.since(now))
	t.status = domain.TimerPaused
	return nil
}

// Resume continues a paused countdown from now.
func (t *Timer) Resume(now time.Time) error {
	if t.status != domain.TimerPaused {
		return domain.ErrTimerNotPaused
	}
	t.status = domain.TimerRunning
	t.lastTick = now
	return nil
}

// Stop clears the timer. It reports whether there was anything to clear.
func (t *Timer) Stop() bool {
	had := t.status != domain.TimerIdle
	*t = Timer{}
	return had
}

// Dismiss acknowledges a completed timer.
func (t *Timer) Dismiss() error {
	if t.status != domain.TimerComplete {
		return domain.ErrTimerNotComplete
	}
	*t = Timer{}
	return nil
}

// Advance counts a running timer down by the wall-clock time since the
// last update and reports whether it reached zero on this call. Late
// calls catch up in one step.
func (t *Timer) Advance(now time.Time) bool {
	if t.status != domain.TimerRunning {
		return false
	}
	t.remaining -= t.since(now)
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.status = domain.TimerComplete
	return true
}

// since returns the time elapsed from lastTick to now and moves lastTick
// forward. A clock that went backwards counts as no time.
func (t *Timer) since(now time.Time) time.Duration {
	d := now.Sub(t.lastTick)
	if d < 0 {
		d = 0
	}
	t.lastTick = now
	return d
}

// Snapshot copies the public state.
func (t *Timer) Snapshot() domain.TimerSnapshot {
	return domain.TimerSnapshot{
		ID:              t.id,
		Label:           t.label,
		Status:          t.status,
		Duration:        t.duration,
		Remaining:       t.remaining,
		StartedAt:       t.startedAt,
		EscalationLevel: t.escalation,
	}
}
