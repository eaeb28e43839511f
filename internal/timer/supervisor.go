// Package timer runs the egg countdown. A Supervisor owns a single Timer,
// advances it from a background loop and fires notifications, the alarm
// and observer events on every transition.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface check.
var _ domain.TimerController = (*Supervisor)(nil)

// DefaultLabel is used when a timer is started without one.
const DefaultLabel = "Eggs"

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor advances the timer.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNotifyCooldown sets the minimum time between repeated completion
// reminders.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.notifyCooldown = d
	}
}

// WithMaxEscalation sets how many reminders follow the completion notice.
func WithMaxEscalation(level int) Option {
	return func(s *Supervisor) {
		s.maxEscalation = level
	}
}

// WithAlmostDoneThreshold sets how close to zero the timer must be to
// trigger the "almost done" notice.
func WithAlmostDoneThreshold(d time.Duration) Option {
	return func(s *Supervisor) {
		s.almostDoneThreshold = d
	}
}

// WithAlarm rings a when the timer completes.
func WithAlarm(a domain.Alarm) Option {
	return func(s *Supervisor) {
		s.alarm = a
	}
}

// WithObserver adds an observer for timer events.
func WithObserver(o domain.TimerObserver) Option {
	return func(s *Supervisor) {
		s.observers = append(s.observers, o)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// Supervisor runs in the background and manages the countdown and its
// notifications.
type Supervisor struct {
	notifier            domain.Notifier
	alarm               domain.Alarm
	observers           []domain.TimerObserver
	log                 *logger.Logger
	now                 func() time.Time
	tickInterval        time.Duration
	notifyCooldown      time.Duration
	maxEscalation       int
	almostDoneThreshold time.Duration

	mu    sync.Mutex
	timer Timer

	loopMu  sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a timer supervisor with the given dependencies and options.
func New(notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		notifier:            notifier,
		log:                 log,
		now:                 time.Now,
		tickInterval:        1 * time.Second,
		notifyCooldown:      15 * time.Second,
		maxEscalation:       3,
		almostDoneThreshold: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(childCtx, s.done)

	s.log.Info("timer supervisor started (tick=%s, cooldown=%s)", s.tickInterval, s.notifyCooldown)
}

// Stop shuts the loop down and waits for it to exit. The timer state is
// kept.
func (s *Supervisor) Stop() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	s.log.Info("timer supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Snapshot returns the current timer state.
func (s *Supervisor) Snapshot() domain.TimerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Snapshot()
}

// Begin starts a countdown of d, replacing any existing one.
func (s *Supervisor) Begin(ctx context.Context, d time.Duration, label string) (domain.TimerSnapshot, error) {
	if label == "" {
		label = DefaultLabel
	}

	s.mu.Lock()
	err := s.timer.Start(d, label, s.now())
	snap := s.timer.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return snap, err
	}
	s.log.Info("timer %s started: %s for %s", snap.ID, label, d)
	s.emit(ctx, domain.TimerStarted, snap)
	return snap, nil
}

// Pause freezes a running countdown.
func (s *Supervisor) Pause(ctx context.Context) (domain.TimerSnapshot, error) {
	return s.transition(ctx, domain.TimerPausedEv, func() error { return s.timer.Pause(s.now()) })
}

// Resume continues a paused countdown.
func (s *Supervisor) Resume(ctx context.Context) (domain.TimerSnapshot, error) {
	return s.transition(ctx, domain.TimerResumed, func() error { return s.timer.Resume(s.now()) })
}

// Dismiss acknowledges a completed timer and silences reminders.
func (s *Supervisor) Dismiss(ctx context.Context) (domain.TimerSnapshot, error) {
	s.mu.Lock()
	before := s.timer.Snapshot()
	err := s.timer.Dismiss()
	s.mu.Unlock()

	if err != nil {
		return before, err
	}
	s.emit(ctx, domain.TimerDismissed, before)
	return s.Snapshot(), nil
}

// Cancel stops the countdown in any state.
func (s *Supervisor) Cancel(ctx context.Context) domain.TimerSnapshot {
	s.mu.Lock()
	before := s.timer.Snapshot()
	had := s.timer.Stop()
	s.mu.Unlock()

	if had {
		s.log.Info("timer %s stopped", before.ID)
		s.emit(ctx, domain.TimerStopped, before)
	}
	return s.Snapshot()
}

func (s *Supervisor) transition(ctx context.Context, ev domain.TimerEventType, fn func() error) (domain.TimerSnapshot, error) {
	s.mu.Lock()
	err := fn()
	snap := s.timer.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return snap, err
	}
	s.log.Debug("timer %s %s (%s left)", snap.ID, ev, snap.Remaining)
	s.emit(ctx, ev, snap)
	return snap, nil
}

// Tick runs one cycle: advance the countdown to now, then send whatever
// notices are due. The loop calls it every tick interval; a tick delayed by
// a slow observer is made up on the next one.
func (s *Supervisor) Tick(ctx context.Context) {
	now := s.now()

	type notice struct {
		ev     domain.TimerEventType
		msg    string
		urgent bool
		ring   bool
	}
	var out []notice

	s.mu.Lock()
	t := &s.timer
	switch t.status {
	case domain.TimerRunning:
		if t.Advance(now) {
			out = append(out, notice{domain.TimerCompleted, escalationMessage(t.label, 0), true, true})
			t.lastNotified = now
			t.escalation = 1
			break
		}
		// Once, when remaining crosses the threshold.
		if !t.warnedAlmost && t.remaining <= s.almostDoneThreshold && t.duration > s.almostDoneThreshold*2 {
			t.warnedAlmost = true
			msg := fmt.Sprintf("[Timer] %s -- almost done, %s left.", t.label, formatRemaining(t.remaining))
			out = append(out, notice{domain.TimerAlmost, msg, false, false})
		}

	case domain.TimerComplete:
		if t.escalation > s.maxEscalation {
			break // stop nagging
		}
		if !t.lastNotified.IsZero() && now.Sub(t.lastNotified) < s.notifyCooldown {
			break
		}
		out = append(out, notice{domain.TimerReminder, escalationMessage(t.label, t.escalation), false, false})
		t.lastNotified = now
		t.escalation++
	}
	snap := t.Snapshot()
	s.mu.Unlock()

	for _, n := range out {
		var err error
		if n.urgent {
			err = s.notifier.NotifyUrgent(ctx, n.msg)
		} else {
			err = s.notifier.Notify(ctx, n.msg)
		}
		if err != nil {
			s.log.Error("notify %s: %v", n.ev, err)
		}
		if n.ring && s.alarm != nil {
			if err := s.alarm.Ring(ctx); err != nil {
				s.log.Warn("alarm: %v", err)
			}
		}
		s.emit(ctx, n.ev, snap)
	}
}

func (s *Supervisor) emit(ctx context.Context, typ domain.TimerEventType, snap domain.TimerSnapshot) {
	ev := domain.TimerEvent{Type: typ, Timer: snap, At: s.now()}
	for _, o := range s.observers {
		o.OnTimerEvent(ctx, ev)
	}
}

// escalationMessage gets terser with every reminder.
func escalationMessage(label string, level int) string {
	switch level {
	case 0:
		return fmt.Sprintf("[Timer] %s are ready.", label)
	case 1:
		return fmt.Sprintf("[Timer] %s -- take them out now.", label)
	case 2:
		return fmt.Sprintf("[Timer] %s. Now.", label)
	default:
		return fmt.Sprintf("[Timer] %s.", label)
	}
}

// formatRemaining returns a human-friendly duration for notices.
// Rounds to the nearest minute once there's at least 1 minute left.
func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	totalSec := int(d.Seconds())
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", totalSec)
	}
	m := (totalSec + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
