package timer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), len(m.urgent)
}

type mockAlarm struct {
	mu    sync.Mutex
	rings int
}

func (a *mockAlarm) Ring(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rings++
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []domain.TimerEventType
}

func (r *recorder) OnTimerEvent(_ context.Context, ev domain.TimerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Type)
}

func (r *recorder) types() []domain.TimerEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TimerEventType(nil), r.events...)
}

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time      { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func quietLog() *logger.Logger { return logger.New(logger.LevelOff, nil) }
func bg() context.Context      { return context.Background() }

func TestTimerStateMachine(t *testing.T) {
	var tm Timer
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }

	if err := tm.Pause(now); !errors.Is(err, domain.ErrTimerNotRunning) {
		t.Fatalf("pause idle: %v", err)
	}
	if err := tm.Start(0, "x", now); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("zero duration: %v", err)
	}
	if err := tm.Start(3*time.Second, "Eggs", now); err != nil {
		t.Fatal(err)
	}
	id := tm.Snapshot().ID
	if id == "" || tm.Snapshot().Status != domain.TimerRunning {
		t.Fatalf("snapshot = %+v", tm.Snapshot())
	}

	if err := tm.Resume(now); !errors.Is(err, domain.ErrTimerNotPaused) {
		t.Fatalf("resume running: %v", err)
	}
	// Pausing one second in keeps that second.
	if err := tm.Pause(at(time.Second)); err != nil {
		t.Fatal(err)
	}
	if got := tm.Snapshot().Remaining; got != 2*time.Second {
		t.Fatalf("remaining at pause = %s, want 2s", got)
	}
	if tm.Advance(at(time.Hour)) {
		t.Fatal("paused timer must not advance")
	}
	if err := tm.Pause(at(time.Hour)); !errors.Is(err, domain.ErrTimerNotRunning) {
		t.Fatalf("pause paused: %v", err)
	}
	// The hour spent paused does not count.
	if err := tm.Resume(at(time.Hour)); err != nil {
		t.Fatal(err)
	}

	if tm.Advance(at(time.Hour + time.Second)) {
		t.Fatal("completed too early")
	}
	if !tm.Advance(at(time.Hour + 3*time.Second)) {
		t.Fatal("should complete")
	}
	if s := tm.Snapshot(); s.Status != domain.TimerComplete || s.Remaining != 0 {
		t.Fatalf("snapshot = %+v", s)
	}
	if tm.Advance(at(2 * time.Hour)) {
		t.Fatal("completes only once")
	}

	if err := tm.Dismiss(); err != nil {
		t.Fatal(err)
	}
	if tm.Snapshot().Status != domain.TimerIdle {
		t.Fatal("dismiss should return to idle")
	}
	if err := tm.Dismiss(); !errors.Is(err, domain.ErrTimerNotComplete) {
		t.Fatalf("dismiss idle: %v", err)
	}

	// Restarting gets a fresh id and clears a pause.
	_ = tm.Start(time.Minute, "a", now)
	first := tm.Snapshot().ID
	_ = tm.Pause(now)
	_ = tm.Start(time.Minute, "b", now)
	if tm.Snapshot().ID == first || tm.Snapshot().Status != domain.TimerRunning {
		t.Fatalf("restart = %+v", tm.Snapshot())
	}
	if !tm.Stop() || tm.Stop() {
		t.Fatal("stop should report whether there was a timer")
	}
}

func TestSupervisorCompletesAndEscalates(t *testing.T) {
	clock := newClock()
	n := &mockNotifier{}
	alarm := &mockAlarm{}
	rec := &recorder{}
	s := New(n, quietLog(),
		WithTickInterval(time.Second),
		WithNotifyCooldown(15*time.Second),
		WithMaxEscalation(2),
		WithAlarm(alarm),
		WithObserver(rec),
		WithClock(clock.now),
	)

	if _, err := s.Begin(bg(), 2*time.Second, ""); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Label != DefaultLabel {
		t.Errorf("label = %q", s.Snapshot().Label)
	}

	for i := 0; i < 2; i++ {
		clock.add(time.Second)
		s.Tick(bg())
	}
	if s.Snapshot().Status != domain.TimerComplete {
		t.Fatalf("status = %s", s.Snapshot().Status)
	}
	if _, urgent := n.counts(); urgent != 1 {
		t.Fatalf("urgent = %d, want 1", urgent)
	}
	if alarm.rings != 1 {
		t.Fatalf("rings = %d, want 1", alarm.rings)
	}

	// Inside the cooldown nothing more is sent.
	clock.add(5 * time.Second)
	s.Tick(bg())
	if msgs, _ := n.counts(); msgs != 0 {
		t.Fatalf("reminder inside cooldown: %d", msgs)
	}

	// Two reminders, then silence.
	for i := 0; i < 5; i++ {
		clock.add(15 * time.Second)
		s.Tick(bg())
	}
	if msgs, _ := n.counts(); msgs != 2 {
		t.Fatalf("reminders = %d, want 2", msgs)
	}
	if !strings.Contains(n.messages[0], "take them out now") {
		t.Errorf("first reminder = %q", n.messages[0])
	}

	if _, err := s.Dismiss(bg()); err != nil {
		t.Fatal(err)
	}
	want := []domain.TimerEventType{
		domain.TimerStarted, domain.TimerCompleted,
		domain.TimerReminder, domain.TimerReminder,
		domain.TimerDismissed,
	}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestSupervisorAlmostDone(t *testing.T) {
	clock := newClock()
	n := &mockNotifier{}
	s := New(n, quietLog(), WithTickInterval(10*time.Second), WithAlmostDoneThreshold(30*time.Second),
		WithClock(clock.now))

	if _, err := s.Begin(bg(), 90*time.Second, "Eggs"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 7; i++ { // 90s -> 20s
		clock.add(10 * time.Second)
		s.Tick(bg())
	}
	msgs, _ := n.counts()
	if msgs != 1 {
		t.Fatalf("almost-done notices = %d, want 1", msgs)
	}
	if !strings.Contains(n.messages[0], "almost done, 30 seconds left") {
		t.Errorf("notice = %q", n.messages[0])
	}

	// Short timers skip the notice.
	n2 := &mockNotifier{}
	s2 := New(n2, quietLog(), WithTickInterval(10*time.Second), WithAlmostDoneThreshold(30*time.Second),
		WithClock(clock.now))
	_, _ = s2.Begin(bg(), 40*time.Second, "Eggs")
	for i := 0; i < 2; i++ {
		clock.add(10 * time.Second)
		s2.Tick(bg())
	}
	if msgs, _ := n2.counts(); msgs != 0 {
		t.Fatalf("short timer got %d notices", msgs)
	}
}

func TestSupervisorPauseStopsCountdown(t *testing.T) {
	clock := newClock()
	s := New(&mockNotifier{}, quietLog(), WithTickInterval(time.Second), WithClock(clock.now))
	_, _ = s.Begin(bg(), 5*time.Second, "Eggs")
	clock.add(time.Second)
	s.Tick(bg())

	if _, err := s.Pause(bg()); err != nil {
		t.Fatal(err)
	}
	clock.add(time.Minute)
	s.Tick(bg())
	s.Tick(bg())
	if got := s.Snapshot().Remaining; got != 4*time.Second {
		t.Fatalf("remaining while paused = %s", got)
	}
	if _, err := s.Pause(bg()); !errors.Is(err, domain.ErrTimerNotRunning) {
		t.Fatalf("double pause: %v", err)
	}
	if _, err := s.Resume(bg()); err != nil {
		t.Fatal(err)
	}
	clock.add(time.Second)
	s.Tick(bg())
	if got := s.Snapshot().Remaining; got != 3*time.Second {
		t.Fatalf("remaining after resume = %s", got)
	}

	if snap := s.Cancel(bg()); snap.Status != domain.TimerIdle {
		t.Fatalf("after cancel = %+v", snap)
	}
}

func TestSupervisorRespectsMaxEscalation(t *testing.T) {
	clock := newClock()
	n := &mockNotifier{}
	s := New(n, quietLog(), WithTickInterval(time.Second), WithMaxEscalation(0), WithClock(clock.now))
	_, _ = s.Begin(bg(), time.Second, "Eggs")
	clock.add(time.Second)
	s.Tick(bg())

	for i := 0; i < 5; i++ {
		clock.add(time.Minute)
		s.Tick(bg())
	}
	msgs, urgent := n.counts()
	if urgent != 1 || msgs != 0 {
		t.Fatalf("got %d reminders and %d urgent, want 0 and 1", msgs, urgent)
	}
}

func TestSupervisorCatchesUpLateTicks(t *testing.T) {
	clock := newClock()
	n := &mockNotifier{}
	s := New(n, quietLog(), WithTickInterval(time.Second), WithClock(clock.now))
	_, _ = s.Begin(bg(), 10*time.Second, "Eggs")

	// One tick arrives four intervals late.
	clock.add(4 * time.Second)
	s.Tick(bg())
	if got := s.Snapshot().Remaining; got != 6*time.Second {
		t.Fatalf("remaining = %s, want 6s", got)
	}

	clock.add(7 * time.Second)
	s.Tick(bg())
	if _, urgent := n.counts(); urgent != 1 || s.Snapshot().Status != domain.TimerComplete {
		t.Fatalf("status = %s, urgent = %d", s.Snapshot().Status, urgent)
	}
}

// slowObserver blocks on one event type, like a broker that is slow to ack.
type slowObserver struct {
	on    domain.TimerEventType
	delay time.Duration
}

func (o slowObserver) OnTimerEvent(_ context.Context, ev domain.TimerEvent) {
	if ev.Type == o.on {
		time.Sleep(o.delay)
	}
}

func TestSupervisorSlowObserverDoesNotStretchCountdown(t *testing.T) {
	n := &mockNotifier{}
	s := New(n, quietLog(),
		WithTickInterval(10*time.Millisecond),
		WithAlmostDoneThreshold(400*time.Millisecond),
		WithNotifyCooldown(time.Hour),
		WithObserver(slowObserver{on: domain.TimerAlmost, delay: 300 * time.Millisecond}),
	)
	s.Start(bg())
	defer s.Stop()

	start := time.Now()
	_, _ = s.Begin(bg(), time.Second, "Eggs")

	for time.Since(start) < 3*time.Second {
		if _, urgent := n.counts(); urgent > 0 {
			if took := time.Since(start); took > 1200*time.Millisecond {
				t.Fatalf("1s timer completed after %s", took)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timer never fired")
}

func TestSupervisorLoop(t *testing.T) {
	n := &mockNotifier{}
	s := New(n, quietLog(), WithTickInterval(10*time.Millisecond), WithNotifyCooldown(time.Hour))
	s.Start(bg())
	defer s.Stop()

	_, _ = s.Begin(bg(), 30*time.Millisecond, "Eggs")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, urgent := n.counts(); urgent > 0 {
			if s.Snapshot().Status != domain.TimerComplete {
				t.Fatalf("status = %s", s.Snapshot().Status)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timer never fired")
}

func TestFormatRemaining(t *testing.T) {
	tests := map[time.Duration]string{
		time.Second:      "1 second",
		30 * time.Second: "30 seconds",
		90 * time.Second: "2 minutes",
		70 * time.Second: "1 minute",
		5 * time.Minute:  "5 minutes",
	}
	for d, want := range tests {
		if got := formatRemaining(d); got != want {
			t.Errorf("formatRemaining(%s) = %q, want %q", d, got, want)
		}
	}
}
