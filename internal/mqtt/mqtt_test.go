package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

func event(typ domain.TimerEventType) domain.TimerEvent {
	return domain.TimerEvent{
		Type: typ,
		Timer: domain.TimerSnapshot{
			ID:        "abc",
			Label:     "Eggs",
			Status:    domain.TimerComplete,
			Duration:  334 * time.Second,
			Remaining: 400 * time.Millisecond,
		},
		At: time.Date(2026, 3, 1, 7, 30, 0, 0, time.FixedZone("CET", 3600)),
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(event(domain.TimerCompleted))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := TimerPayload{
		Timestamp:        "2026-03-01T06:30:00Z",
		Event:            "completed",
		ID:               "abc",
		Label:            "Eggs",
		Status:           "complete",
		DurationSeconds:  334,
		RemainingSeconds: 0,
	}
	if parsed.Timer != want {
		t.Errorf("payload = %+v, want %+v", parsed.Timer, want)
	}
}

func TestQoS(t *testing.T) {
	tests := []struct {
		typ  domain.TimerEventType
		want byte
	}{
		{domain.TimerCompleted, 1},
		{domain.TimerStarted, 0},
		{domain.TimerReminder, 0},
		{domain.TimerAlmost, 0},
	}
	for _, tt := range tests {
		if got := QoS(tt.typ); got != tt.want {
			t.Errorf("QoS(%s) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestObserver(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	pub := NewFakePublisher()
	obs := NewObserver(pub, log)

	obs.OnTimerEvent(context.Background(), event(domain.TimerStarted))
	obs.OnTimerEvent(context.Background(), event(domain.TimerCompleted))
	if len(pub.Events) != 2 || len(pub.Payloads) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.Events))
	}
	if pub.Events[1].Type != domain.TimerCompleted {
		t.Errorf("second event = %s", pub.Events[1].Type)
	}

	pub.PublishError = errors.New("broker down")
	obs.OnTimerEvent(context.Background(), event(domain.TimerReminder))
	if len(pub.Events) != 2 {
		t.Error("failed publish should not be recorded")
	}
}
