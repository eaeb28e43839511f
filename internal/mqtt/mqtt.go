// Package mqtt pushes egg timer events to an MQTT broker so phones and
// home-automation setups can react when the eggs are done.
package mqtt

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// DefaultTopic is used when the config names none.
const DefaultTopic = "ottoegg/timer"

// Publisher publishes timer events.
type Publisher interface {
	// Publish sends one event. Errors are reported, never fatal.
	Publish(ev domain.TimerEvent) error
	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON message body.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload describes the timer at the moment of the event.
type TimerPayload struct {
	Timestamp        string `json:"timestamp"`
	Event            string `json:"event"`
	ID               string `json:"id"`
	Label            string `json:"label"`
	Status           string `json:"status"`
	DurationSeconds  int    `json:"durationSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

// FormatPayload creates the JSON payload for a timer event.
func FormatPayload(ev domain.TimerEvent) ([]byte, error) {
	return json.Marshal(Payload{Timer: TimerPayload{
		Timestamp:        ev.At.UTC().Format(time.RFC3339),
		Event:            string(ev.Type),
		ID:               ev.Timer.ID,
		Label:            ev.Timer.Label,
		Status:           ev.Timer.Status.String(),
		DurationSeconds:  seconds(ev.Timer.Duration),
		RemainingSeconds: seconds(ev.Timer.Remaining),
	}})
}

// QoS returns the delivery guarantee for an event: completion must arrive
// (at-least-once), everything else is best effort.
func QoS(t domain.TimerEventType) byte {
	if t == domain.TimerCompleted {
		return 1
	}
	return 0
}

func seconds(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}

// Compile-time interface check.
var _ domain.TimerObserver = (*Observer)(nil)

// Observer forwards timer events to a Publisher.
type Observer struct {
	pub Publisher
	log *logger.Logger
}

// NewObserver bridges the timer supervisor to pub.
func NewObserver(pub Publisher, log *logger.Logger) *Observer {
	return &Observer{pub: pub, log: log}
}

// OnTimerEvent publishes ev, logging failures.
func (o *Observer) OnTimerEvent(ctx context.Context, ev domain.TimerEvent) {
	if err := o.pub.Publish(ev); err != nil {
		o.log.Warn("publish %s: %v", ev.Type, err)
		return
	}
	o.log.Debug("published %s for timer %s", ev.Type, ev.Timer.ID)
}
