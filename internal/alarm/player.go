package alarm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Alarm = (*Player)(nil)
	_ domain.Alarm = (*NoOp)(nil)
)

// Option configures the Player.
type Option func(*Player) error

// WithSoundFile replaces the chime with a 16-bit mono 44.1 kHz WAV file.
func WithSoundFile(path string) Option {
	return func(p *Player) error {
		wav, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("alarm sound: %w", err)
		}
		pcm, err := extractPCM(wav)
		if err != nil {
			return fmt.Errorf("alarm sound %s: %w", path, err)
		}
		p.pcm = pcm
		return nil
	}
}

// Player plays the alarm through the system audio device via oto. Only
// one Player may exist per process.
type Player struct {
	ctx *oto.Context
	pcm []byte
	log *logger.Logger

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initialises the audio device. Returns an error if it is
// unavailable; callers fall back to NoOp.
func NewPlayer(log *logger.Logger, opts ...Option) (*Player, error) {
	p := &Player{pcm: Chime(SampleRate), log: log}
	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan
	p.ctx = ctx

	log.Debug("audio initialised (rate=%d, channels=%d, %d bytes of alarm)", SampleRate, ChannelCount, len(p.pcm))
	return p, nil
}

// Ring plays the alarm and blocks until it finishes or ctx is done.
func (p *Player) Ring(ctx context.Context) error {
	player := p.ctx.NewPlayer(bytes.NewReader(p.pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("ringing")

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
		case <-time.After(10 * time.Millisecond):
		}
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Silence interrupts a ringing alarm. Safe to call when nothing plays.
func (p *Player) Silence() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("alarm silenced")
	}
}

// NoOp is an alarm that only logs. Used when sound is off or no audio
// device exists.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent alarm.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Ring logs and returns.
func (n *NoOp) Ring(ctx context.Context) error {
	n.log.Debug("alarm (silent)")
	return nil
}
