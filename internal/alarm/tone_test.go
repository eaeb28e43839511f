package alarm

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sample(pcm []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
}

func TestChimeLength(t *testing.T) {
	pcm := Chime(1000)
	if got, want := len(pcm)/2, 1400; got != want {
		t.Fatalf("samples = %d, want %d", got, want)
	}
}

func TestEnvelope(t *testing.T) {
	tests := []struct {
		t, want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.025, 0.15},
		{0.05, 0.3},
		{0.4, 0},
	}
	for _, tt := range tests {
		if got := gain(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("gain(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if g := gain(0.3999); math.Abs(g-floorGain) > 0.001 {
		t.Errorf("gain at end of beep = %v, want about %v", g, floorGain)
	}
	if gain(0.2) >= gain(0.1) {
		t.Error("envelope should decay after the attack")
	}
}

func TestChimeHasGaps(t *testing.T) {
	rate := 8000
	pcm := Chime(rate)
	// 0.45 s falls between the first and second beep.
	for i := int(0.41 * float64(rate)); i < int(0.49*float64(rate)); i++ {
		if s := sample(pcm, i); s != 0 {
			t.Fatalf("sample %d = %d, want silence", i, s)
		}
	}
	var peak int16
	for i := 0; i < int(0.4*float64(rate)); i++ {
		if s := sample(pcm, i); s > peak {
			peak = s
		}
	}
	if want := int16(0.29 * math.MaxInt16); peak < want {
		t.Errorf("first beep peak = %d, want at least %d", peak, want)
	}
}

func TestWAV(t *testing.T) {
	pcm := Chime(SampleRate)
	wav := EncodeWAV(pcm, SampleRate)
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("bad header")
	}
	if binary.LittleEndian.Uint32(wav[24:]) != SampleRate {
		t.Fatal("bad sample rate")
	}

	got, err := extractPCM(wav)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(pcm) {
		t.Fatalf("pcm length = %d, want %d", len(got), len(pcm))
	}

	if _, err := extractPCM([]byte("RIFF")); err == nil {
		t.Error("short input should fail")
	}
	junk := make([]byte, 64)
	copy(junk, "RIFX")
	if _, err := extractPCM(junk); err == nil {
		t.Error("non-RIFF input should fail")
	}
}

func TestWithSoundFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ding.wav")
	if err := os.WriteFile(good, EncodeWAV([]byte{1, 0, 2, 0}, SampleRate), 0o644); err != nil {
		t.Fatal(err)
	}
	p := &Player{}
	if err := WithSoundFile(good)(p); err != nil {
		t.Fatal(err)
	}
	if len(p.pcm) != 4 {
		t.Fatalf("pcm = %v", p.pcm)
	}

	bad := filepath.Join(dir, "ding.txt")
	_ = os.WriteFile(bad, []byte("not audio"), 0o644)
	if err := WithSoundFile(bad)(&Player{}); err == nil {
		t.Error("expected error for a non-WAV file")
	}
	if err := WithSoundFile(filepath.Join(dir, "missing.wav"))(&Player{}); err == nil {
		t.Error("expected error for a missing file")
	}
}
