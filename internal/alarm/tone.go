// Package alarm plays the "eggs are ready" chime: three rising sine beeps.
package alarm

import (
	"encoding/binary"
	"errors"
	"math"
)

// PCM format of the synthesised chime.
const (
	SampleRate   = 44100
	ChannelCount = 1
	bytesPerSamp = 2
)

// beep is one tone of the chime.
type beep struct {
	start float64 // seconds from chime start
	freq  float64 // Hz
}

var chime = []beep{
	{start: 0.0, freq: 800},
	{start: 0.5, freq: 900},
	{start: 1.0, freq: 1000},
}

// Envelope of every beep: linear attack to peakGain, then an exponential
// decay to floorGain at beepLength.
const (
	beepLength = 0.4
	attack     = 0.05
	peakGain   = 0.3
	floorGain  = 0.01
)

// gain returns the envelope at t seconds into a beep.
func gain(t float64) float64 {
	switch {
	case t < 0 || t >= beepLength:
		return 0
	case t < attack:
		return peakGain * t / attack
	default:
		return peakGain * math.Pow(floorGain/peakGain, (t-attack)/(beepLength-attack))
	}
}

// Chime synthesises the chime as signed 16-bit little-endian mono PCM.
func Chime(rate int) []byte {
	last := chime[len(chime)-1]
	n := int(math.Ceil((last.start + beepLength) * float64(rate)))
	out := make([]byte, n*bytesPerSamp)

	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		var v float64
		for _, b := range chime {
			local := t - b.start
			if g := gain(local); g > 0 {
				v += g * math.Sin(2*math.Pi*b.freq*local)
			}
		}
		s := int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*bytesPerSamp:], uint16(s))
	}
	return out
}

// EncodeWAV wraps mono 16-bit PCM in a RIFF/WAVE header.
func EncodeWAV(pcm []byte, rate int) []byte {
	out := make([]byte, 44+len(pcm))
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], ChannelCount)
	binary.LittleEndian.PutUint32(out[24:], uint32(rate*ChannelCount*bytesPerSamp))
	binary.LittleEndian.PutUint16(out[28:], ChannelCount*bytesPerSamp)
	binary.LittleEndian.PutUint16(out[32:], bytesPerSamp*8)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
