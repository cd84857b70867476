package beeper

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	DefaultFrequency = 440.0
	DefaultAmplitude = 0.2
)

// Tone is a mono sine generator that streams float32 little-endian samples.
// While gated off it produces silence. Read runs on the audio thread, SetOn
// on the emulation thread.
type Tone struct {
	on atomic.Bool

	sampleRate int
	step       float64
	amplitude  float32
	phase      float64
}

func NewTone(sampleRate int, frequency float64, amplitude float32) *Tone {
	return &Tone{
		sampleRate: sampleRate,
		step:       2 * math.Pi * frequency / float64(sampleRate),
		amplitude:  amplitude,
	}
}

// SetOn gates the tone.
func (t *Tone) SetOn(on bool) {
	t.on.Store(on)
}

func (t *Tone) On() bool {
	return t.on.Load()
}

// Read fills p with whole samples and never blocks.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	if !t.on.Load() {
		clear(p[:n])
		t.phase = 0
		return n, nil
	}

	for i := 0; i < n; i += 4 {
		sample := t.amplitude * float32(math.Sin(t.phase))
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	return n, nil
}
