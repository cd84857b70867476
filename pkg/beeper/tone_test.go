package beeper

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestToneSilentWhenOff(t *testing.T) {
	tone := NewTone(DefaultSampleRate, DefaultFrequency, DefaultAmplitude)
	p := make([]byte, 64)
	for i := range p {
		p[i] = 0xAA
	}

	n, err := tone.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 64, n)
	for _, s := range samples(p) {
		assert.Equal(t, float32(0), s)
	}
}

func TestToneAmplitudeAndPeriod(t *testing.T) {
	// 8 samples per cycle.
	tone := NewTone(8, 1, 0.2)
	tone.SetOn(true)
	assert.Equal(t, true, tone.On())

	p := make([]byte, 8*4)
	_, err := tone.Read(p)
	assert.NoError(t, err)
	s := samples(p)

	assert.Equal(t, float32(0), s[0])
	assert.Equal(t, float32(0.2), s[2])
	assert.Equal(t, true, math.Abs(float64(s[6]+0.2)) < 1e-6)
	for _, v := range s {
		assert.Equal(t, true, v <= 0.2 && v >= -0.2)
	}
}

func TestToneReadsWholeSamples(t *testing.T) {
	tone := NewTone(DefaultSampleRate, DefaultFrequency, DefaultAmplitude)
	tone.SetOn(true)

	n, err := tone.Read(make([]byte, 10))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}
