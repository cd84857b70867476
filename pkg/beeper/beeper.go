// Package beeper plays the CHIP-8 buzzer through the host audio device.
package beeper

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const DefaultSampleRate = 44100

// Beeper owns the audio context and a player streaming a Tone.
type Beeper struct {
	tone   *Tone
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

// New opens the audio device and starts streaming a 440 Hz tone, gated off.
func New(sampleRate int) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	b := &Beeper{
		tone: NewTone(sampleRate, DefaultFrequency, DefaultAmplitude),
		ctx:  ctx,
	}
	b.player = ctx.NewPlayer(b.tone)
	b.player.Play()
	return b, nil
}

// SetOn follows the machine's sound flag. It is cheap enough to call every
// frame.
func (b *Beeper) SetOn(on bool) {
	b.tone.SetOn(on)
}

func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}
