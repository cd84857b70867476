package main

import (
	"context"
	"fmt"
	"time"

	"gochip8/pkg/chip8"
	"gochip8/pkg/runner"
)

const (
	keyEscape = 0x1B
	keyCtrlC  = 0x03
)

// keyLayouts map typed characters onto the keypad, row by row as in
// chip8.Layout.
var keyLayouts = map[string][4]string{
	"azerty": {"1234", "azer", "qsdf", "wxcv"},
	"qwerty": {"1234", "qwer", "asdf", "zxcv"},
}

func buildKeyMap(name string) (map[byte]chip8.Key, error) {
	rows, ok := keyLayouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown key layout %q", name)
	}
	m := make(map[byte]chip8.Key, chip8.KeyCount*2)
	for row, chars := range rows {
		for col := 0; col < len(chars); col++ {
			key := chip8.Layout[row][col]
			c := chars[col]
			m[c] = key
			if c >= 'a' && c <= 'z' {
				m[c-'a'+'A'] = key
			}
		}
	}
	return m, nil
}

// keySynth turns typed characters into press/release pairs, since a terminal
// only reports key repeats. A key is released hold after its last repeat.
type keySynth struct {
	keys    map[byte]chip8.Key
	hold    time.Duration
	events  chan<- runner.KeyEvent
	pending map[chip8.Key]*time.Timer
}

func newKeySynth(keys map[byte]chip8.Key, hold time.Duration, events chan<- runner.KeyEvent) *keySynth {
	return &keySynth{
		keys:    keys,
		hold:    hold,
		events:  events,
		pending: make(map[chip8.Key]*time.Timer),
	}
}

// feed handles one input byte. It reports false for bytes that are not
// keypad keys.
func (s *keySynth) feed(ctx context.Context, b byte) bool {
	key, ok := s.keys[b]
	if !ok {
		return false
	}

	if t, held := s.pending[key]; held && t.Stop() {
		t.Reset(s.hold)
		return true
	}

	send(ctx, s.events, runner.KeyEvent{Key: key, Pressed: true})
	s.pending[key] = time.AfterFunc(s.hold, func() {
		send(ctx, s.events, runner.KeyEvent{Key: key, Pressed: false})
	})
	return true
}

func send(ctx context.Context, events chan<- runner.KeyEvent, ev runner.KeyEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
