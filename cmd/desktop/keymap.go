package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/chip8"
)

// keypadKeys is the block of host keys driving the keypad, in the same
// arrangement as chip8.Layout. Ebiten reports physical key positions (named
// after a US keyboard), so every layout uses this block.
var keypadKeys = [4][4]ebiten.Key{
	{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4},
	{ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR},
	{ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF},
	{ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV},
}

// KeyLayout names the labels printed on the keypad block of a host keyboard.
type KeyLayout struct {
	labels [4]string
}

var keyLayouts = map[string]KeyLayout{
	"azerty": {labels: [4]string{"1234", "AZER", "QSDF", "WXCV"}},
	"qwerty": {labels: [4]string{"1234", "QWER", "ASDF", "ZXCV"}},
}

func lookupLayout(name string) (KeyLayout, error) {
	layout, ok := keyLayouts[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(keyLayouts))
		for n := range keyLayouts {
			names = append(names, n)
		}
		sort.Strings(names)
		return KeyLayout{}, fmt.Errorf("unknown key layout %q (available: %s)", name, strings.Join(names, ", "))
	}
	return layout, nil
}

// binding pairs a host key with the keypad key it drives.
type binding struct {
	host ebiten.Key
	key  chip8.Key
}

func (l KeyLayout) bindings() []binding {
	out := make([]binding, 0, chip8.KeyCount)
	for row := range keypadKeys {
		for col := range keypadKeys[row] {
			out = append(out, binding{host: keypadKeys[row][col], key: chip8.Layout[row][col]})
		}
	}
	return out
}

// hostLabel is the printed name of the host key at a keypad position.
func (l KeyLayout) hostLabel(row, col int) string {
	return l.labels[row][col : col+1]
}
