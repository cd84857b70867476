package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/chip8"
	"gochip8/pkg/runner"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-origin", "0x600", "-scale", "4", "-layout", "qwerty", "game.ch8"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if opts.origin != 0x600 || opts.scale != 4 || opts.layout != "qwerty" || opts.rom != "game.ch8" {
		t.Errorf("parseFlags() = %+v", opts)
	}
	if opts.tps != 60 {
		t.Errorf("default tps = %d; want 60", opts.tps)
	}

	if _, err := parseFlags([]string{"-origin", "0x1000"}); err == nil {
		t.Error("parseFlags() accepted an origin outside memory")
	}
	if _, err := parseFlags([]string{"-scale", "0"}); err == nil {
		t.Error("parseFlags() accepted a zero scale")
	}
}

func TestLookupLayout(t *testing.T) {
	layout, err := lookupLayout("AZERTY")
	if err != nil {
		t.Fatalf("lookupLayout failed: %v", err)
	}
	if got := layout.hostLabel(1, 0); got != "A" {
		t.Errorf("azerty label for keypad 4 = %q; want \"A\"", got)
	}

	if _, err := lookupLayout("dvorak"); err == nil || !strings.Contains(err.Error(), "azerty, qwerty") {
		t.Errorf("lookupLayout(dvorak) error = %v", err)
	}
}

func TestBindingsFollowKeypadLayout(t *testing.T) {
	want := map[ebiten.Key]chip8.Key{
		ebiten.KeyDigit1: 0x1,
		ebiten.KeyDigit4: 0xC,
		ebiten.KeyQ:      0x4,
		ebiten.KeyW:      0x5,
		ebiten.KeyR:      0xD,
		ebiten.KeyA:      0x7,
		ebiten.KeyS:      0x8,
		ebiten.KeyZ:      0xA,
		ebiten.KeyX:      0x0,
		ebiten.KeyV:      0xF,
	}

	for name, layout := range keyLayouts {
		bindings := layout.bindings()
		if len(bindings) != chip8.KeyCount {
			t.Fatalf("%s: len(bindings) = %d; want %d", name, len(bindings), chip8.KeyCount)
		}
		for _, b := range bindings {
			if key, ok := want[b.host]; ok && key != b.key {
				t.Errorf("%s: host %v drives key %v; want %v", name, b.host, b.key, key)
			}
		}
	}
}

func TestHostLabels(t *testing.T) {
	tests := []struct {
		layout   string
		row, col int
		want     string
	}{
		{"azerty", 0, 0, "1"},
		{"azerty", 1, 0, "A"},
		{"azerty", 1, 1, "Z"},
		{"azerty", 2, 0, "Q"},
		{"azerty", 3, 0, "W"},
		{"qwerty", 1, 0, "Q"},
		{"qwerty", 2, 0, "A"},
		{"qwerty", 3, 3, "V"},
	}

	for _, tt := range tests {
		if got := keyLayouts[tt.layout].hostLabel(tt.row, tt.col); got != tt.want {
			t.Errorf("%s hostLabel(%d, %d) = %q; want %q", tt.layout, tt.row, tt.col, got, tt.want)
		}
	}
}

func TestReadDropped(t *testing.T) {
	files := fstest.MapFS{
		"game.ch8": {Data: []byte{0x00, 0xE0}},
	}
	data, name, err := readDropped(files, chip8.ProgramStart)
	if err != nil {
		t.Fatalf("readDropped failed: %v", err)
	}
	if name != "game.ch8" || len(data) != 2 {
		t.Errorf("readDropped() = % x, %q", data, name)
	}

	files = fstest.MapFS{
		"loop.c8s": {Data: []byte("loop: jp loop")},
	}
	data, _, err = readDropped(files, chip8.ProgramStart)
	if err != nil {
		t.Fatalf("readDropped failed: %v", err)
	}
	if len(data) != 2 || data[0] != 0x12 || data[1] != 0x00 {
		t.Errorf("readDropped() = % x; want 12 00", data)
	}

	if _, _, err := readDropped(fstest.MapFS{}, chip8.ProgramStart); err == nil {
		t.Error("readDropped() accepted an empty drop")
	}
}

func TestScreenSize(t *testing.T) {
	w, h := screenSize(10)
	if w <= chip8.DisplayWidth*10 || h <= chip8.DisplayHeight*10 {
		t.Errorf("screenSize(10) = %d, %d; too small for the framebuffer", w, h)
	}
}

func TestFillNoise(t *testing.T) {
	pix := make([]byte, 16)
	fillNoise(pix)
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xFF {
			t.Errorf("alpha at %d = %d; want 255", i, pix[i])
		}
	}
}

func TestScreenshotName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	if got := screenshotName(ts); got != "chip8-20240309-140506.png" {
		t.Errorf("screenshotName() = %q", got)
	}
}

func TestGameHibernateRestore(t *testing.T) {
	session := runner.NewSession(chip8.New(chip8.ProgramStart, chip8.WithSeed(1)))
	// add V0, 1 ; jp $200
	if err := session.Boot([]byte{0x70, 0x01, 0x12, 0x00}); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	g := newGame(session, keyLayouts["azerty"], 4)
	g.stateFile = filepath.Join(t.TempDir(), "game.state")

	if err := session.RunTicks(3); err != nil {
		t.Fatalf("RunTicks failed: %v", err)
	}
	g.hibernate()
	if err := session.RunTicks(4); err != nil {
		t.Fatalf("RunTicks failed: %v", err)
	}

	g.restore()
	if g.banner != "" {
		t.Fatalf("restore failed: %s", g.banner)
	}
	if v := session.Machine().CPU().V[0]; v != 2 {
		t.Errorf("V0 after restore = %d; want 2", v)
	}
}

func TestGameFailShowsBanner(t *testing.T) {
	g := newGame(runner.NewSession(chip8.New(chip8.ProgramStart)), keyLayouts["qwerty"], 4)
	g.stateFile = filepath.Join(t.TempDir(), "missing.state")

	g.restore()
	if !strings.HasPrefix(g.banner, "Error: ") {
		t.Errorf("banner = %q", g.banner)
	}

	g.fail(errors.New("boom"))
	if g.banner != "Error: boom" || time.Since(g.bannerAt) > time.Minute {
		t.Errorf("banner = %q at %v", g.banner, g.bannerAt)
	}
}
