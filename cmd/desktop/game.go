package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/chip8"
	"gochip8/pkg/grid"
	"gochip8/pkg/runner"
	"gochip8/pkg/utils"
)

const (
	keyCell   = 40
	keyGap    = 6
	panelPad  = 12
	statusH   = 28
	bannerFor = 5 * time.Second
)

var (
	pixelOn   = color.RGBA{0xE0, 0xF0, 0xE0, 0xFF}
	pixelOff  = color.RGBA{0x10, 0x18, 0x10, 0xFF}
	keyIdle   = color.RGBA{0x40, 0x40, 0x40, 0xFF}
	keyDown   = color.RGBA{0x00, 0xDC, 0x5A, 0xFF}
	textColor = color.RGBA{0xBE, 0xBE, 0xBE, 0xFF}
	errColor  = color.RGBA{0xF0, 0x50, 0x50, 0xFF}
	panelBg   = color.RGBA{0x18, 0x18, 0x18, 0xFF}
)

// toneGate is the part of *beeper.Beeper the game drives.
type toneGate interface {
	SetOn(on bool)
}

type Game struct {
	session   *runner.Session
	origin    uint16
	bindings  []binding
	layout    KeyLayout
	beeper    toneGate
	scale     int
	shotsDir  string
	stateFile string

	screenImg *ebiten.Image // 64x32 framebuffer canvas
	noise     []byte
	showHelp  bool
	banner    string
	bannerAt  time.Time
}

func newGame(session *runner.Session, layout KeyLayout, scale int) *Game {
	return &Game{
		session:   session,
		origin:    session.Machine().Origin(),
		bindings:  layout.bindings(),
		layout:    layout,
		scale:     scale,
		shotsDir:  ".",
		stateFile: "chip8.state",
		noise:     make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}
}

func (g *Game) Update() error {
	m := g.session.Machine()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.session.Reload(); err != nil {
			g.fail(err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF6) {
		g.hibernate()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.restore()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot()
	}
	if dropped := ebiten.DroppedFiles(); dropped != nil {
		g.loadDropped(dropped)
	}

	for _, b := range g.bindings {
		if inpututil.IsKeyJustPressed(b.host) {
			m.SetKey(b.key, true)
		} else if inpututil.IsKeyJustReleased(b.host) {
			m.SetKey(b.key, false)
		}
	}

	if err := g.session.Step(); err != nil {
		g.fail(err)
	}
	if g.beeper != nil {
		g.beeper.SetOn(m.SoundOn())
	}
	return nil
}

// fail logs a fault and shows it until bannerFor has passed.
func (g *Game) fail(err error) {
	log.Printf("machine halted: %v", err)
	g.banner = fmt.Sprintf("Error: %v", err)
	g.bannerAt = time.Now()
}

func (g *Game) screenshot() {
	name := filepath.Join(g.shotsDir, screenshotName(time.Now()))
	if err := g.session.Machine().Display().SaveScreenshot(name, g.scale); err != nil {
		log.Printf("screenshot failed: %v", err)
		return
	}
	log.Printf("screenshot saved to %s", name)
}

func (g *Game) hibernate() {
	if !g.session.Running() {
		return
	}
	if err := g.session.Machine().HibernateToFile(g.stateFile); err != nil {
		log.Printf("saving state failed: %v", err)
		return
	}
	log.Printf("state saved to %s", g.stateFile)
}

func (g *Game) restore() {
	if err := g.session.Restore(g.stateFile); err != nil {
		g.fail(err)
		return
	}
	g.banner = ""
	log.Printf("state restored from %s", g.stateFile)
}

func screenshotName(t time.Time) string {
	return "chip8-" + t.Format("20060102-150405") + ".png"
}

// loadDropped boots the first program file found in a drop.
func (g *Game) loadDropped(files fs.FS) {
	program, name, err := readDropped(files, g.origin)
	if err != nil {
		g.fail(err)
		return
	}
	if err := g.session.Boot(program); err != nil {
		g.fail(err)
		return
	}
	g.banner = ""
	log.Printf("loaded %s (%d bytes)", name, len(program))
}

func readDropped(files fs.FS, origin uint16) ([]byte, string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(files, e.Name())
		if err != nil {
			return nil, "", err
		}
		program, err := utils.DecodeProgram(e.Name(), data, origin)
		return program, e.Name(), err
	}
	return nil, "", errors.New("no file in drop")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(panelBg)
	g.drawFramebuffer(screen)
	g.drawKeypad(screen)
	g.drawStatus(screen)
	if g.showHelp {
		g.drawHelp(screen)
	}
}

func (g *Game) drawFramebuffer(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}

	d := g.session.Machine().Display()
	switch {
	case !g.session.Running():
		fillNoise(g.noise)
		g.screenImg.WritePixels(g.noise)
	case d.Dirty():
		g.screenImg.WritePixels(d.RGBA(pixelOn, pixelOff))
		d.SetDirty(false)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screenImg, op)
}

// fillNoise writes random grey levels, shown while no program is running.
func fillNoise(pix []byte) {
	for i := 0; i < len(pix); i += 4 {
		v := byte(rand.IntN(256))
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xFF
	}
}

func (g *Game) keypadLeft() int {
	return chip8.DisplayWidth*g.scale + panelPad
}

func (g *Game) drawKeypad(screen *ebiten.Image) {
	m := g.session.Machine()
	face := basicfont.Face7x13

	for i := 0; i < chip8.KeyCount; i++ {
		col, row := grid.GetGridCoords(i, 4)
		key := chip8.Layout[row][col]
		px, py := grid.CellOrigin(col, row, keyCell, keyCell, keyGap, g.keypadLeft(), panelPad)

		c := keyIdle
		if m.IsKeyPressed(key) {
			c = keyDown
		}
		fillRect(screen, px, py, keyCell, keyCell, c)
		text.Draw(screen, key.String(), face, px+4, py+14, textColor)
		text.Draw(screen, g.layout.hostLabel(row, col), face, px+keyCell-12, py+keyCell-6, textColor)
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	face := basicfont.Face7x13
	top := chip8.DisplayHeight * g.scale
	baseline := top + statusH - 9

	if g.banner != "" && time.Since(g.bannerAt) < bannerFor {
		text.Draw(screen, g.banner, face, panelPad, baseline, errColor)
		return
	}

	last := g.session.Machine().LastInstruction()
	status := fmt.Sprintf("Instruction: %s  %s", last, last.Disassemble())
	if !g.session.Running() {
		status = "Not running: drop a .ch8 file or press F5 (F1 for help)"
	}
	text.Draw(screen, status, face, panelPad, baseline, textColor)
}

var helpLines = []string{
	"CHIP-8",
	"",
	"Keypad       see the panel on the right",
	"F1           toggle this help",
	"F5           reset and reload the program",
	"F6 / F9      save / restore the machine state",
	"F12          save a PNG screenshot",
	"Drop a file  load a .ch8 image or .c8s source",
}

func (g *Game) drawHelp(screen *ebiten.Image) {
	w, h := g.Layout(0, 0)
	fillRect(screen, 0, 0, w, h, panelBg)
	for i, line := range helpLines {
		text.Draw(screen, line, basicfont.Face7x13, 2*panelPad, 3*panelPad+i*18, textColor)
	}
}

func fillRect(dst *ebiten.Image, x, y, w, h int, c color.Color) {
	dst.SubImage(image.Rect(x, y, x+w, y+h)).(*ebiten.Image).Fill(c)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenSize(g.scale)
}

// screenSize is the logical screen: framebuffer plus keypad panel on the
// right, status line below.
func screenSize(scale int) (int, int) {
	panelW := 4*keyCell + 3*keyGap + 2*panelPad
	panelH := 4*keyCell + 3*keyGap + 2*panelPad
	w := chip8.DisplayWidth*scale + panelW
	h := max(chip8.DisplayHeight*scale, panelH) + statusH
	return w, h
}
