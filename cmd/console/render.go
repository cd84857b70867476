package main

import (
	"fmt"
	"io"
	"strings"

	"gochip8/pkg/chip8"
	"gochip8/pkg/grid"
	"gochip8/pkg/runner"
)

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// halfBlocks is indexed by top | bottom<<1.
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// renderFrame draws two framebuffer rows per text line followed by a status
// line. Raw mode needs explicit carriage returns.
func renderFrame(w io.Writer, f runner.Frame) error {
	var sb strings.Builder
	sb.WriteString(cursorHome)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			top := f.Pixels[grid.GetIndex(x, y, chip8.DisplayWidth)] != 0
			bottom := f.Pixels[grid.GetIndex(x, y+1, chip8.DisplayWidth)] != 0
			idx := 0
			if top {
				idx |= 1
			}
			if bottom {
				idx |= 2
			}
			sb.WriteString(halfBlocks[idx])
		}
		sb.WriteString("\r\n")
	}

	sb.WriteString(statusLine(f))
	_, err := io.WriteString(w, sb.String())
	return err
}

func statusLine(f runner.Frame) string {
	var line string
	switch {
	case f.Err != nil:
		line = fmt.Sprintf("Error: %v (r reloads, esc quits)", f.Err)
	case !f.Running:
		line = "Halted (r reloads, esc quits)"
	default:
		line = fmt.Sprintf("Instruction: %s  %-16s", f.Last, f.Last.Disassemble())
		if f.SoundOn {
			line += " [beep]"
		}
	}
	// Pad so shorter lines overwrite longer ones.
	return fmt.Sprintf("%-*s\r\n", chip8.DisplayWidth, line)
}
