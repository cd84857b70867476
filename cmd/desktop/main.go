package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/buildinfo"

	"gochip8/pkg/beeper"
	"gochip8/pkg/chip8"
	"gochip8/pkg/runner"
	"gochip8/pkg/utils"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type options struct {
	origin   uint
	tps      int
	scale    int
	seed     uint64
	layout   string
	mute     bool
	shotsDir string
	state    string
	rom      string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("chip8-desktop", flag.ContinueOnError)
	fs.UintVar(&opts.origin, "origin", uint(chip8.ProgramStart), "load address and initial program counter")
	fs.IntVar(&opts.tps, "tps", 60, "instructions per second (one per frame)")
	fs.IntVar(&opts.scale, "scale", 10, "framebuffer pixel scale")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed for RND (0 seeds from the clock)")
	fs.StringVar(&opts.layout, "layout", "azerty", "host key layout: azerty or qwerty")
	fs.BoolVar(&opts.mute, "mute", false, "disable the beeper")
	fs.StringVar(&opts.shotsDir, "shots", ".", "directory for F12 screenshots")
	fs.StringVar(&opts.state, "state", "chip8.state", "file used by F6 and F9 to save and restore the machine")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.origin >= chip8.MemorySize {
		return opts, fmt.Errorf("origin 0x%x is outside memory", opts.origin)
	}
	if opts.tps < 1 || opts.scale < 1 {
		return opts, fmt.Errorf("tps and scale must be positive")
	}
	opts.rom = fs.Arg(0)
	return opts, nil
}

func newMachine(opts options) *chip8.Machine {
	var machineOpts []chip8.Option
	if opts.seed != 0 {
		machineOpts = append(machineOpts, chip8.WithSeed(opts.seed))
	}
	return chip8.New(uint16(opts.origin), machineOpts...)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}
	layout, err := lookupLayout(opts.layout)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("gochip8 desktop %s", buildinfo.Version(version, commit, date))

	session := runner.NewSession(newMachine(opts))
	if opts.rom != "" {
		program, err := utils.ReadProgram(opts.rom, uint16(opts.origin))
		if err != nil {
			log.Fatalf("Failed to read program: %v", err)
		}
		if err := session.Boot(program); err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
	}

	game := newGame(session, layout, opts.scale)
	game.shotsDir = opts.shotsDir
	game.stateFile = opts.state

	if !opts.mute {
		b, err := beeper.New(beeper.DefaultSampleRate)
		if err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			game.beeper = b
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("closing audio: %v", err)
				}
			}()
		}
	}

	w, h := screenSize(opts.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("gochip8")
	ebiten.SetTPS(opts.tps)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
