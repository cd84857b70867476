package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/retroenv/retrogolib/buildinfo"
	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/runner"
	"gochip8/pkg/utils"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// terminal puts stdin into raw mode for the lifetime of the program.
type terminal struct {
	fd       int
	oldState *term.State
}

func openTerminal() (*terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < chip8.DisplayWidth || h < chip8.DisplayHeight/2+1) {
		log.Printf("terminal is %dx%d, the display needs %dx%d", w, h, chip8.DisplayWidth, chip8.DisplayHeight/2+1)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	fmt.Print(hideCursor, clearScreen)
	return &terminal{fd: fd, oldState: oldState}, nil
}

func (t *terminal) Close() {
	fmt.Print(showCursor, "\r\n")
	_ = term.Restore(t.fd, t.oldState)
}

// readInput forwards keypad keys to the runner until esc or ctrl-c.
func readInput(ctx context.Context, cancel context.CancelFunc, r io.Reader, synth *keySynth, reload chan<- struct{}) {
	defer cancel()
	buf := make([]byte, 1)

	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		switch b := buf[0]; b {
		case keyEscape, keyCtrlC:
			return
		case 'r', 'R':
			select {
			case reload <- struct{}{}:
			case <-ctx.Done():
				return
			}
		default:
			synth.feed(ctx, b)
		}
	}
}

func main() {
	origin := flag.Uint("origin", uint(chip8.ProgramStart), "load address and initial program counter")
	hz := flag.Int("hz", 60, "instructions per second")
	seed := flag.Uint64("seed", 0, "random seed for RND (0 seeds from the clock)")
	layout := flag.String("layout", "azerty", "key layout: azerty or qwerty")
	hold := flag.Duration("hold", 150*time.Millisecond, "how long a typed key stays pressed")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] program.ch8|program.c8s")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *origin >= chip8.MemorySize || *hz < 1 {
		log.Fatalf("Invalid arguments: origin 0x%x, hz %d", *origin, *hz)
	}
	keyMap, err := buildKeyMap(*layout)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("gochip8 console %s", buildinfo.Version(version, commit, date))

	program, err := utils.ReadProgram(flag.Arg(0), uint16(*origin))
	if err != nil {
		log.Fatalf("Failed to read program: %v", err)
	}

	var opts []chip8.Option
	if *seed != 0 {
		opts = append(opts, chip8.WithSeed(*seed))
	}
	session := runner.NewSession(chip8.New(uint16(*origin), opts...))
	if err := session.Boot(program); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	t, err := openTerminal()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	keys := make(chan runner.KeyEvent, 16)
	reload := make(chan struct{}, 1)
	go readInput(ctx, cancel, os.Stdin, newKeySynth(keyMap, *hold, keys), reload)

	var faults []error
	err = runner.Run(ctx, session, keys, reload, time.Second/time.Duration(*hz), func(f runner.Frame) {
		if f.Err != nil {
			faults = append(faults, f.Err)
		}
		if f.Pixels == nil {
			f.Pixels = session.Machine().Display().Pixels()
		}
		_ = renderFrame(os.Stdout, f)
	})
	t.Close()

	for _, fault := range faults {
		log.Printf("machine halted: %v", fault)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
