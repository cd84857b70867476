//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/runner"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type runOptions struct {
	origin     uint16
	ticks      int
	seed       uint64
	dump       bool
	screenshot string
	scale      int
}

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output image path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled image headlessly")
	runBinPath := flag.String("run-bin", "", "run an existing image headlessly")
	disPath := flag.String("dis", "", "print a disassembly listing of an image")
	origin := flag.Uint("origin", uint(chip8.ProgramStart), "load address and initial program counter")
	ticks := flag.Int("ticks", 600, "number of ticks to run")
	seed := flag.Uint64("seed", 1, "random seed for RND")
	dump := flag.Bool("dump", false, "print the final framebuffer as text")
	screenshot := flag.String("screenshot", "", "write the final framebuffer to a PNG file")
	scale := flag.Int("scale", 8, "screenshot pixel scale")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("gochip8", buildinfo.Version(version, commit, date))
		return
	}

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}
	if *origin >= chip8.MemorySize {
		fmt.Fprintf(os.Stderr, "origin 0x%x is outside memory\n", *origin)
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.NewAssembler(uint16(*origin)).Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		if err := writeBinary(output, code); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write image %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *disPath != "" {
		image, err := readBinary(*disPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read image %q: %v\n", *disPath, err)
			os.Exit(1)
		}
		fmt.Print(asm.Disassemble(image, uint16(*origin)))
	}

	if *inPath == "" && *disPath == "" && *runBinPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -dis to disassemble, -run to run assembled output, or -run-bin <file> to run an existing image")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	opts := runOptions{
		origin:     uint16(*origin),
		ticks:      *ticks,
		seed:       *seed,
		dump:       *dump,
		screenshot: *screenshot,
		scale:      *scale,
	}
	if err := runBinary(os.Stdout, runTarget, opts); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func readBinary(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// runBinary boots an image, ticks it and reports the final machine state.
func runBinary(w io.Writer, path string, opts runOptions) error {
	loadedBytes, err := readBinary(path)
	if err != nil {
		return err
	}

	session := runner.NewSession(chip8.New(opts.origin, chip8.WithSeed(opts.seed)))
	if err := session.Boot(loadedBytes); err != nil {
		return err
	}

	// Capture the registers before a fault resets the machine.
	var state chip8.CPU
	runErr := func() error {
		for i := 0; i < opts.ticks; i++ {
			state = session.Machine().CPU()
			if err := session.Step(); err != nil {
				return err
			}
		}
		state = session.Machine().CPU()
		return nil
	}()

	m := session.Machine()
	if opts.dump {
		writeFramebuffer(w, m.Display())
	}
	if opts.screenshot != "" {
		if err := m.Display().SaveScreenshot(opts.screenshot, opts.scale); err != nil {
			return err
		}
	}

	fmt.Fprintf(w,
		"run complete (%s): PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d last=%s V=% X\n",
		path,
		state.PC,
		state.I,
		state.SP,
		state.DelayTimer,
		state.SoundTimer,
		m.LastInstruction().Disassemble(),
		state.V[:],
	)

	return runErr
}

func writeFramebuffer(w io.Writer, d *chip8.Display) {
	var sb strings.Builder
	for y := 0; y < d.Height(); y++ {
		for x := 0; x < d.Width(); x++ {
			if d.Pixel(x, y) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	_, _ = io.WriteString(w, sb.String())
}
