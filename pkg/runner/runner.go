// Package runner drives a chip8.Machine from a single goroutine. Key events
// arrive on a channel and ticks come from a time.Ticker, so the machine never
// needs locking.
package runner

import (
	"context"
	"time"

	"gochip8/pkg/chip8"
)

// TickInterval is the nominal CHIP-8 rate of one instruction per 1/60 s.
const TickInterval = time.Second / 60

type KeyEvent struct {
	Key     chip8.Key
	Pressed bool
}

// Frame is a copy of what a presenter needs after a tick.
type Frame struct {
	Pixels  []byte
	Dirty   bool
	SoundOn bool
	Last    chip8.Instruction
	Running bool
	// Err is set on the tick that faulted.
	Err error
}

// Session couples a machine with the program it was booted with, so that a
// fault can be recovered from by reloading.
type Session struct {
	machine *chip8.Machine
	program []byte
	running bool
}

func NewSession(m *chip8.Machine) *Session {
	return &Session{machine: m}
}

func (s *Session) Machine() *chip8.Machine {
	return s.machine
}

// Boot resets the machine, installs the font and loads program.
func (s *Session) Boot(program []byte) error {
	s.machine.Reset()
	s.machine.LoadFont()
	if err := s.machine.Load(program); err != nil {
		s.running = false
		return err
	}
	s.program = program
	s.running = true
	return nil
}

// Reload boots the last program again. It is a no-op before the first Boot.
func (s *Session) Reload() error {
	if s.program == nil {
		return nil
	}
	return s.Boot(s.program)
}

// Restore resumes from a hibernation file written by
// chip8.Machine.HibernateToFile.
func (s *Session) Restore(path string) error {
	if err := s.machine.RestoreFromFile(path); err != nil {
		return err
	}
	s.running = true
	return nil
}

func (s *Session) Running() bool {
	return s.running
}

// Step ticks the machine once. On a fault the machine is reset and the
// session halts until the next Boot or Reload.
func (s *Session) Step() error {
	if !s.running {
		return nil
	}
	if err := s.machine.Tick(); err != nil {
		s.machine.Reset()
		s.running = false
		return err
	}
	return nil
}

// RunTicks steps up to n times and stops at the first fault.
func (s *Session) RunTicks(n int) error {
	for i := 0; i < n && s.running; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot copies the framebuffer and acknowledges the dirty flag.
func (s *Session) Snapshot() Frame {
	d := s.machine.Display()
	f := Frame{
		Pixels:  append([]byte(nil), d.Pixels()...),
		Dirty:   d.Dirty(),
		SoundOn: s.machine.SoundOn(),
		Last:    s.machine.LastInstruction(),
		Running: s.running,
	}
	d.SetDirty(false)
	return f
}

// Run owns the session until ctx is done. Key events and reload requests are
// applied between ticks; present is called on the runner goroutine after
// every tick. Either channel may be nil.
func Run(ctx context.Context, s *Session, keys <-chan KeyEvent, reload <-chan struct{}, interval time.Duration, present func(Frame)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			s.machine.SetKey(ev.Key, ev.Pressed)

		case _, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			if err := s.Reload(); err != nil {
				present(Frame{Err: err})
			}

		case <-ticker.C:
			err := s.Step()
			frame := s.Snapshot()
			frame.Err = err
			present(frame)
		}
	}
}
