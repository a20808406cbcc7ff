// Package session is the top-level lifecycle orchestrator: it loads a
// cartridge (and optional boot ROM), wires the bus/CPU/scheduler
// together per §3's lifecycle rules, and exposes the debugger-style
// run controls a host backend drives.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/kivra-dev/pocketdmg/cart"
	"github.com/kivra-dev/pocketdmg/cpu"
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/scheduler"
	"github.com/kivra-dev/pocketdmg/serial"
	"github.com/kivra-dev/pocketdmg/video"
)

// RunState is the current debugger-style execution mode.
type RunState int

const (
	Running RunState = iota
	Paused
	SteppingInstruction
	SteppingFrame
)

// Session is the root struct wiring a cartridge to the CPU/bus/
// scheduler, and the only thing a host backend needs to hold onto.
type Session struct {
	CPU       *cpu.CPU
	Bus       *memory.Bus
	Scheduler *scheduler.Scheduler
	cart      *cart.Cartridge
	mbc       cart.MBC

	mu               sync.RWMutex
	state            RunState
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

// Load builds a session from ROM bytes and an optional boot ROM (nil
// for none). Per §3's lifecycle: with a boot ROM, the CPU starts at
// 0x0000 with zeroed registers and the checksum check is deferred to
// the boot ROM; without one, the CPU is seeded with the documented
// post-boot register preset and the checksum is validated here.
func Load(romData, bootROM []byte) (*Session, error) {
	hasBootROM := len(bootROM) > 0

	c, err := cart.Load(romData, hasBootROM)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	mbc, err := cart.New(c)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{cart: c, mbc: mbc}
	s.Bus = memory.New(mbc, bootROM, serial.NewLogSink(func() { s.Bus.RequestInterrupt(addr.Serial) }))
	s.CPU = cpu.New(s.Bus)
	if !hasBootROM {
		s.CPU.SetPostBootState()
	}
	s.Scheduler = scheduler.New(s.CPU, s.Bus)

	slog.Info("session loaded", "title", c.Title, "type", fmt.Sprintf("0x%02X", uint8(c.Type)), "rom_banks", c.ROMBankCount)

	return s, nil
}

// LoadFile reads the given paths from disk and calls Load. bootROMPath
// may be empty.
func LoadFile(romPath, bootROMPath string) (*Session, error) {
	romData, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("session: reading ROM: %w", err)
	}

	var bootROM []byte
	if bootROMPath != "" {
		bootROM, err = os.ReadFile(bootROMPath)
		if err != nil {
			return nil, fmt.Errorf("session: reading boot ROM: %w", err)
		}
	}

	return Load(romData, bootROM)
}

// RunUntilFrame advances the emulation according to the current debug
// state: a full frame when Running, one instruction or one frame when
// stepping, and nothing when Paused.
func (s *Session) RunUntilFrame() *video.FrameBuffer {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	switch state {
	case Paused:
		return s.Scheduler.LastFrame()

	case SteppingInstruction:
		s.mu.Lock()
		requested := s.stepRequested
		s.stepRequested = false
		s.mu.Unlock()
		if requested {
			s.Scheduler.Tick()
			s.instructionCount++
			s.SetState(Paused)
		}
		return s.Scheduler.LastFrame()

	case SteppingFrame:
		s.mu.Lock()
		requested := s.frameRequested
		s.frameRequested = false
		s.mu.Unlock()
		if requested {
			frame := s.Scheduler.RunFrame()
			s.frameCount++
			s.SetState(Paused)
			return frame
		}
		return s.Scheduler.LastFrame()

	default: // Running
		frame := s.Scheduler.RunFrame()
		s.frameCount++
		return frame
	}
}

func (s *Session) SetKeys(keys memory.Keys) {
	s.Bus.Joypad.SetKeys(keys)
}

func (s *Session) SetState(state RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) State() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Pause()  { s.SetState(Paused) }
func (s *Session) Resume() { s.SetState(Running) }

func (s *Session) StepInstruction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepRequested = true
	s.state = SteppingInstruction
}

func (s *Session) StepFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameRequested = true
	s.state = SteppingFrame
}

func (s *Session) InstructionCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instructionCount
}

func (s *Session) FrameCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameCount
}

// Close releases any mapper-held resources (battery-backed RAM
// teardown is an external collaborator's job; the mapper's Destroy is
// the extension point for it).
func (s *Session) Close() {
	s.mbc.Destroy()
}
