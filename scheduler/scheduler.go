// Package scheduler drives the tick loop: one CPU instruction at a
// time, synthesizing LY/VBlank and DIV/TIMA between instructions and
// arming interrupts, per §4.7. It owns no per-scanline PPU state -
// the video projector it calls redraws the whole frame at once.
package scheduler

import (
	"time"

	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/kivra-dev/pocketdmg/cpu"
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
)

const (
	// CPUFrequency is the LR35902's T-cycle clock; M-cycles run at a
	// quarter of it.
	CPUFrequency  = 4194304
	mCyclesPerLine  = 114
	linesPerFrame   = 154
	vblankStartLine = 144
	// MCyclesPerFrame is the real-time pacing unit: one full 154-line
	// sweep at 114 M-cycles per line.
	MCyclesPerFrame = mCyclesPerLine * linesPerFrame
)

// FrameDuration is the wall-clock period a real Game Boy spends per
// frame (about 16.74 ms, i.e. roughly 59.7 frames per second).
func FrameDuration() time.Duration {
	fps := float64(CPUFrequency) / 4 / float64(MCyclesPerFrame)
	return time.Duration(float64(time.Second) / fps)
}

// Scheduler owns the CPU and the bus, and drives both at M-cycle
// granularity through one synthesized frame at a time.
type Scheduler struct {
	CPU *cpu.CPU
	Bus *memory.Bus

	projector *video.Projector
	lastFrame *video.FrameBuffer

	line       int
	lineCycles int
	// lastJoypadLow is JOYP's selector-projected low nibble as of the end
	// of the previous tick, the baseline the next tick's edge-detect
	// compares against.
	lastJoypadLow byte
}

func New(c *cpu.CPU, bus *memory.Bus) *Scheduler {
	return &Scheduler{
		CPU:           c,
		Bus:           bus,
		projector:     video.NewProjector(),
		lastJoypadLow: 0x0F,
	}
}

// LastFrame returns the most recently rendered 256x256 map buffer, or
// nil if a VBlank hasn't happened yet.
func (s *Scheduler) LastFrame() *video.FrameBuffer {
	return s.lastFrame
}

// Tick executes exactly one CPU step (an interrupt dispatch or one
// instruction) and everything the real hardware advances alongside
// it, returning the M-cycles consumed.
func (s *Scheduler) Tick() int {
	s.detectJoypadEdge()

	cycles := s.CPU.Step()

	// DIV/TIMA never observe cycles consumed while Stopped (§4.7 step 5-6,
	// invariant "DIV and TIMA counters never observe cycles consumed
	// while in Stopped mode").
	if !s.CPU.Stopped() {
		s.Bus.Timer.Tick(cycles, func() { s.Bus.RequestInterrupt(addr.Timer) })
	}
	s.advanceLine(cycles)

	return cycles
}

// RunFrame ticks until at least one full frame's worth of M-cycles has
// elapsed, then returns the newly rendered frame.
func (s *Scheduler) RunFrame() *video.FrameBuffer {
	budget := 0
	for budget < MCyclesPerFrame {
		budget += s.Tick()
	}
	return s.lastFrame
}

// detectJoypadEdge requests the Joypad interrupt on any high-to-low
// transition of JOYP's selector-projected low nibble, per §4.7 step 1
// - the edge is on the register value as the selector sees it, not on
// the raw host key snapshot, and only fires when IE's joypad bit is
// set.
func (s *Scheduler) detectJoypadEdge() {
	low := s.Bus.Joypad.Low()
	fellLow := s.lastJoypadLow&^low&0x0F != 0
	if fellLow {
		// Any edge wakes Stopped mode (§4.6's permitted simplified wakeup
		// policy), independent of whether IE's joypad bit gates the
		// interrupt itself.
		s.CPU.WakeFromStop()
		if s.Bus.IsInterruptEnabled(addr.Joypad) {
			s.Bus.RequestInterrupt(addr.Joypad)
		}
	}
	s.lastJoypadLow = low
}

// advanceLine folds the elapsed M-cycles into the scanline counter,
// synthesizing LY and firing VBlank/STAT at the line boundaries a
// per-frame projector still needs to honor (§4.7 step 2, §4.8).
func (s *Scheduler) advanceLine(cycles int) {
	s.lineCycles += cycles
	for s.lineCycles >= mCyclesPerLine {
		s.lineCycles -= mCyclesPerLine
		s.line = (s.line + 1) % linesPerFrame

		coincident := s.Bus.SetLY(byte(s.line))
		if coincident && s.Bus.STAT()&0x40 != 0 {
			s.Bus.RequestInterrupt(addr.LCDSTAT)
		}

		switch s.line {
		case vblankStartLine:
			s.Bus.SetSTATMode(1)
			s.Bus.RequestInterrupt(addr.VBlank)
			if s.Bus.STAT()&0x10 != 0 {
				s.Bus.RequestInterrupt(addr.LCDSTAT)
			}
			s.lastFrame = s.projector.RenderFrame(s.Bus)
		case 0:
			s.Bus.SetSTATMode(0)
		}
	}
}
