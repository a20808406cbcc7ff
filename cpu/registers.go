// Package cpu implements the Sharp LR35902 instruction interpreter: a
// flat register file, the ALU flag semantics, and a decode dispatcher
// driven by the classic x/y/z/p/q opcode bit layout.
package cpu

import "github.com/kivra-dev/pocketdmg/bit"

// Flag bit positions within F. The low nibble of F is always zero.
const (
	flagZ uint8 = 1 << 7
	flagN uint8 = 1 << 6
	flagH uint8 = 1 << 5
	flagC uint8 = 1 << 4
)

// Memory is the bus surface the CPU needs: byte-addressed read/write.
// The interrupt-controller registers (IE, IF) are read and written
// through it like any other address.
type Memory interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds the LR35902's full architectural state: the eight 8-bit
// registers (paired as AF/BC/DE/HL), SP, PC, and the interrupt-related
// latches that don't live in memory.
type CPU struct {
	a, f byte
	b, c byte
	d, e byte
	h, l byte

	sp, pc uint16

	mem Memory

	ime bool
	// eiDelay counts down instructions since EI; IME latches on when it
	// reaches zero, giving EI's documented one-instruction delay (§4.6).
	eiDelay int
	halted  bool
	// haltBug reproduces the documented HALT-with-IME-clear quirk: the
	// byte after HALT is fetched twice. Scheduler-level emulators without
	// that hardware bug can ignore it; a complete CORE implements it
	// because test ROMs probe for it.
	haltBug bool
	// stopped is set by the STOP instruction. Unlike Halted, nothing but
	// a joypad transition wakes it here - a deliberately simplified
	// wakeup policy, not a hardware-accurate one.
	stopped bool
}

// New creates a CPU wired to the given bus. Callers are responsible for
// seeding the correct initial register state (boot-ROM zero state or
// the post-boot preset), per the session lifecycle.
func New(mem Memory) *CPU {
	return &CPU{mem: mem}
}

func (c *CPU) AF() uint16 { return bit.Combine(c.a, c.f&0xF0) }
func (c *CPU) BC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) DE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) HL() uint16 { return bit.Combine(c.h, c.l) }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) PC() uint16 { return c.pc }

func (c *CPU) SetAF(v uint16) { c.a = bit.High(v); c.f = bit.Low(v) & 0xF0 }
func (c *CPU) SetBC(v uint16) { c.b = bit.High(v); c.c = bit.Low(v) }
func (c *CPU) SetDE(v uint16) { c.d = bit.High(v); c.e = bit.Low(v) }
func (c *CPU) SetHL(v uint16) { c.h = bit.High(v); c.l = bit.Low(v) }
func (c *CPU) SetSP(v uint16) { c.sp = v }
func (c *CPU) SetPC(v uint16) { c.pc = v }

// SetPostBootState seeds the architectural state the real boot ROM
// leaves behind, for sessions started without one (§3 Lifecycle).
func (c *CPU) SetPostBootState() {
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
}

func (c *CPU) flagSet(mask uint8) bool { return c.f&mask != 0 }

func (c *CPU) setFlag(mask uint8, v bool) {
	if v {
		c.f |= mask
	} else {
		c.f &^= mask
	}
}

func (c *CPU) Zero() bool      { return c.flagSet(flagZ) }
func (c *CPU) Subtract() bool  { return c.flagSet(flagN) }
func (c *CPU) HalfCarry() bool { return c.flagSet(flagH) }
func (c *CPU) Carry() bool     { return c.flagSet(flagC) }

func (c *CPU) IME() bool     { return c.ime }
func (c *CPU) Halted() bool  { return c.halted }
func (c *CPU) Stopped() bool { return c.stopped }

// WakeFromStop clears Stopped mode; the scheduler calls this on a
// joypad transition, the simplified wakeup condition permitted in
// place of modeling every real wakeup source.
func (c *CPU) WakeFromStop() { c.stopped = false }

func (c *CPU) fetch8() byte {
	v := c.mem.Read(c.pc)
	if c.haltBug {
		// The HALT bug: PC fails to advance once, so this byte is read
		// again by the next fetch.
		c.haltBug = false
		return v
	}
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return bit.Combine(hi, lo)
}

func (c *CPU) push16(v uint16) {
	c.sp--
	c.mem.Write(c.sp, bit.High(v))
	c.sp--
	c.mem.Write(c.sp, bit.Low(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.mem.Read(c.sp)
	c.sp++
	hi := c.mem.Read(c.sp)
	c.sp++
	return bit.Combine(hi, lo)
}
