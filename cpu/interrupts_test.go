package cpu

import (
	"testing"

	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/stretchr/testify/assert"
)

func TestInterruptDispatch(t *testing.T) {
	t.Run("disabled by default, IME gates dispatch", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetPC(0x100)
		mem.Write(addr.IF, 0x01)
		mem.Write(addr.IE, 0x01)

		serviced, cycles := c.serviceInterrupt()

		assert.False(t, serviced)
		assert.Equal(t, 0, cycles)
		assert.Equal(t, uint16(0x100), c.PC())
	})

	t.Run("priority order picks the lowest bit and clears only that one", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetSP(0xFFFE)
		c.SetPC(0x100)
		c.ime = true
		mem.Write(addr.IF, 0x1F)
		mem.Write(addr.IE, 0x1F)

		serviced, cycles := c.serviceInterrupt()

		assert.True(t, serviced)
		assert.Equal(t, 5, cycles)
		assert.Equal(t, addr.VBlank.Vector(), c.PC())
		assert.Equal(t, byte(0x1E), mem.Read(addr.IF))
		assert.False(t, c.ime)
	})

	t.Run("EI takes effect after the following instruction", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetPC(0x100)
		mem.loadAt(0x100, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP

		c.Step() // executes EI
		assert.False(t, c.IME())

		c.Step() // executes the instruction right after EI
		assert.True(t, c.IME())
	})

	t.Run("RETI enables IME and returns", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetSP(0xFFFE)
		c.push16(0x0150)
		c.SetPC(0x100)
		mem.loadAt(0x100, 0xD9) // RETI

		c.Step()

		assert.True(t, c.IME())
		assert.Equal(t, uint16(0x0150), c.PC())
	})
}

func TestHaltBehavior(t *testing.T) {
	t.Run("HALT with IME=1 wakes and dispatches", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetSP(0xFFFE)
		c.SetPC(0x100)
		c.ime = true
		mem.loadAt(0x100, 0x76) // HALT

		c.Step()
		assert.True(t, c.Halted())

		mem.Write(addr.IF, 0x01)
		mem.Write(addr.IE, 0x01)

		c.Step()

		assert.False(t, c.Halted())
		assert.Equal(t, addr.VBlank.Vector(), c.PC())
	})

	t.Run("HALT with IME=0 and an interrupt already pending never halts and triggers the halt bug", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetPC(0x100)
		mem.loadAt(0x100, 0x76, 0x3E, 0x11) // HALT ; LD A,0x11
		mem.Write(addr.IF, 0x01)
		mem.Write(addr.IE, 0x01)

		c.Step() // HALT: bug triggers instead of actually halting
		assert.False(t, c.Halted())
		assert.True(t, c.haltBug)

		c.Step() // byte after HALT (0x3E) is read as the opcode and again as its operand
		assert.Equal(t, uint16(0x100), c.PC()-2)
	})

	t.Run("HALT with IME=0 and nothing pending stays halted", func(t *testing.T) {
		mem := newFakeMemory()
		c := New(mem)
		c.SetPC(0x100)
		mem.loadAt(0x100, 0x76)

		c.Step()
		assert.True(t, c.Halted())

		mem.Write(addr.IF, 0x00)
		mem.Write(addr.IE, 0x01)

		c.Step()
		assert.True(t, c.Halted())
	})
}
